package music

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/server-jester/internal/music"
)

type fakePickList struct {
	posted    []*discordgo.MessageEmbed
	reactions []string
	removed   []string
}

func (f *fakePickList) Post(channelID string, embed *discordgo.MessageEmbed) (string, error) {
	f.posted = append(f.posted, embed)
	return "list-1", nil
}

func (f *fakePickList) React(_, _, emoji string) error {
	f.reactions = append(f.reactions, emoji)
	return nil
}

func (f *fakePickList) Remove(_, messageID string) error {
	f.removed = append(f.removed, messageID)
	return nil
}

func TestPickWindowExpiresWithoutChoice(t *testing.T) {
	cmd, fb, _, _ := newFixture(t)
	fb.pickErr = errors.New("await timed out")
	pl := &fakePickList{}
	candidates := []music.Candidate{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
		{ID: "c", Title: "C"},
	}

	cmd.pickFromList(pl, "chan-1", "user-1", music.Identity{}, fb.session, candidates)

	require.Len(t, pl.posted, 1)
	assert.Equal(t, pickEmojis[:3], pl.reactions)
	require.Len(t, fb.awaited, 1)
	assert.Equal(t, pickEmojis[:3], fb.awaited[0])
	assert.Equal(t, []string{"list-1"}, pl.removed, "the list goes away when the window closes")
	assert.Empty(t, fb.session.Snapshot().Queue, "no pick means nothing queued")
}

func TestPickQueuesChosenCandidate(t *testing.T) {
	cmd, fb, svc, _ := newFixture(t)
	b := fullTrack("b")
	svc.items["b"] = &b
	fb.pick = pickEmojis[1]
	pl := &fakePickList{}
	candidates := []music.Candidate{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
		{ID: "c", Title: "C"},
	}

	cmd.pickFromList(pl, "chan-1", "user-1", music.Identity{}, fb.session, candidates)

	require.Eventually(t, func() bool {
		q := fb.session.Snapshot().Queue
		return len(q) == 1 && q[0].ID == "b"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"list-1"}, pl.removed)
}
