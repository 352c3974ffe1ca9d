package music

import (
	"context"
	"testing"
	"time"

	"github.com/keshon/server-jester/internal/music"
)

// Fakes for the music core's capability interfaces and the runtime surface
// the command depends on.

type fakeVoice struct {
	connected bool
	channelID string
}

func (f *fakeVoice) Join(channelID string, timeout time.Duration) error {
	f.connected = true
	f.channelID = channelID
	return nil
}

func (f *fakeVoice) ChannelID() string                       { return f.channelID }
func (f *fakeVoice) Connected() bool                         { return f.connected }
func (f *fakeVoice) Play(string, float64, func(error)) error { return nil }
func (f *fakeVoice) Pause()                                  {}
func (f *fakeVoice) Resume()                                 {}
func (f *fakeVoice) Stop()                                   {}
func (f *fakeVoice) SetVolume(float64)                       {}
func (f *fakeVoice) Playing() bool                           { return false }
func (f *fakeVoice) Paused() bool                            { return false }
func (f *fakeVoice) Disconnect()                             { f.connected = false }

type fakePanel struct{}

func (fakePanel) Send(channelID string, p *music.Panel) (music.PanelRef, error) {
	return music.PanelRef{ChannelID: channelID, MessageID: "panel-1"}, nil
}
func (fakePanel) Edit(music.PanelRef, *music.Panel) error { return nil }
func (fakePanel) Delete(music.PanelRef) error             { return nil }
func (fakePanel) Notify(string, string) error             { return nil }

type fakeService struct {
	items map[string]*music.Track
}

func (f *fakeService) SearchTop10(context.Context, string) ([]music.Candidate, error) {
	return nil, nil
}

func (f *fakeService) FetchItem(_ context.Context, id string) (*music.Track, error) {
	return f.items[id], nil
}

func (f *fakeService) FetchCollection(context.Context, string) ([]string, error) {
	return nil, nil
}

type fakeBot struct {
	session   *music.Session
	resolver  *music.Resolver
	voiceChan string
	pick      string
	pickErr   error
	awaited   [][]string
}

func (f *fakeBot) SessionFor(string) *music.Session         { return f.session }
func (f *fakeBot) Resolver() *music.Resolver                { return f.resolver }
func (f *fakeBot) FindUserVoiceState(string, string) string { return f.voiceChan }

func (f *fakeBot) AwaitReaction(_, _, _ string, emojis []string, _ time.Duration) (string, error) {
	f.awaited = append(f.awaited, append([]string(nil), emojis...))
	return f.pick, f.pickErr
}

func newFixture(t *testing.T) (*MusicCommand, *fakeBot, *fakeService, *fakeVoice) {
	t.Helper()
	svc := &fakeService{items: map[string]*music.Track{}}
	resolver := music.NewResolver(svc, music.NewHistory())
	voice := &fakeVoice{}
	session := music.NewSession("guild-1", resolver, voice, fakePanel{})
	t.Cleanup(session.Close)
	fb := &fakeBot{session: session, resolver: resolver}
	return &MusicCommand{Bot: fb}, fb, svc, voice
}

func fullTrack(id string) music.Track {
	return music.Track{
		ID:        id,
		Title:     "title " + id,
		URL:       "https://example.com/watch?v=" + id,
		StreamURL: "https://cdn.example.com/" + id,
		Thumbnail: "https://img.example.com/" + id,
		Duration:  3 * time.Minute,
	}
}
