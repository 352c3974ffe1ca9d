package music

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVoice drives completion callbacks synchronously from Stop, which the
// session must tolerate: it only ever posts onto its own loop.
type fakeVoice struct {
	connected bool
	channelID string
	playing   bool
	paused    bool
	volume    float64
	played    []string
	onDone    func(error)
	joinErr   error
}

func (f *fakeVoice) Join(channelID string, timeout time.Duration) error {
	if f.joinErr != nil {
		return f.joinErr
	}
	f.connected = true
	f.channelID = channelID
	return nil
}

func (f *fakeVoice) ChannelID() string { return f.channelID }
func (f *fakeVoice) Connected() bool   { return f.connected }

func (f *fakeVoice) Play(source string, volume float64, onDone func(error)) error {
	f.playing = true
	f.paused = false
	f.volume = volume
	f.played = append(f.played, source)
	f.onDone = onDone
	return nil
}

func (f *fakeVoice) Pause()  { f.paused = true }
func (f *fakeVoice) Resume() { f.paused = false }

func (f *fakeVoice) Stop() {
	if !f.playing {
		return
	}
	f.playing = false
	f.paused = false
	done := f.onDone
	f.onDone = nil
	if done != nil {
		done(nil)
	}
}

// finish simulates the stream ending naturally.
func (f *fakeVoice) finish() { f.Stop() }

func (f *fakeVoice) SetVolume(v float64) { f.volume = v }
func (f *fakeVoice) Playing() bool       { return f.playing && !f.paused }
func (f *fakeVoice) Paused() bool        { return f.playing && f.paused }

func (f *fakeVoice) Disconnect() {
	f.connected = false
	f.channelID = ""
}

type fakePanel struct {
	sends   int
	edits   int
	deleted []PanelRef
	last    *Panel
	notes   []string
	sendErr error
}

func (f *fakePanel) Send(channelID string, p *Panel) (PanelRef, error) {
	if f.sendErr != nil {
		return PanelRef{}, f.sendErr
	}
	f.sends++
	f.last = p
	return PanelRef{ChannelID: channelID, MessageID: fmt.Sprintf("msg-%d", f.sends)}, nil
}

func (f *fakePanel) Edit(ref PanelRef, p *Panel) error {
	f.edits++
	f.last = p
	return nil
}

func (f *fakePanel) Delete(ref PanelRef) error {
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakePanel) Notify(channelID, text string) error {
	f.notes = append(f.notes, text)
	return nil
}

func newTestSession(t *testing.T) (*Session, *fakeVoice, *fakePanel) {
	t.Helper()
	voice := &fakeVoice{}
	panel := &fakePanel{}
	svc := &fakeService{items: map[string]*Track{}}
	s := NewSession("guild-1", NewResolver(svc, NewHistory()), voice, panel)
	t.Cleanup(s.Close)
	return s, voice, panel
}

func connect(t *testing.T, s *Session, voice *fakeVoice) {
	t.Helper()
	require.NoError(t, s.EnsureVoice("vc-1"))
	require.True(t, voice.connected)
}

func TestEnsureVoicePolicy(t *testing.T) {
	s, voice, _ := newTestSession(t)

	assert.ErrorIs(t, s.EnsureVoice(""), ErrNotInVoice)

	require.NoError(t, s.EnsureVoice("vc-1"))
	assert.Equal(t, "vc-1", voice.channelID)

	// Idle in another channel: move.
	require.NoError(t, s.EnsureVoice("vc-2"))
	assert.Equal(t, "vc-2", voice.channelID)

	// Audible in another channel: refuse.
	s.EnqueueTrack(track("a"), Identity{})
	require.NoError(t, s.TogglePlayPause(Identity{}))
	assert.ErrorIs(t, s.EnsureVoice("vc-3"), ErrChannelBusy)

	// Same channel while playing is fine.
	assert.NoError(t, s.EnsureVoice("vc-2"))
}

func TestTogglePlayPauseLifecycle(t *testing.T) {
	s, voice, _ := newTestSession(t)
	connect(t, s, voice)

	head := track("a")
	s.EnqueueTrack(head, Identity{})

	require.NoError(t, s.TogglePlayPause(Identity{}))
	assert.Equal(t, []string{head.StreamURL}, voice.played)
	assert.Equal(t, StatePlaying, s.Snapshot().State)
	assert.Equal(t, DefaultVolume, voice.volume)

	require.NoError(t, s.TogglePlayPause(Identity{}))
	assert.Equal(t, StatePaused, s.Snapshot().State)

	require.NoError(t, s.TogglePlayPause(Identity{}))
	assert.Equal(t, StatePlaying, s.Snapshot().State)
	assert.Len(t, voice.played, 1, "resume must not restart the stream")
}

func TestTogglePlayPauseEmptyQueue(t *testing.T) {
	s, voice, _ := newTestSession(t)
	connect(t, s, voice)

	require.NoError(t, s.TogglePlayPause(Identity{}))
	assert.Empty(t, voice.played)
	assert.Equal(t, StateIdle, s.Snapshot().State)
}

func TestSkipAdvancesAndPlaysNext(t *testing.T) {
	s, voice, _ := newTestSession(t)
	connect(t, s, voice)

	a, b := track("a"), track("b")
	s.EnqueueTrack(a, Identity{})
	s.EnqueueTrack(b, Identity{})
	require.NoError(t, s.TogglePlayPause(Identity{}))

	require.NoError(t, s.Skip(Identity{}))
	snap := s.Snapshot()
	assert.Equal(t, []string{a.StreamURL, b.StreamURL}, voice.played)
	require.Len(t, snap.Queue, 1)
	assert.Equal(t, "b", snap.Queue[0].ID)
}

func TestSkipWhileSilentDropsHead(t *testing.T) {
	s, voice, _ := newTestSession(t)
	connect(t, s, voice)

	s.EnqueueTrack(track("a"), Identity{})
	s.EnqueueTrack(track("b"), Identity{})

	// Nothing audible: skip advances the queue and starts the new head.
	require.NoError(t, s.Skip(Identity{}))
	snap := s.Snapshot()
	require.Len(t, snap.Queue, 1)
	assert.Equal(t, "b", snap.Queue[0].ID)
	assert.Equal(t, []string{track("b").StreamURL}, voice.played)
}

func TestNaturalCompletionRepeatOff(t *testing.T) {
	s, voice, _ := newTestSession(t)
	connect(t, s, voice)

	s.EnqueueTrack(track("a"), Identity{})
	require.NoError(t, s.TogglePlayPause(Identity{}))

	voice.finish()
	snap := s.Snapshot()
	assert.Empty(t, snap.Queue)
	assert.Equal(t, StateIdle, snap.State)
}

func TestNaturalCompletionRepeatQueue(t *testing.T) {
	s, voice, _ := newTestSession(t)
	connect(t, s, voice)

	require.NoError(t, s.CycleRepeat(Identity{})) // Off -> Queue
	a, b := track("a"), track("b")
	s.EnqueueTrack(a, Identity{})
	s.EnqueueTrack(b, Identity{})
	require.NoError(t, s.TogglePlayPause(Identity{}))

	voice.finish()
	snap := s.Snapshot()
	assert.Equal(t, []string{a.StreamURL, b.StreamURL}, voice.played)
	require.Len(t, snap.Queue, 2)
	assert.Equal(t, "b", snap.Queue[0].ID, "finished head rotates to the tail")
	assert.Equal(t, "a", snap.Queue[1].ID)
}

func TestNaturalCompletionRepeatOne(t *testing.T) {
	s, voice, _ := newTestSession(t)
	connect(t, s, voice)

	require.NoError(t, s.CycleRepeat(Identity{})) // Off -> Queue
	require.NoError(t, s.CycleRepeat(Identity{})) // Queue -> One
	a := track("a")
	s.EnqueueTrack(a, Identity{})
	require.NoError(t, s.TogglePlayPause(Identity{}))

	// Single track finishing under repeat-one starts over immediately.
	voice.finish()
	snap := s.Snapshot()
	assert.Equal(t, []string{a.StreamURL, a.StreamURL}, voice.played)
	require.Len(t, snap.Queue, 1)
	assert.Equal(t, "a", snap.Queue[0].ID)
	assert.Equal(t, StatePlaying, snap.State)
}

func TestEnqueueCollectionAndPlayStartsHead(t *testing.T) {
	a, b := track("a"), track("b")
	svc := &fakeService{
		members: []string{"a", "b"},
		items:   map[string]*Track{"a": &a, "b": &b},
	}
	voice := &fakeVoice{}
	s := NewSession("guild-1", NewResolver(svc, NewHistory()), voice, &fakePanel{})
	t.Cleanup(s.Close)
	connect(t, s, voice)

	s.EnqueueCollectionAndPlay("PL123", Identity{})

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return len(snap.Queue) == 2 && snap.State == StatePlaying
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{a.StreamURL}, voice.played, "only the head starts")
}

func TestEnqueueCollectionStaysIdle(t *testing.T) {
	a := track("a")
	svc := &fakeService{
		members: []string{"a"},
		items:   map[string]*Track{"a": &a},
	}
	voice := &fakeVoice{}
	s := NewSession("guild-1", NewResolver(svc, NewHistory()), voice, &fakePanel{})
	t.Cleanup(s.Close)
	connect(t, s, voice)

	s.EnqueueCollection("PL123", Identity{})

	require.Eventually(t, func() bool {
		return len(s.Snapshot().Queue) == 1
	}, 2*time.Second, 10*time.Millisecond)
	snap := s.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.Empty(t, voice.played)
}

func TestCycleRepeatWraps(t *testing.T) {
	s, voice, _ := newTestSession(t)
	connect(t, s, voice)

	require.NoError(t, s.CycleRepeat(Identity{}))
	assert.Equal(t, RepeatQueue, s.Snapshot().Repeat)
	require.NoError(t, s.CycleRepeat(Identity{}))
	assert.Equal(t, RepeatOne, s.Snapshot().Repeat)
	require.NoError(t, s.CycleRepeat(Identity{}))
	assert.Equal(t, RepeatOff, s.Snapshot().Repeat)
}

func TestSetVolumePercent(t *testing.T) {
	s, voice, _ := newTestSession(t)
	connect(t, s, voice)

	require.NoError(t, s.SetVolumePercent(200, Identity{}))
	assert.InDelta(t, 0.5, s.Snapshot().Volume, 1e-9)

	require.NoError(t, s.SetVolumePercent(0, Identity{}))
	assert.InDelta(t, 0, s.Snapshot().Volume, 1e-9)

	assert.ErrorIs(t, s.SetVolumePercent(-1, Identity{}), ErrVolumeRange)
	assert.ErrorIs(t, s.SetVolumePercent(201, Identity{}), ErrVolumeRange)
}

func TestSetVolumeAppliesToLiveStream(t *testing.T) {
	s, voice, _ := newTestSession(t)
	connect(t, s, voice)

	s.EnqueueTrack(track("a"), Identity{})
	require.NoError(t, s.TogglePlayPause(Identity{}))

	require.NoError(t, s.SetVolumePercent(50, Identity{}))
	assert.InDelta(t, 0.125, voice.volume, 1e-9)
}

func TestStopClearsEverything(t *testing.T) {
	s, voice, _ := newTestSession(t)
	connect(t, s, voice)

	s.EnqueueTrack(track("a"), Identity{})
	s.EnqueueTrack(track("b"), Identity{})
	require.NoError(t, s.TogglePlayPause(Identity{}))

	require.NoError(t, s.Stop(Identity{}))
	snap := s.Snapshot()
	assert.Empty(t, snap.Queue)
	assert.Equal(t, StateIdle, snap.State)
	assert.False(t, voice.connected)
	assert.Len(t, voice.played, 1, "stop must not start the next track")
}

func TestOpenPanelSupersedes(t *testing.T) {
	s, voice, panel := newTestSession(t)
	connect(t, s, voice)

	require.NoError(t, s.OpenPanel("chan-1", Identity{Name: "kes"}))
	ch, ok := s.PanelChannel()
	assert.True(t, ok)
	assert.Equal(t, "chan-1", ch)

	s.EnqueueTrack(track("a"), Identity{})
	require.NoError(t, s.TogglePlayPause(Identity{}))
	require.NoError(t, s.CycleRepeat(Identity{}))
	require.NoError(t, s.SetVolumePercent(50, Identity{}))

	require.NoError(t, s.OpenPanel("chan-2", Identity{Name: "kes"}))
	assert.Equal(t, 2, panel.sends)
	require.Len(t, panel.deleted, 1)
	assert.Equal(t, "msg-1", panel.deleted[0].MessageID)

	// A reopen starts the guild state over.
	snap := s.Snapshot()
	assert.Empty(t, snap.Queue)
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, RepeatOff, snap.Repeat)
	assert.InDelta(t, DefaultVolume, snap.Volume, 1e-9)
	assert.True(t, voice.connected, "the voice connection itself survives")
}

func TestPanelRerendersOnStateChanges(t *testing.T) {
	s, voice, panel := newTestSession(t)
	connect(t, s, voice)
	require.NoError(t, s.OpenPanel("chan-1", Identity{Name: "kes"}))

	s.EnqueueTrack(track("a"), Identity{})
	require.NoError(t, s.TogglePlayPause(Identity{}))

	assert.Greater(t, panel.edits, 0)
	require.NotNil(t, panel.last)
	assert.Contains(t, panel.last.Title, "Now Playing")
}
