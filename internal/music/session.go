package music

import (
	"context"
	"errors"
	"log"
	"time"
)

const (
	// Internal gain range. The panel shows volume*400 percent, so 0.25 reads
	// as 100% and the 0.5 ceiling as 200%.
	DefaultVolume = 0.25
	MaxVolume     = 0.5

	JoinTimeout    = 1500 * time.Millisecond
	resolveTimeout = 20 * time.Second
)

var ErrVolumeRange = errors.New("volume must be between 0 and 200")

// Session is the per-guild music state plus its controller. Every field
// below jobs is owned by the session loop goroutine: handlers and voice
// completion callbacks never touch state directly, they post onto the loop,
// so all queue mutations are serialized without locks.
type Session struct {
	guildID  string
	resolver *Resolver
	voice    Voice
	panel    PanelIO

	jobs chan func()
	quit chan struct{}

	queue    *Queue
	repeat   RepeatMode
	volume   float64
	ref      PanelRef
	hasPanel bool
	lastUser Identity
}

func NewSession(guildID string, resolver *Resolver, voice Voice, panel PanelIO) *Session {
	s := &Session{
		guildID:  guildID,
		resolver: resolver,
		voice:    voice,
		panel:    panel,
		jobs:     make(chan func(), 64),
		quit:     make(chan struct{}),
		queue:    NewQueue(),
		volume:   DefaultVolume,
	}
	go s.loop()
	return s
}

func (s *Session) loop() {
	for {
		select {
		case fn := <-s.jobs:
			fn()
		case <-s.quit:
			return
		}
	}
}

// post schedules fn on the session loop without waiting.
func (s *Session) post(fn func()) {
	select {
	case s.jobs <- fn:
	case <-s.quit:
	}
}

// run schedules fn on the session loop and waits for its result.
func (s *Session) run(fn func() error) error {
	errc := make(chan error, 1)
	s.post(func() { errc <- fn() })
	select {
	case err := <-errc:
		return err
	case <-s.quit:
		return errors.New("session closed")
	}
}

// Close stops the session loop. Playback is not torn down; the process is
// going away anyway.
func (s *Session) Close() {
	close(s.quit)
}

func (s *Session) GuildID() string { return s.guildID }

// state derives the controller state from the voice capability, which is the
// single source of truth for what is audible.
func (s *Session) state() PlayState {
	if s.voice.Connected() {
		if s.voice.Playing() {
			return StatePlaying
		}
		if s.voice.Paused() {
			return StatePaused
		}
	}
	return StateIdle
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		State:  s.state(),
		Queue:  s.queue.Tracks(),
		Repeat: s.repeat,
		Volume: s.volume,
	}
}

// Snapshot captures the current state from the session loop.
func (s *Session) Snapshot() Snapshot {
	var snap Snapshot
	_ = s.run(func() error {
		snap = s.snapshot()
		return nil
	})
	return snap
}

// rerender pushes the current state to the live panel. It is called after
// every state-changing operation; there is no other way the panel stays
// consistent.
func (s *Session) rerender() {
	if !s.hasPanel {
		return
	}
	if err := s.panel.Edit(s.ref, Render(s.snapshot(), s.lastUser)); err != nil {
		log.Printf("[WARN] [music] guild %s: panel edit failed: %v", s.guildID, err)
	}
}

// EnsureVoice runs the connection acquisition policy before any control
// action: reject when the user is not in voice, connect when there is no
// connection, move when idle in another channel, reject when busy elsewhere.
func (s *Session) EnsureVoice(userChannelID string) error {
	return s.run(func() error {
		if userChannelID == "" {
			return ErrNotInVoice
		}
		if !s.voice.Connected() {
			return s.voice.Join(userChannelID, JoinTimeout)
		}
		if s.voice.ChannelID() == userChannelID {
			return nil
		}
		if !s.voice.Playing() {
			return s.voice.Join(userChannelID, JoinTimeout)
		}
		return ErrChannelBusy
	})
}

// OpenPanel sends a fresh panel to the channel, superseding any panel this
// guild already had: the old message is deleted and the guild state starts
// over (queue cleared, repeat and volume back to defaults). The voice
// connection itself stays; playback just stops.
func (s *Session) OpenPanel(channelID string, user Identity) error {
	return s.run(func() error {
		if s.hasPanel {
			if err := s.panel.Delete(s.ref); err != nil {
				log.Printf("[WARN] [music] guild %s: stale panel delete failed: %v", s.guildID, err)
			}
			s.hasPanel = false
			if s.voice.Playing() || s.voice.Paused() {
				s.voice.Stop()
			}
			s.queue.Clear()
			s.repeat = RepeatOff
			s.volume = DefaultVolume
		}
		s.lastUser = user
		ref, err := s.panel.Send(channelID, Render(s.snapshot(), user))
		if err != nil {
			return err
		}
		s.ref = ref
		s.hasPanel = true
		return nil
	})
}

// PanelChannel returns the channel the live panel sits in, if any.
func (s *Session) PanelChannel() (string, bool) {
	var channelID string
	var ok bool
	_ = s.run(func() error {
		channelID, ok = s.ref.ChannelID, s.hasPanel
		return nil
	})
	return channelID, ok
}

// TogglePlayPause pauses a playing stream, resumes a paused one, and
// otherwise tries to start the queue head. With an empty queue it is a no-op
// on the voice capability and only refreshes the panel.
func (s *Session) TogglePlayPause(user Identity) error {
	return s.run(func() error {
		s.lastUser = user
		switch s.state() {
		case StatePlaying:
			s.voice.Pause()
		case StatePaused:
			s.voice.Resume()
		default:
			s.startPlayback()
		}
		s.rerender()
		return nil
	})
}

// Skip stops the active stream so its completion callback advances the
// queue; when nothing is audible it walks the advance path directly. Skip
// and natural completion therefore share one code path.
func (s *Session) Skip(user Identity) error {
	return s.run(func() error {
		s.lastUser = user
		if s.voice.Playing() || s.voice.Paused() {
			s.voice.Stop()
			return nil
		}
		s.trackDone(nil)
		return nil
	})
}

// CycleRepeat advances the repeat mode one step: Off, Queue, One, Off.
func (s *Session) CycleRepeat(user Identity) error {
	return s.run(func() error {
		s.lastUser = user
		s.repeat = s.repeat.Cycle()
		s.rerender()
		return nil
	})
}

// SetVolumePercent accepts the panel's 0..200 scale, stores percent/400, and
// applies the gain to any in-flight stream immediately.
func (s *Session) SetVolumePercent(percent int, user Identity) error {
	return s.run(func() error {
		if percent < 0 || percent > 200 {
			return ErrVolumeRange
		}
		s.lastUser = user
		s.volume = float64(percent) / 400
		if st := s.state(); st == StatePlaying || st == StatePaused {
			s.voice.SetVolume(s.volume)
		}
		s.rerender()
		return nil
	})
}

// EnqueueTrack appends an already resolved track and reports whether the
// queue was empty before. Used by callers that resolve synchronously and want
// to start playback right after.
func (s *Session) EnqueueTrack(track Track, user Identity) bool {
	var wasEmpty bool
	_ = s.run(func() error {
		wasEmpty = s.queue.IsEmpty()
		s.lastUser = user
		s.queue.Append(track)
		s.rerender()
		return nil
	})
	return wasEmpty
}

// EnqueueByID resolves an item off the loop and appends it once metadata is
// in. Resolution failures are logged no-ops; the panel simply doesn't change.
func (s *Session) EnqueueByID(id string, user Identity) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		defer cancel()

		track, err := s.resolver.ResolveByID(ctx, id)
		if err != nil {
			return
		}
		s.post(func() {
			s.lastUser = user
			s.queue.Append(*track)
			s.rerender()
		})
	}()
}

// EnqueueCollection enumerates a collection and appends each resolvable
// member in order. Unresolvable members are skipped silently.
func (s *Session) EnqueueCollection(collectionID string, user Identity) {
	s.enqueueCollection(collectionID, user, false)
}

// EnqueueCollectionAndPlay is EnqueueCollection for callers that also want
// playback running: as members land, the queue head starts as soon as the
// session is connected and still idle.
func (s *Session) EnqueueCollectionAndPlay(collectionID string, user Identity) {
	s.enqueueCollection(collectionID, user, true)
}

func (s *Session) enqueueCollection(collectionID string, user Identity, autostart bool) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		ids, err := s.resolver.ResolveCollection(ctx, collectionID)
		if err != nil {
			return
		}
		for _, id := range ids {
			track, err := s.resolver.ResolveByID(ctx, id)
			if err != nil {
				continue
			}
			t := *track
			s.post(func() {
				s.lastUser = user
				s.queue.Append(t)
				if autostart && s.state() == StateIdle && s.voice.Connected() {
					s.startPlayback()
				}
				s.rerender()
			})
		}
	}()
}

// Stop ends playback, clears the queue and leaves the voice channel.
func (s *Session) Stop(user Identity) error {
	return s.run(func() error {
		s.lastUser = user
		if s.voice.Playing() || s.voice.Paused() {
			s.voice.Stop()
		}
		s.queue.Clear()
		if s.voice.Connected() {
			s.voice.Disconnect()
		}
		s.rerender()
		return nil
	})
}

// startPlayback begins streaming the queue head at the current volume. Runs
// on the session loop.
func (s *Session) startPlayback() {
	head, ok := s.queue.PeekHead()
	if !ok {
		log.Printf("[INFO] [music] guild %s: play requested with empty queue", s.guildID)
		return
	}
	err := s.voice.Play(head.StreamURL, s.volume, func(playErr error) {
		// Completion fires on the voice goroutine; marshal back first.
		s.post(func() { s.trackDone(playErr) })
	})
	if err != nil {
		log.Printf("[ERR] [music] guild %s: failed to start %q: %v", s.guildID, head.Title, err)
		if s.hasPanel {
			_ = s.panel.Notify(s.ref.ChannelID, "Couldn't start playback of "+head.Title+".")
		}
	}
}

// trackDone is the single advance path shared by natural completion, skip of
// an audible track (via Stop), and skip while silent. Runs on the session
// loop.
func (s *Session) trackDone(err error) {
	if err != nil {
		log.Printf("[WARN] [music] guild %s: playback ended with error: %v", s.guildID, err)
	}
	if s.queue.IsEmpty() {
		s.rerender()
		return
	}
	s.queue.Advance(s.repeat)
	if !s.queue.IsEmpty() && s.voice.Connected() {
		s.startPlayback()
	}
	s.rerender()
}
