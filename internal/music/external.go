package music

import (
	"context"
	"errors"
	"time"
)

// Capabilities the music core consumes but does not own. The discord package
// provides the real implementations; tests substitute fakes.

var (
	ErrNotInVoice  = errors.New("user is not in a voice channel")
	ErrChannelBusy = errors.New("already playing in another voice channel")
	ErrNoResult    = errors.New("media service returned no result")
	ErrIncomplete  = errors.New("media service returned incomplete metadata")
)

// Service resolves media identifiers against the external metadata service.
// Any call may fail or come back empty; callers treat both as a soft no-op.
type Service interface {
	// SearchTop10 returns up to ten lazy candidates for a keyword.
	SearchTop10(ctx context.Context, keyword string) ([]Candidate, error)

	// FetchItem returns full metadata, including a playable stream source,
	// for a single media ID.
	FetchItem(ctx context.Context, id string) (*Track, error)

	// FetchCollection enumerates the member IDs of a playlist-like collection.
	FetchCollection(ctx context.Context, collectionID string) ([]string, error)
}

// Voice is the per-guild voice connection capability. Implementations must be
// safe for concurrent use; the completion callback passed to Play fires from
// an arbitrary goroutine exactly once per started stream.
type Voice interface {
	// Join connects to the channel, or moves an existing connection there.
	Join(channelID string, timeout time.Duration) error
	ChannelID() string
	Connected() bool

	// Play starts streaming source at the given gain and invokes onDone when
	// the stream ends, whether naturally or via Stop.
	Play(source string, volume float64, onDone func(error)) error
	Pause()
	Resume()
	Stop()
	SetVolume(v float64)
	Playing() bool
	Paused() bool
	Disconnect()
}

// PanelRef identifies a sent panel message.
type PanelRef struct {
	ChannelID string
	MessageID string
}

// PanelIO sends and maintains the rendered player panel.
type PanelIO interface {
	Send(channelID string, p *Panel) (PanelRef, error)
	Edit(ref PanelRef, p *Panel) error
	Delete(ref PanelRef) error

	// Notify posts a transient plain-text notice to the panel's channel.
	Notify(channelID, text string) error
}
