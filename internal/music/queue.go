package music

// RepeatMode controls what Advance does with the finished head track.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatQueue
	RepeatOne
)

// Cycle returns the next mode in the fixed order Off -> Queue -> One -> Off.
func (m RepeatMode) Cycle() RepeatMode {
	return (m + 1) % 3
}

func (m RepeatMode) Glyph() string {
	switch m {
	case RepeatQueue:
		return "🔁"
	case RepeatOne:
		return "🔂"
	default:
		return "➡️"
	}
}

// Queue is the ordered playlist for one guild. queue[0] is "now playing"
// whenever the voice connection is producing audio. Not safe for concurrent
// use: the owning session serializes all access on its loop.
type Queue struct {
	tracks []Track
}

func NewQueue() *Queue {
	return &Queue{}
}

// Append pushes a track to the tail. Play order is append order.
func (q *Queue) Append(t Track) {
	q.tracks = append(q.tracks, t)
}

// Advance reacts to the head track finishing. Under RepeatOff the head is
// dropped; under RepeatQueue and RepeatOne it rotates to the tail. RepeatOne
// rotating (rather than pinning the head) preserves the long-observed
// behavior of this player; for a single-track queue the two are identical.
func (q *Queue) Advance(mode RepeatMode) {
	if len(q.tracks) == 0 {
		return
	}
	head := q.tracks[0]
	q.tracks = q.tracks[1:]
	if mode == RepeatQueue || mode == RepeatOne {
		q.tracks = append(q.tracks, head)
	}
}

// PeekHead returns the current head without removing it.
func (q *Queue) PeekHead() (Track, bool) {
	if len(q.tracks) == 0 {
		return Track{}, false
	}
	return q.tracks[0], true
}

func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

func (q *Queue) Len() int {
	return len(q.tracks)
}

// Tracks returns a copy of the queue in play order.
func (q *Queue) Tracks() []Track {
	out := make([]Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// Clear drops every queued track.
func (q *Queue) Clear() {
	q.tracks = nil
}
