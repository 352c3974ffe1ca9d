package music

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Track is a fully resolved, playable media item. Immutable once built except
// for StreamURL, which may expire upstream and get re-resolved.
type Track struct {
	ID        string
	Title     string
	URL       string // page URL shown to users
	StreamURL string // direct audio locator, may expire
	Thumbnail string
	Artist    string
	Duration  time.Duration
}

// Complete reports whether every field required for playback and display is
// present. Partial metadata is never cached and never enters a queue.
func (t *Track) Complete() bool {
	return t != nil &&
		t.ID != "" &&
		t.Title != "" &&
		t.URL != "" &&
		t.StreamURL != "" &&
		t.Thumbnail != "" &&
		t.Duration > 0
}

// Candidate is a lazy search result: enough to show a pick-list entry,
// not enough to play.
type Candidate struct {
	ID       string
	Title    string
	URL      string
	Duration time.Duration
}

// FormatDuration renders mm:ss, or h:mm:ss past the hour.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	minutes, seconds := total/60, total%60
	if minutes < 60 {
		return fmt.Sprintf("%02d:%02d", minutes, seconds)
	}
	hours, minutes := minutes/60, minutes%60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
}

const historySize = 1024

// History memoizes resolved tracks across all guilds for the process
// lifetime. A given ID maps to at most one track; re-inserting overwrites,
// so concurrent duplicate resolutions converge to last-write-wins.
type History struct {
	cache *lru.Cache[string, Track]
}

func NewHistory() *History {
	cache, _ := lru.New[string, Track](historySize)
	return &History{cache: cache}
}

func (h *History) Get(id string) (Track, bool) {
	return h.cache.Get(id)
}

func (h *History) Put(t Track) {
	h.cache.Add(t.ID, t)
}

func (h *History) Len() int {
	return h.cache.Len()
}
