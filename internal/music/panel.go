package music

import (
	"fmt"
	"strings"
)

// PlayState is what the controller is doing right now, derived from the
// voice capability.
type PlayState int

const (
	StateIdle PlayState = iota
	StatePlaying
	StatePaused
)

// Identity is the acting user shown in the panel footer.
type Identity struct {
	Name      string
	AvatarURL string
}

// Snapshot is everything the renderer needs, captured on the session loop.
type Snapshot struct {
	State  PlayState
	Queue  []Track
	Repeat RepeatMode
	Volume float64
}

// Control IDs double as the component custom IDs the router dispatches on.
const (
	ControlPlayPause = "music_play"
	ControlSkip      = "music_skip"
	ControlRepeat    = "music_repeat"
	ControlSearch    = "music_search"
	ControlVolume    = "music_volume"
)

type Control struct {
	ID    string
	Glyph string
}

type Field struct {
	Name  string
	Value string
}

// Panel is the platform-neutral rendering of the player: the discord layer
// maps it onto an embed plus a button row.
type Panel struct {
	Title        string
	Description  string
	ThumbnailURL string
	Footer       Identity
	Fields       []Field
	Controls     []Control
}

const panelBatchSize = 10

// Render is a pure function of session state and acting user.
func Render(snap Snapshot, user Identity) *Panel {
	p := &Panel{Footer: user}

	switch snap.State {
	case StatePlaying:
		p.Title = "▶️  Now Playing"
	case StatePaused:
		p.Title = "⏸️  Paused"
	default:
		p.Title = "⏹️  Standing By"
	}
	p.Title += fmt.Sprintf("  -  Volume %d%%", int(snap.Volume*400))

	if len(snap.Queue) > 0 {
		head := snap.Queue[0]
		p.Description = fmt.Sprintf("[%s](%s) [%s]\n\n%s",
			head.Title, head.URL, FormatDuration(head.Duration), head.Artist)
		p.ThumbnailURL = head.Thumbnail
		p.Fields = queueFields(snap.Queue)
	} else {
		p.Description = "Nothing to play :(\n\nPut some songs in the playlist"
		p.ThumbnailURL = user.AvatarURL
		p.Fields = []Field{{Name: "[Playlist]", Value: "Empty..."}}
	}

	p.Controls = []Control{
		{ID: ControlPlayPause, Glyph: playPauseGlyph(snap.State)},
		{ID: ControlSkip, Glyph: "⏭️"},
		{ID: ControlRepeat, Glyph: snap.Repeat.Glyph()},
		{ID: ControlSearch, Glyph: "🔍"},
		{ID: ControlVolume, Glyph: volumeGlyph(snap.Volume)},
	}
	return p
}

// queueFields lists the whole queue in fixed-size batches, numbered from 1.
// Only the first batch carries the field name.
func queueFields(queue []Track) []Field {
	var fields []Field
	for i := 0; i < len(queue); i += panelBatchSize {
		end := min(i+panelBatchSize, len(queue))

		var lines []string
		for j, track := range queue[i:end] {
			lines = append(lines, fmt.Sprintf("%d. [%s](%s) [%s]",
				i+j+1, track.Title, track.URL, FormatDuration(track.Duration)))
		}

		name := ""
		if i == 0 {
			name = "[Playlist]"
		}
		fields = append(fields, Field{Name: name, Value: strings.Join(lines, "\n")})
	}
	return fields
}

func playPauseGlyph(state PlayState) string {
	if state == StatePlaying {
		return "⏸️"
	}
	return "▶️"
}

func volumeGlyph(volume float64) string {
	switch {
	case volume > 0.25:
		return "🔊"
	case volume > 0:
		return "🔉"
	default:
		return "🔇"
	}
}
