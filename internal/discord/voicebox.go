package discord

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"

	"github.com/keshon/server-jester/internal/music"
)

const (
	voiceChannels   = 2
	voiceSampleRate = 48000
	voiceFrameSize  = 960
)

// VoiceBox implements music.Voice on top of a discordgo voice connection and
// an ffmpeg PCM pipe. One instance per guild, shared by that guild's session.
type VoiceBox struct {
	dg      *discordgo.Session
	guildID string

	mu      sync.Mutex
	vc      *discordgo.VoiceConnection
	playing bool
	paused  bool
	volume  float64
	stop    chan struct{}
}

var _ music.Voice = (*VoiceBox)(nil)

func NewVoiceBox(dg *discordgo.Session, guildID string) *VoiceBox {
	return &VoiceBox{dg: dg, guildID: guildID}
}

// Join connects to channelID, moving the existing connection if there is one.
// discordgo's join has no deadline of its own, so it runs under ours.
func (v *VoiceBox) Join(channelID string, timeout time.Duration) error {
	v.mu.Lock()
	if v.vc != nil && v.vc.ChannelID == channelID {
		v.mu.Unlock()
		return nil
	}
	v.mu.Unlock()

	type joined struct {
		vc  *discordgo.VoiceConnection
		err error
	}
	ch := make(chan joined, 1)
	go func() {
		vc, err := v.dg.ChannelVoiceJoin(v.guildID, channelID, false, true)
		ch <- joined{vc, err}
	}()

	select {
	case j := <-ch:
		if j.err != nil {
			return fmt.Errorf("failed to join voice channel: %w", j.err)
		}
		v.mu.Lock()
		v.vc = j.vc
		v.mu.Unlock()
		return nil
	case <-time.After(timeout):
		return errors.New("voice connection timed out")
	}
}

func (v *VoiceBox) ChannelID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.vc == nil {
		return ""
	}
	return v.vc.ChannelID
}

func (v *VoiceBox) Connected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vc != nil
}

// Play spawns ffmpeg to decode source into raw PCM and streams it frame by
// frame. onDone fires exactly once from the streaming goroutine.
func (v *VoiceBox) Play(source string, volume float64, onDone func(error)) error {
	v.mu.Lock()
	if v.vc == nil {
		v.mu.Unlock()
		return errors.New("not connected to a voice channel")
	}
	if v.playing {
		v.mu.Unlock()
		return errors.New("already streaming")
	}

	cmd := exec.Command("ffmpeg",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", source,
		"-f", "s16le",
		"-ar", fmt.Sprint(voiceSampleRate),
		"-ac", fmt.Sprint(voiceChannels),
		"-loglevel", "warning",
		"pipe:1")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		v.mu.Unlock()
		return fmt.Errorf("failed to open ffmpeg pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		v.mu.Unlock()
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	v.playing = true
	v.paused = false
	v.volume = volume
	v.stop = make(chan struct{})
	vc, stop := v.vc, v.stop
	v.mu.Unlock()

	go v.stream(vc, stdout, cmd, stop, onDone)
	return nil
}

func (v *VoiceBox) stream(vc *discordgo.VoiceConnection, pcm io.ReadCloser, cmd *exec.Cmd, stop chan struct{}, onDone func(error)) {
	var streamErr error
	defer func() {
		pcm.Close()
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		_ = cmd.Wait()
		_ = vc.Speaking(false)

		v.mu.Lock()
		v.playing = false
		v.paused = false
		v.mu.Unlock()

		onDone(streamErr)
	}()

	encoder, err := gopus.NewEncoder(voiceSampleRate, voiceChannels, gopus.Audio)
	if err != nil {
		streamErr = fmt.Errorf("failed to create opus encoder: %w", err)
		return
	}
	if err := vc.Speaking(true); err != nil {
		log.Println("[WARN] Failed to set speaking state:", err)
	}

	raw := make([]byte, voiceFrameSize*voiceChannels*2)
	samples := make([]int16, voiceFrameSize*voiceChannels)

	for {
		select {
		case <-stop:
			return
		default:
		}

		v.mu.Lock()
		paused, gain := v.paused, v.volume
		v.mu.Unlock()
		if paused {
			time.Sleep(20 * time.Millisecond)
			continue
		}

		if _, err := io.ReadFull(pcm, raw); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				streamErr = fmt.Errorf("pcm read failed: %w", err)
			}
			return
		}

		for i := range samples {
			s := int16(binary.LittleEndian.Uint16(raw[i*2:]))
			samples[i] = scaleSample(s, gain)
		}

		frame, err := encoder.Encode(samples, voiceFrameSize, len(raw))
		if err != nil {
			streamErr = fmt.Errorf("opus encode failed: %w", err)
			return
		}

		select {
		case vc.OpusSend <- frame:
		case <-stop:
			return
		}
	}
}

// scaleSample applies the software gain with clipping at the int16 bounds.
func scaleSample(s int16, gain float64) int16 {
	scaled := float64(s) * gain
	switch {
	case scaled > 32767:
		return 32767
	case scaled < -32768:
		return -32768
	default:
		return int16(scaled)
	}
}

func (v *VoiceBox) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.playing {
		v.paused = true
	}
}

func (v *VoiceBox) Resume() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.playing {
		v.paused = false
	}
}

// Stop ends the active stream. The completion callback still fires, from the
// streaming goroutine, never synchronously from here.
func (v *VoiceBox) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.playing && v.stop != nil {
		select {
		case <-v.stop:
		default:
			close(v.stop)
		}
	}
}

func (v *VoiceBox) SetVolume(volume float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = volume
}

func (v *VoiceBox) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing && !v.paused
}

func (v *VoiceBox) Paused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing && v.paused
}

func (v *VoiceBox) Disconnect() {
	v.mu.Lock()
	vc := v.vc
	v.vc = nil
	v.mu.Unlock()
	if vc != nil {
		if err := vc.Disconnect(); err != nil {
			log.Println("[WARN] Failed to disconnect voice:", err)
		}
	}
}
