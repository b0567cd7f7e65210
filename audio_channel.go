// audio_channel.go - Audio Channel Mixer

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine

License: GPLv3 or later
*/

/*
audio_channel.go - Audio Channel Mixer

Eight reservable stereo channels. A channel owns a callback that refills
its block of interleaved signed 16-bit samples whenever the mixer has
consumed the previous one, the way a PSP audio thread refills its buffer
before each blocking output call. Channels are mixed with their panned
volumes and clamped.

The mixer is pulled either by the audio device (OtoPlayer.Read) or, with
no device, once per presented frame.
*/

package main

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"unsafe"
)

const (
	AUDIO_CHANNELS        = 8
	AUDIO_VOLUME_MAX      = 0x8000
	AUDIO_DEFAULT_SAMPLES = 512
	AUDIO_SAMPLE_RATE     = 44100
)

// AudioCallback fills buf with interleaved left/right samples.
type AudioCallback func(channel int, buf []int16)

type audioChannel struct {
	active   bool
	callback AudioCallback
	volLeft  int
	volRight int
	buf      []int16
	pos      int
}

// AudioMixer mixes the reserved channels into one stereo stream.
type AudioMixer struct {
	mu       sync.Mutex
	channels [AUDIO_CHANNELS]audioChannel
	capture  *WavCapture
	logger   *slog.Logger
	scratch  []int16

	frames      atomic.Uint64 // stereo sample frames produced
	captureErrs int
}

func NewAudioMixer(logger *slog.Logger) *AudioMixer {
	return &AudioMixer{logger: logger}
}

// Reserve claims a channel producing blocks of samples frames. A zero
// sample count uses the default block size.
func (m *AudioMixer) Reserve(channel, samples int, cb AudioCallback) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if channel < 0 || channel >= AUDIO_CHANNELS {
		return guErr("audio reserve", ErrAudioChannel, "channel %d", channel)
	}
	ch := &m.channels[channel]
	if ch.active {
		return guErr("audio reserve", ErrAudioChannel, "channel %d in use", channel)
	}
	if samples <= 0 {
		samples = AUDIO_DEFAULT_SAMPLES
	}
	*ch = audioChannel{
		active:   true,
		callback: cb,
		volLeft:  AUDIO_VOLUME_MAX,
		volRight: AUDIO_VOLUME_MAX,
		buf:      make([]int16, samples*2),
	}
	ch.pos = len(ch.buf)
	m.logger.Debug("audio channel reserved", "channel", channel, "samples", samples)
	return nil
}

func (m *AudioMixer) Release(channel int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if channel < 0 || channel >= AUDIO_CHANNELS || !m.channels[channel].active {
		return guErr("audio release", ErrAudioChannel, "channel %d", channel)
	}
	m.channels[channel] = audioChannel{}
	return nil
}

// SetVolume sets the panned volume, clamped to AUDIO_VOLUME_MAX.
func (m *AudioMixer) SetVolume(channel, left, right int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if channel < 0 || channel >= AUDIO_CHANNELS {
		return
	}
	m.channels[channel].volLeft = min(max(left, 0), AUDIO_VOLUME_MAX)
	m.channels[channel].volRight = min(max(right, 0), AUDIO_VOLUME_MAX)
}

func (m *AudioMixer) Active(channel int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return channel >= 0 && channel < AUDIO_CHANNELS && m.channels[channel].active
}

// SetCapture tees the mixed stream into a WAV file; nil stops capturing.
func (m *AudioMixer) SetCapture(w *WavCapture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capture = w
}

// Frames is the number of stereo frames mixed so far.
func (m *AudioMixer) Frames() uint64 {
	return m.frames.Load()
}

// Mix fills dst with interleaved stereo frames.
func (m *AudioMixer) Mix(dst []int16) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i+1 < len(dst); i += 2 {
		var left, right int32
		for c := range m.channels {
			ch := &m.channels[c]
			if !ch.active {
				continue
			}
			if ch.pos >= len(ch.buf) {
				clear(ch.buf)
				if ch.callback != nil {
					ch.callback(c, ch.buf)
				}
				ch.pos = 0
			}
			left += int32(ch.buf[ch.pos]) * int32(ch.volLeft) / AUDIO_VOLUME_MAX
			right += int32(ch.buf[ch.pos+1]) * int32(ch.volRight) / AUDIO_VOLUME_MAX
			ch.pos += 2
		}
		dst[i] = clampSample(left)
		dst[i+1] = clampSample(right)
	}
	m.frames.Add(uint64(len(dst) / 2))

	if m.capture != nil {
		if err := m.capture.Write(dst); err != nil {
			m.captureErrs++
			if m.captureErrs == 1 {
				m.logger.Warn("wav capture failed", "err", err)
			}
		}
	}
}

func clampSample(v int32) int16 {
	return int16(min(max(v, -32768), 32767))
}

// Read implements io.Reader with signed 16-bit little-endian stereo.
func (m *AudioMixer) Read(p []byte) (int, error) {
	n := len(p) / 4 * 2
	if cap(m.scratch) < n {
		m.scratch = make([]int16, n)
	}
	samples := m.scratch[:n]
	m.Mix(samples)
	if n > 0 {
		copy(p, unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), n*2))
	}
	return n * 2, nil
}

// FrameHook mixes one frame's worth of audio per presented frame, for
// runs without an audio device.
func (m *AudioMixer) FrameHook(sampleRate, fps int) func(RenderStats) {
	buf := make([]int16, sampleRate/max(fps, 1)*2)
	return func(RenderStats) {
		m.Mix(buf)
	}
}
