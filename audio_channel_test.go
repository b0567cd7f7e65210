// audio_channel_test.go - Tests for the channel mixer and WAV capture

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
)

func constantChannel(v int16) AudioCallback {
	return func(_ int, buf []int16) {
		for i := range buf {
			buf[i] = v
		}
	}
}

// ===== Sprint 1: Channels =====

func TestAudioMixer_ReserveAndRelease(t *testing.T) {
	m := NewAudioMixer(discardLogger())
	if err := m.Reserve(3, 0, nil); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !m.Active(3) {
		t.Fatal("channel not active")
	}
	if err := m.Reserve(3, 0, nil); !errors.Is(err, ErrAudioChannel) {
		t.Fatalf("double reserve: err = %v", err)
	}
	if err := m.Reserve(AUDIO_CHANNELS, 0, nil); !errors.Is(err, ErrAudioChannel) {
		t.Fatalf("out of range: err = %v", err)
	}
	if err := m.Release(3); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := m.Release(3); !errors.Is(err, ErrAudioChannel) {
		t.Fatalf("double release: err = %v", err)
	}
}

func TestAudioMixer_MixesAndClamps(t *testing.T) {
	m := NewAudioMixer(discardLogger())
	m.Reserve(0, 4, constantChannel(20000))
	m.Reserve(1, 4, constantChannel(20000))
	dst := make([]int16, 16)
	m.Mix(dst)
	for i, s := range dst {
		if s != 32767 {
			t.Fatalf("sample %d = %d, want clamped 32767", i, s)
		}
	}
	if m.Frames() != 8 {
		t.Fatalf("Frames = %d", m.Frames())
	}
}

func TestAudioMixer_VolumePans(t *testing.T) {
	m := NewAudioMixer(discardLogger())
	m.Reserve(0, 4, constantChannel(1000))
	m.SetVolume(0, AUDIO_VOLUME_MAX/2, 0)
	dst := make([]int16, 4)
	m.Mix(dst)
	if dst[0] != 500 || dst[1] != 0 {
		t.Fatalf("left=%d right=%d, want 500 and 0", dst[0], dst[1])
	}
}

func TestAudioMixer_RefillsPerBlock(t *testing.T) {
	m := NewAudioMixer(discardLogger())
	calls := 0
	m.Reserve(0, 4, func(_ int, buf []int16) { calls++ })
	m.Mix(make([]int16, 20)) // 10 frames over blocks of 4
	if calls != 3 {
		t.Fatalf("callback ran %d times, want 3", calls)
	}
}

func TestAudioMixer_ReadLittleEndian(t *testing.T) {
	m := NewAudioMixer(discardLogger())
	m.Reserve(0, 2, constantChannel(0x0102))
	p := make([]byte, 10)
	n, err := m.Read(p)
	if err != nil || n != 8 {
		t.Fatalf("Read = %d, %v; want 8 bytes", n, err)
	}
	if p[0] != 0x02 || p[1] != 0x01 {
		t.Fatalf("first sample bytes % x", p[:2])
	}
}

func TestAudioMixer_FrameHookMixesOneFrame(t *testing.T) {
	m := NewAudioMixer(discardLogger())
	hook := m.FrameHook(48000, 60)
	hook(RenderStats{})
	hook(RenderStats{})
	if m.Frames() != 1600 {
		t.Fatalf("Frames = %d, want 1600", m.Frames())
	}
}

// ===== Sprint 2: WAV capture =====

func TestWavCapture_WritesReadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	w, err := NewWavCapture(path, 22050)
	if err != nil {
		t.Fatalf("NewWavCapture: %v", err)
	}
	m := NewAudioMixer(discardLogger())
	m.SetCapture(w)
	m.Reserve(0, 0, constantChannel(1234))
	m.Mix(make([]int16, 200))
	if w.Frames() != 100 {
		t.Fatalf("captured %d frames", w.Frames())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Write([]int16{1, 2}); err == nil {
		t.Fatal("write after close succeeded")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.SampleRate != 22050 || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Fatalf("header: rate %d chans %d depth %d", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if len(buf.Data) != 200 || buf.Data[0] != 1234 {
		t.Fatalf("decoded %d samples, first %v", len(buf.Data), buf.Data[:1])
	}
}

// ===== Sprint 3: Demo tone =====

func TestDemoScene_ToneFollowsCross(t *testing.T) {
	src := NewManualClock(time.Unix(0, 0))
	ctrl := NewController(src)
	d := NewDemoScene(ctrl)
	m := NewAudioMixer(discardLogger())
	if err := d.AttachAudio(m, 0, 44100); err != nil {
		t.Fatalf("AttachAudio: %v", err)
	}

	dst := make([]int16, AUDIO_DEFAULT_SAMPLES*2)
	m.Mix(dst)
	for _, s := range dst {
		if s != 0 {
			t.Fatal("tone without CROSS")
		}
	}

	ctrl.SetKey(HostKey2, true)
	m.Mix(dst)
	if dst[0] != demoToneVolume && dst[0] != -demoToneVolume {
		t.Fatalf("tone sample %d", dst[0])
	}
}
