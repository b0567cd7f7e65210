// gu_recorder_test.go - Recording host renderer shared by the GU tests

package main

import (
	"io"
	"log/slog"
	"time"
)

type recordedUpload struct {
	Slot    int
	Texture HostTexture
}

// recordingRenderer remembers every call and rejects the formats listed in
// reject.
type recordingRenderer struct {
	caps   HostCaps
	reject map[int]bool

	uploads  []recordedUpload
	binds    []int
	shapes   []HostShape
	states   []HostState
	clears   []uint32
	targets  []Surface
	presents []Surface
	flushes  int

	presentErr error
	destroyed  bool
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{
		caps:   HostCaps{ConstantBlend: true, BlendEquations: true},
		reject: map[int]bool{},
	}
}

func (r *recordingRenderer) Init(width, height int) error { return nil }
func (r *recordingRenderer) Caps() HostCaps               { return r.caps }

func (r *recordingRenderer) SetDrawTarget(target Surface) error {
	r.targets = append(r.targets, target)
	return nil
}

func (r *recordingRenderer) Present(display Surface) error {
	r.presents = append(r.presents, display)
	return r.presentErr
}

func (r *recordingRenderer) ReadPixels(s Surface, dst []byte) error {
	clear(dst)
	return nil
}

func (r *recordingRenderer) ApplyState(state HostState) {
	r.states = append(r.states, state)
}

func (r *recordingRenderer) UploadTexture(slot int, tex HostTexture) error {
	if r.reject[tex.Format] {
		return ErrFormatRejected
	}
	tex.Pixels = append([]byte(nil), tex.Pixels...)
	r.uploads = append(r.uploads, recordedUpload{Slot: slot, Texture: tex})
	return nil
}

func (r *recordingRenderer) BindTexture(slot int) {
	r.binds = append(r.binds, slot)
}

func (r *recordingRenderer) DrawShape(shape HostShape) error {
	r.shapes = append(r.shapes, shape)
	return nil
}

func (r *recordingRenderer) Clear(flags int, color uint32) {
	r.clears = append(r.clears, color)
}

func (r *recordingRenderer) Flush() error {
	r.flushes++
	return nil
}

func (r *recordingRenderer) Destroy() {
	r.destroyed = true
}

func (r *recordingRenderer) lastState() HostState {
	if len(r.states) == 0 {
		return HostState{}
	}
	return r.states[len(r.states)-1]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestContext builds a context over a recording renderer and a manual
// clock starting at the epoch.
func newTestContext(opts ContextOptions) (*GuContext, *recordingRenderer, *ManualClock) {
	rec := newRecordingRenderer()
	src := NewManualClock(time.Unix(0, 0))
	if opts.Renderer == nil {
		opts.Renderer = rec
	}
	if opts.Clock == nil {
		opts.Clock = NewFrameClock(src, discardLogger())
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}
	ctx, err := NewGuContext(opts)
	if err != nil {
		panic(err)
	}
	return ctx, rec, src
}
