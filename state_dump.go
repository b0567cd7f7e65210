// state_dump.go - Context State Graph

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
state_dump.go - Context State Graph

Snapshots the GU context (render state, buffers, texture binding and
pacing counters) and writes it as a Graphviz graph for offline
inspection. Texel and VRAM contents are left out; only their sizes are
recorded.
*/

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bradleyjkemp/memviz"
)

type renderSnapshot struct {
	Caps    HostCaps
	Host    HostState
	Enabled []string
	Ambient uint32
	Clear   uint32
}

type bufferSnapshot struct {
	Draw    Surface
	Display Surface
	Double  bool
	Swaps   uint64
}

type textureSnapshot struct {
	Bound       bool
	Format      int
	Width       int
	Height      int
	BufferWidth int
	SourceBytes int
	Uploads     uint64
	Hits        uint64
}

type pacingSnapshot struct {
	Mode       string
	Rate       int
	Ticks      uint64
	Waits      uint64
	Clamped    uint64
	Frames     uint64
	Presents   uint64
	SkipTotal  uint64
	State      string
	Consec     int
	MaxTickGap int64
}

// StateSnapshot is the graph root.
type StateSnapshot struct {
	Render   *renderSnapshot
	Buffers  *bufferSnapshot
	Texture  *textureSnapshot
	Pacing   *pacingSnapshot
	Stats    RenderStats
	VRAMSize int
}

var stateNames = [GU_STATE_COUNT]string{
	GU_ALPHA_TEST:   "ALPHA_TEST",
	GU_DEPTH_TEST:   "DEPTH_TEST",
	GU_SCISSOR_TEST: "SCISSOR_TEST",
	GU_STENCIL_TEST: "STENCIL_TEST",
	GU_BLEND:        "BLEND",
	GU_CULL_FACE:    "CULL_FACE",
	GU_DITHER:       "DITHER",
	GU_FOG:          "FOG",
	GU_CLIP_PLANES:  "CLIP_PLANES",
	GU_TEXTURE_2D:   "TEXTURE_2D",
}

// Snapshot copies the context state.
func (ctx *GuContext) Snapshot() *StateSnapshot {
	render := &renderSnapshot{
		Caps:    ctx.renderer.Caps(),
		Host:    ctx.state.Host(),
		Ambient: ctx.state.Ambient,
		Clear:   ctx.state.ClearColor,
	}
	for st := range GU_STATE_COUNT {
		if ctx.state.Enabled(st) {
			render.Enabled = append(render.Enabled, stateNames[st])
		}
	}

	tex := &textureSnapshot{Uploads: ctx.textures.Uploads, Hits: ctx.textures.Hits}
	if b, ok := ctx.textures.Binding(); ok {
		tex.Bound = true
		tex.Format = b.Format
		tex.Width = b.Width
		tex.Height = b.Height
		tex.BufferWidth = b.BufferWidth
		tex.SourceBytes = len(b.Source)
	}

	sched := ctx.scheduler
	return &StateSnapshot{
		Render: render,
		Buffers: &bufferSnapshot{
			Draw:    ctx.buffers.DrawTarget(),
			Display: ctx.buffers.Display(),
			Double:  ctx.buffers.IsDouble(),
			Swaps:   ctx.buffers.Swaps(),
		},
		Texture: tex,
		Pacing: &pacingSnapshot{
			Mode:       ctx.clock.Mode().String(),
			Rate:       ctx.clock.Rate(),
			Ticks:      ctx.clock.Count(),
			Waits:      ctx.clock.Waits,
			Clamped:    ctx.clock.Clamped,
			Frames:     sched.Frames,
			Presents:   sched.Presents,
			SkipTotal:  sched.SkipTotal,
			State:      sched.State().String(),
			Consec:     sched.ConsecutiveSkips(),
			MaxTickGap: ctx.clock.MaxTickGap,
		},
		Stats:    ctx.Stats(),
		VRAMSize: len(ctx.vram.Bytes()),
	}
}

// WriteStateGraph writes the snapshot as a dot graph.
func (ctx *GuContext) WriteStateGraph(w io.Writer) {
	memviz.Map(w, ctx.Snapshot())
}

// DumpState writes the state graph to path.
func (ctx *GuContext) DumpState(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dump state: %w", err)
	}
	ctx.WriteStateGraph(f)
	if err := f.Close(); err != nil {
		return fmt.Errorf("dump state: %w", err)
	}
	ctx.logger.Info("state graph written", "path", path)
	return nil
}
