// gu_state.go - Render State Facade

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
gu_state.go - Render State Facade

Holds the GU render state set by the context setters and translates it to
the HostState consumed by the renderer. The translation runs on the setter
side; draws only pick up the finished HostState.

Blend factors reference the other side's colour for values 0 and 1, and
GU_FIX selects a constant. Hosts without constant blending get the
approximation: a constant of full white becomes ONE, anything else ZERO,
and only additive blending is applied at all.
*/

package main

import "log/slog"

// RenderState is the GU side of the pipeline state.
type RenderState struct {
	logger *slog.Logger
	caps   HostCaps

	// As last set by the caller
	BlendOp     int
	BlendSrc    int
	BlendDst    int
	SrcFix      uint32
	DstFix      uint32
	Ambient     uint32
	AlphaFn     int
	AlphaRef    uint8
	ScissorRect Rect
	WrapU       int
	WrapV       int
	MinFilter   int
	MagFilter   int
	ShadeModel  int
	ClearColor  uint32

	enabled [GU_STATE_COUNT]bool

	host  HostState
	dirty bool
}

// NewRenderState creates the power-on state: everything disabled, opaque
// white ambient, full screen scissor, smooth shading.
func NewRenderState(caps HostCaps, logger *slog.Logger) *RenderState {
	if logger == nil {
		logger = slog.Default()
	}
	s := &RenderState{
		logger:      logger,
		caps:        caps,
		BlendSrc:    GU_SRC_ALPHA,
		BlendDst:    GU_ONE_MINUS_SRC_ALPHA,
		Ambient:     0xFFFFFFFF,
		AlphaFn:     GU_ALWAYS,
		ScissorRect: Rect{0, 0, GU_SCREEN_WIDTH, GU_SCREEN_HEIGHT},
		ShadeModel:  GU_SMOOTH,
		dirty:       true,
	}
	s.host = HostState{
		Equation:    HostEqAdd,
		SrcFactor:   HostSrcAlpha,
		DstFactor:   HostOneMinusSrcAlpha,
		AlphaFunc:   GU_ALWAYS,
		ScissorRect: s.ScissorRect,
		Smooth:      true,
	}
	return s
}

// SetCaps updates the host capabilities used by later translations.
func (s *RenderState) SetCaps(caps HostCaps) {
	s.caps = caps
}

// Host returns the translated state.
func (s *RenderState) Host() HostState {
	return s.host
}

// Dirty reports whether the host state changed since the last MarkApplied.
func (s *RenderState) Dirty() bool {
	return s.dirty
}

// MarkApplied records that the host has the current state.
func (s *RenderState) MarkApplied() {
	s.dirty = false
}

// Invalidate forces the next draw to reapply the state.
func (s *RenderState) Invalidate() {
	s.dirty = true
}

// Enabled reports a state switch.
func (s *RenderState) Enabled(state int) bool {
	if state < 0 || state >= GU_STATE_COUNT {
		return false
	}
	return s.enabled[state]
}

// Enable turns on a state switch. Unknown switches are ignored.
func (s *RenderState) Enable(state int) {
	s.setEnabled(state, true)
}

// Disable turns off a state switch.
func (s *RenderState) Disable(state int) {
	s.setEnabled(state, false)
}

func (s *RenderState) setEnabled(state int, on bool) {
	if state < 0 || state >= GU_STATE_COUNT {
		s.logger.Debug("unknown state switch", "op", "enable", "state", state)
		return
	}
	s.enabled[state] = on
	switch state {
	case GU_ALPHA_TEST:
		s.host.AlphaTest = on
	case GU_DEPTH_TEST:
		s.host.DepthTest = on
	case GU_SCISSOR_TEST:
		s.host.Scissor = on
	case GU_BLEND:
		s.host.Blend = on
	case GU_CULL_FACE:
		s.host.CullFace = on
	case GU_TEXTURE_2D:
		s.host.Texture = on
	}
	s.dirty = true
}

// hostEquation maps a GU blend op. GU_ABS has no host equivalent and is
// drawn as ADD.
func hostEquation(op int) HostBlendEquation {
	switch op {
	case GU_SUBTRACT:
		return HostEqSubtract
	case GU_REVERSE_SUBTRACT:
		return HostEqReverseSubtract
	case GU_MIN:
		return HostEqMin
	case GU_MAX:
		return HostEqMax
	}
	return HostEqAdd
}

// hostFactor maps a GU blend factor. Values 0 and 1 mean the destination
// colour on the source side and the source colour on the destination side.
func hostFactor(f int, dstSide bool) HostBlendFactor {
	switch f {
	case 0:
		if dstSide {
			return HostSrcColor
		}
		return HostDstColor
	case 1:
		if dstSide {
			return HostOneMinusSrcColor
		}
		return HostOneMinusDstColor
	case GU_SRC_ALPHA:
		return HostSrcAlpha
	case GU_ONE_MINUS_SRC_ALPHA:
		return HostOneMinusSrcAlpha
	case GU_DST_ALPHA:
		return HostDstAlpha
	case GU_ONE_MINUS_DST_ALPHA:
		return HostOneMinusDstAlpha
	case GU_FIX:
		return HostConstantColor
	}
	return HostOne
}

// fixFallback approximates a constant factor with ONE or ZERO.
func fixFallback(fix uint32) HostBlendFactor {
	if fix&0x00FFFFFF == 0x00FFFFFF {
		return HostOne
	}
	return HostZero
}

// BlendFunc sets the blend equation and factors.
func (s *RenderState) BlendFunc(op, src, dst int, srcFix, dstFix uint32) {
	s.BlendOp, s.BlendSrc, s.BlendDst = op, src, dst
	s.SrcFix, s.DstFix = srcFix, dstFix

	if s.caps.ConstantBlend && s.caps.BlendEquations {
		s.host.Equation = hostEquation(op)
		s.host.SrcFactor = hostFactor(src, false)
		s.host.DstFactor = hostFactor(dst, true)
		s.host.SrcConstant = srcFix
		s.host.DstConstant = dstFix
		s.dirty = true
		return
	}

	sf := hostFactor(src, false)
	if src == GU_FIX {
		sf = fixFallback(srcFix)
	}
	df := hostFactor(dst, true)
	if dst == GU_FIX {
		df = fixFallback(dstFix)
	}
	if op != GU_ADD {
		s.logger.Debug("blend op needs host support, factors kept", "op", "blend func", "blend_op", op)
		return
	}
	s.host.Equation = HostEqAdd
	s.host.SrcFactor = sf
	s.host.DstFactor = df
	s.dirty = true
}

// AlphaFunc sets the alpha test. The mask is not supported by the host
// pipeline and is ignored.
func (s *RenderState) AlphaFunc(fn int, ref int, mask int) {
	s.AlphaFn = fn
	s.AlphaRef = uint8(ref)
	s.host.AlphaFunc = fn
	s.host.AlphaRef = uint8(ref)
	s.dirty = true
}

// AmbientColor sets the colour textured vertices are modulated by.
func (s *RenderState) AmbientColor(c uint32) {
	s.Ambient = c
}

// Scissor sets the clip rectangle from two corners, top-left origin.
func (s *RenderState) Scissor(x0, y0, x1, y1 int) {
	r := Rect{min(x0, x1), min(y0, y1), max(x0, x1), max(y0, y1)}
	s.ScissorRect = r
	s.host.ScissorRect = r
	s.dirty = true
}

// TexWrap selects repeat or clamp per axis.
func (s *RenderState) TexWrap(u, v int) {
	s.WrapU, s.WrapV = u, v
	s.host.ClampU = u == GU_CLAMP
	s.host.ClampV = v == GU_CLAMP
	s.dirty = true
}

// TexFilter selects nearest or linear sampling.
func (s *RenderState) TexFilter(minFilter, magFilter int) {
	s.MinFilter, s.MagFilter = minFilter, magFilter
	s.host.LinearMin = minFilter == GU_LINEAR
	s.host.LinearMag = magFilter == GU_LINEAR
	s.dirty = true
}

// SetShadeModel selects flat or smooth shading.
func (s *RenderState) SetShadeModel(mode int) {
	s.ShadeModel = mode
	s.host.Smooth = mode == GU_SMOOTH
	s.dirty = true
}

// SetClearColor sets the colour used by Clear. Alpha is forced opaque.
func (s *RenderState) SetClearColor(c uint32) {
	s.ClearColor = c | 0xFF000000
}

// Shade returns the colour sent to the host for a vertex colour.
func (s *RenderState) Shade(c uint32) uint32 {
	if !s.enabled[GU_TEXTURE_2D] {
		return c
	}
	return modulateColor(c, s.Ambient)
}
