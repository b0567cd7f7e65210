// gu_constants.go - GU Command Protocol Constants

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
gu_constants.go - GU Command Protocol Constants

Enumerations of the sceGu command protocol as seen by application code:
primitive types, the packed vertex type bit-field, pixel formats, blend
ops and factors, test functions, state switches and the vsync mode bits of
the frame-pacing scheduler. Values are wire format and must not be
renumbered.
*/

package main

import "time"

// Primitive types
const (
	GU_POINTS         = 0
	GU_LINES          = 1
	GU_LINE_STRIP     = 2
	GU_TRIANGLES      = 3
	GU_TRIANGLE_STRIP = 4
	GU_TRIANGLE_FAN   = 5
	GU_SPRITES        = 6
)

// Vertex type bit-field
const (
	GU_TEXTURE_SHIFT  = 0
	GU_TEXTURE_8BIT   = 1 << GU_TEXTURE_SHIFT
	GU_TEXTURE_16BIT  = 2 << GU_TEXTURE_SHIFT
	GU_TEXTURE_32BITF = 3 << GU_TEXTURE_SHIFT
	GU_TEXTURE_BITS   = 3 << GU_TEXTURE_SHIFT

	GU_COLOR_SHIFT = 2
	GU_COLOR_5650  = 4 << GU_COLOR_SHIFT
	GU_COLOR_5551  = 5 << GU_COLOR_SHIFT
	GU_COLOR_4444  = 6 << GU_COLOR_SHIFT
	GU_COLOR_8888  = 7 << GU_COLOR_SHIFT
	GU_COLOR_BITS  = 7 << GU_COLOR_SHIFT

	GU_NORMAL_SHIFT  = 5
	GU_NORMAL_8BIT   = 1 << GU_NORMAL_SHIFT
	GU_NORMAL_16BIT  = 2 << GU_NORMAL_SHIFT
	GU_NORMAL_32BITF = 3 << GU_NORMAL_SHIFT
	GU_NORMAL_BITS   = 3 << GU_NORMAL_SHIFT

	GU_VERTEX_SHIFT  = 7
	GU_VERTEX_8BIT   = 1 << GU_VERTEX_SHIFT
	GU_VERTEX_16BIT  = 2 << GU_VERTEX_SHIFT
	GU_VERTEX_32BITF = 3 << GU_VERTEX_SHIFT
	GU_VERTEX_BITS   = 3 << GU_VERTEX_SHIFT

	GU_INDEX_SHIFT = 11
	GU_INDEX_8BIT  = 1 << GU_INDEX_SHIFT
	GU_INDEX_16BIT = 2 << GU_INDEX_SHIFT
	GU_INDEX_BITS  = 3 << GU_INDEX_SHIFT

	GU_TRANSFORM_SHIFT = 23
	GU_TRANSFORM_3D    = 0 << GU_TRANSFORM_SHIFT
	GU_TRANSFORM_2D    = 1 << GU_TRANSFORM_SHIFT
)

// Pixel storage modes
const (
	GU_PSM_5650 = 0
	GU_PSM_5551 = 1
	GU_PSM_4444 = 2
	GU_PSM_8888 = 3
	GU_PSM_T4   = 4
	GU_PSM_T8   = 5
)

// Blend operations
const (
	GU_ADD              = 0
	GU_SUBTRACT         = 1
	GU_REVERSE_SUBTRACT = 2
	GU_MIN              = 3
	GU_MAX              = 4
	GU_ABS              = 5
)

// Blend factors. Value 0 and 1 read as the other side's colour: DST_COLOR
// when used as a source factor, SRC_COLOR when used as a destination factor.
const (
	GU_SRC_COLOR           = 0
	GU_ONE_MINUS_SRC_COLOR = 1
	GU_SRC_ALPHA           = 2
	GU_ONE_MINUS_SRC_ALPHA = 3
	GU_DST_ALPHA           = 4
	GU_ONE_MINUS_DST_ALPHA = 5
	GU_DST_COLOR           = 0
	GU_ONE_MINUS_DST_COLOR = 1
	GU_FIX                 = 10
)

// Test functions (alpha and depth)
const (
	GU_NEVER    = 0
	GU_ALWAYS   = 1
	GU_EQUAL    = 2
	GU_NOTEQUAL = 3
	GU_LESS     = 4
	GU_LEQUAL   = 5
	GU_GREATER  = 6
	GU_GEQUAL   = 7
)

// State switches for Enable/Disable
const (
	GU_ALPHA_TEST   = 0
	GU_DEPTH_TEST   = 1
	GU_SCISSOR_TEST = 2
	GU_STENCIL_TEST = 3
	GU_BLEND        = 4
	GU_CULL_FACE    = 5
	GU_DITHER       = 6
	GU_FOG          = 7
	GU_CLIP_PLANES  = 8
	GU_TEXTURE_2D   = 9
	GU_STATE_COUNT  = 10
)

// Texture wrap, filter and shading
const (
	GU_REPEAT  = 0
	GU_CLAMP   = 1
	GU_NEAREST = 0
	GU_LINEAR  = 1
	GU_FLAT    = 0
	GU_SMOOTH  = 1
)

// Clear flags
const (
	GU_COLOR_BUFFER_BIT   = 1
	GU_STENCIL_BUFFER_BIT = 2
	GU_DEPTH_BUFFER_BIT   = 4
)

// Screen and VRAM geometry
const (
	GU_SCREEN_WIDTH  = 480
	GU_SCREEN_HEIGHT = 272
	GU_BUFFER_WIDTH  = 512
	GU_FRAME_PIXELS  = 0x22000 // GU_BUFFER_WIDTH * GU_SCREEN_HEIGHT
	GU_VRAM_SIZE     = 2 << 20

	GU_MAX_TEXTURE_SIZE = 512
	GU_PALETTE_ENTRIES  = 256
	GU_CLUT_BLOCK       = 8 // palette entries per ClutLoad block
	GU_TEXTURE_SLOTS    = 8 // host texture handles, used round-robin
)

// VramNone is the nil buffer pointer; DispBuffer(VramNone) selects single
// buffering.
const VramNone VramPtr = 0xFFFFFFFF

// Frame timing
const (
	GU_NATIVE_RATE       = 60
	GU_NATIVE_TICK       = 16666 * time.Microsecond
	GU_DEFAULT_MAX_GAP   = 30 // native ticks; larger gaps count as one tick
	GU_SPIN_THRESHOLD    = time.Millisecond
	GU_PAUSE_POLL        = 10 * time.Millisecond
	GU_DEFAULT_FRAMESKIP = 0
	GU_DEFAULT_MAX_SKIPS = 5
	GU_DEFAULT_VSYNC     = 4
)

// Scheduler vsync mode bits
const (
	VSYNC_WAIT      = 1  // wait for a tick before presenting
	VSYNC_LOCK      = 4  // lock skipping to multiples of the frameskip policy
	VSYNC_LOOKAHEAD = 8  // allow one extra tick before forcing a present
	VSYNC_NO_SWAP   = 16 // caller presents; no buffer swap
)

// Alpha effects for SetAlpha
const (
	FX_NONE  = 0
	FX_FLAT  = 1
	FX_ALPHA = 2
	FX_ADD   = 3
	FX_SUB   = 4
	FX_RGBA  = 0x100
	FX_COLOR = 0x1000

	FX_DEFAULT = FX_RGBA
	FX_OPAQUE  = FX_NONE
	FX_TINT    = FX_ALPHA | FX_COLOR
)

// Command list limits
const GU_MAX_SHAPES_PER_LIST = 1 << 16
