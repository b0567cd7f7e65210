// script_lua.go - Lua Scene Scripts

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
script_lua.go - Lua Scene Scripts

Runs a Lua script as a scene. The script may define init() and must
define frame(n), called once per frame between StartDrawing and the frame
sync. Two tables are exposed:

  gu    drawing, state, textures and frame information
  ctrl  controller state and button masks

Colours are 0xAABBGGRR numbers. Texture u,v in gu.draw are in texels.
*/

package main

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Scene draws one frame at a time into a GU context.
type Scene interface {
	Init(ctx *GuContext) error
	Frame(ctx *GuContext, n uint64) error
	Close()
}

type luaTexture struct {
	width, height int
	pixels        []byte
}

// LuaScene is a Scene backed by a Lua state.
type LuaScene struct {
	L          *lua.LState
	path       string
	source     string
	ctx        *GuContext
	controller *Controller
	textures   []luaTexture
}

// NewLuaScene loads a script file. The controller may be nil.
func NewLuaScene(path string, controller *Controller) *LuaScene {
	return &LuaScene{path: path, controller: controller}
}

// NewLuaSceneString runs a script held in memory.
func NewLuaSceneString(source string, controller *Controller) *LuaScene {
	return &LuaScene{source: source, controller: controller}
}

func (s *LuaScene) Init(ctx *GuContext) error {
	s.ctx = ctx
	s.L = lua.NewState()
	s.L.SetGlobal("gu", s.guTable())
	s.L.SetGlobal("ctrl", s.ctrlTable())

	var err error
	if s.path != "" {
		err = s.L.DoFile(s.path)
	} else {
		err = s.L.DoString(s.source)
	}
	if err != nil {
		return fmt.Errorf("lua script: %w", err)
	}
	if fn := s.L.GetGlobal("frame"); fn.Type() != lua.LTFunction {
		return fmt.Errorf("lua script: no frame(n) function")
	}
	if fn := s.L.GetGlobal("init"); fn.Type() == lua.LTFunction {
		if err := s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
			return fmt.Errorf("lua init: %w", err)
		}
	}
	return nil
}

func (s *LuaScene) Frame(ctx *GuContext, n uint64) error {
	err := s.L.CallByParam(lua.P{Fn: s.L.GetGlobal("frame"), NRet: 0, Protect: true}, lua.LNumber(n))
	if err != nil {
		return fmt.Errorf("lua frame %d: %w", n, err)
	}
	return nil
}

func (s *LuaScene) Close() {
	if s.L != nil {
		s.L.Close()
		s.L = nil
	}
}

func checkColor(L *lua.LState, n int) uint32 {
	return uint32(L.CheckInt64(n))
}

// raise turns a Go error into a Lua error.
func raise(L *lua.LState, err error) int {
	if err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (s *LuaScene) guTable() *lua.LTable {
	L := s.L
	t := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"clear": func(L *lua.LState) int {
			s.ctx.ClearScreen(checkColor(L, 1))
			return 0
		},
		"line": func(L *lua.LState) int {
			return raise(L, s.ctx.DrawLine(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4), checkColor(L, 5)))
		},
		"rect": func(L *lua.LState) int {
			return raise(L, s.ctx.DrawRect(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4), checkColor(L, 5)))
		},
		"fill_rect": func(L *lua.LState) int {
			return raise(L, s.ctx.DrawFillRect(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4), checkColor(L, 5)))
		},
		"gradient": func(L *lua.LState) int {
			return raise(L, s.ctx.DrawGradientRect(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4),
				checkColor(L, 5), checkColor(L, 6), checkColor(L, 7), checkColor(L, 8)))
		},
		"point": func(L *lua.LState) int {
			return raise(L, s.ctx.DrawPoints([][2]int{{L.CheckInt(1), L.CheckInt(2)}}, checkColor(L, 3)))
		},
		"draw":    s.luaDraw,
		"texture": s.luaTexture,
		"bind":    s.luaBind,
		"tile": func(L *lua.LState) int {
			return raise(L, s.ctx.DrawTile(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4), L.CheckInt(5), L.CheckInt(6)))
		},
		"alpha": func(L *lua.LState) int {
			s.ctx.SetAlpha2(L.CheckInt(1), uint32(L.OptInt64(2, 0)), uint32(L.OptInt64(3, 0xFFFFFFFF)))
			return 0
		},
		"blend": func(L *lua.LState) int {
			s.ctx.BlendFunc(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), uint32(L.OptInt64(4, 0)), uint32(L.OptInt64(5, 0)))
			return 0
		},
		"enable": func(L *lua.LState) int {
			s.ctx.Enable(L.CheckInt(1))
			return 0
		},
		"disable": func(L *lua.LState) int {
			s.ctx.Disable(L.CheckInt(1))
			return 0
		},
		"scissor": func(L *lua.LState) int {
			s.ctx.SetScreenClipping(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4))
			return 0
		},
		"alpha_func": func(L *lua.LState) int {
			s.ctx.AlphaFunc(L.CheckInt(1), L.CheckInt(2), L.OptInt(3, 0xFF))
			return 0
		},
		"filter": func(L *lua.LState) int {
			s.ctx.TexFilter(L.CheckInt(1), L.CheckInt(2))
			return 0
		},
		"wrap": func(L *lua.LState) int {
			s.ctx.TexWrap(L.CheckInt(1), L.CheckInt(2))
			return 0
		},
		"shade": func(L *lua.LState) int {
			s.ctx.ShadeModel(L.CheckInt(1))
			return 0
		},
		"frame": func(L *lua.LState) int {
			L.Push(lua.LNumber(s.ctx.Stats().Frame))
			return 1
		},
		"skipping": func(L *lua.LState) int {
			L.Push(lua.LBool(s.ctx.Scheduler().Skipping()))
			return 1
		},
		"stats": func(L *lua.LState) int {
			st := s.ctx.Stats()
			tbl := L.NewTable()
			tbl.RawSetString("frame", lua.LNumber(st.Frame))
			tbl.RawSetString("shapes", lua.LNumber(st.Shapes))
			tbl.RawSetString("uploads", lua.LNumber(st.Uploads))
			tbl.RawSetString("skipped", lua.LNumber(st.Skipped))
			tbl.RawSetString("state", lua.LString(st.State.String()))
			L.Push(tbl)
			return 1
		},
	})

	for name, v := range map[string]int{
		"POINTS": GU_POINTS, "LINES": GU_LINES, "LINE_STRIP": GU_LINE_STRIP,
		"TRIANGLES": GU_TRIANGLES, "TRIANGLE_STRIP": GU_TRIANGLE_STRIP,
		"TRIANGLE_FAN": GU_TRIANGLE_FAN, "SPRITES": GU_SPRITES,

		"ALPHA_TEST": GU_ALPHA_TEST, "SCISSOR_TEST": GU_SCISSOR_TEST,
		"BLEND": GU_BLEND, "TEXTURE_2D": GU_TEXTURE_2D,

		"ADD": GU_ADD, "SUBTRACT": GU_SUBTRACT, "REVERSE_SUBTRACT": GU_REVERSE_SUBTRACT,
		"MIN": GU_MIN, "MAX": GU_MAX, "ABS": GU_ABS,
		"SRC_COLOR": GU_SRC_COLOR, "ONE_MINUS_SRC_COLOR": GU_ONE_MINUS_SRC_COLOR,
		"SRC_ALPHA": GU_SRC_ALPHA, "ONE_MINUS_SRC_ALPHA": GU_ONE_MINUS_SRC_ALPHA,
		"DST_ALPHA": GU_DST_ALPHA, "ONE_MINUS_DST_ALPHA": GU_ONE_MINUS_DST_ALPHA,
		"FIX": GU_FIX,

		"FX_NONE": FX_NONE, "FX_ALPHA": FX_ALPHA, "FX_ADD": FX_ADD, "FX_SUB": FX_SUB,
		"FX_RGBA": FX_RGBA, "FX_COLOR": FX_COLOR, "FX_TINT": FX_TINT,

		"NEVER": GU_NEVER, "ALWAYS": GU_ALWAYS, "EQUAL": GU_EQUAL, "NOTEQUAL": GU_NOTEQUAL,
		"LESS": GU_LESS, "LEQUAL": GU_LEQUAL, "GREATER": GU_GREATER, "GEQUAL": GU_GEQUAL,

		"REPEAT": GU_REPEAT, "CLAMP": GU_CLAMP, "NEAREST": GU_NEAREST, "LINEAR": GU_LINEAR,
		"FLAT": GU_FLAT, "SMOOTH": GU_SMOOTH,
	} {
		t.RawSetString(name, lua.LNumber(v))
	}
	return t
}

// luaDraw implements gu.draw(prim, {{x, y, color, u, v}, ...}).
func (s *LuaScene) luaDraw(L *lua.LState) int {
	prim := L.CheckInt(1)
	list := L.CheckTable(2)
	verts := make([]DecodedVertex, 0, list.Len())
	for i := 1; i <= list.Len(); i++ {
		entry, ok := list.RawGetInt(i).(*lua.LTable)
		if !ok {
			L.ArgError(2, fmt.Sprintf("vertex %d is not a table", i))
			return 0
		}
		num := func(j int, def float64) float64 {
			if v, ok := entry.RawGetInt(j).(lua.LNumber); ok {
				return float64(v)
			}
			return def
		}
		verts = append(verts, DecodedVertex{
			X:     float32(num(1, 0)),
			Y:     float32(num(2, 0)),
			Color: uint32(int64(num(3, 0xFFFFFFFF))),
			U:     float32(num(4, 0)),
			V:     float32(num(5, 0)),
		})
	}
	return raise(L, s.ctx.DrawVertices(prim, verts))
}

// luaTexture implements gu.texture(w, h, {colors...}) and returns an id.
// Missing texels are transparent.
func (s *LuaScene) luaTexture(L *lua.LState) int {
	w, h := L.CheckInt(1), L.CheckInt(2)
	texels := L.CheckTable(3)
	if w <= 0 || h <= 0 || w > GU_MAX_TEXTURE_SIZE || h > GU_MAX_TEXTURE_SIZE {
		return raise(L, guErr("lua texture", ErrBadTextureSize, "%dx%d", w, h))
	}
	pix := make([]byte, w*h*4)
	for i := range w * h {
		if c, ok := texels.RawGetInt(i + 1).(lua.LNumber); ok {
			writePixel(pix, i*4, GU_PSM_8888, uint32(int64(c)))
		}
	}
	s.textures = append(s.textures, luaTexture{width: w, height: h, pixels: pix})
	id := len(s.textures)
	if err := s.bind(id); err != nil {
		return raise(L, err)
	}
	L.Push(lua.LNumber(id))
	return 1
}

func (s *LuaScene) luaBind(L *lua.LState) int {
	return raise(L, s.bind(L.CheckInt(1)))
}

func (s *LuaScene) bind(id int) error {
	if id < 1 || id > len(s.textures) {
		return guErr("lua bind", ErrBadTextureSize, "no texture %d", id)
	}
	t := s.textures[id-1]
	s.ctx.TexMode(GU_PSM_8888, 0, 0)
	return s.ctx.TexImage(0, t.width, t.height, t.width, t.pixels)
}

func (s *LuaScene) ctrlTable() *lua.LTable {
	L := s.L
	t := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"read": func(L *lua.LState) int {
			d := s.peek()
			tbl := L.NewTable()
			tbl.RawSetString("buttons", lua.LNumber(d.Buttons))
			tbl.RawSetString("lx", lua.LNumber(d.Lx))
			tbl.RawSetString("ly", lua.LNumber(d.Ly))
			L.Push(tbl)
			return 1
		},
		"held": func(L *lua.LState) int {
			L.Push(lua.LBool(s.peek().Pressed(uint32(L.CheckInt64(1)))))
			return 1
		},
	})
	for name, v := range map[string]int{
		"SELECT": CTRL_SELECT, "START": CTRL_START,
		"UP": CTRL_UP, "RIGHT": CTRL_RIGHT, "DOWN": CTRL_DOWN, "LEFT": CTRL_LEFT,
		"LTRIGGER": CTRL_LTRIGGER, "RTRIGGER": CTRL_RTRIGGER,
		"TRIANGLE": CTRL_TRIANGLE, "CIRCLE": CTRL_CIRCLE, "CROSS": CTRL_CROSS, "SQUARE": CTRL_SQUARE,
	} {
		t.RawSetString(name, lua.LNumber(v))
	}
	return t
}

func (s *LuaScene) peek() CtrlData {
	if s.controller == nil {
		return CtrlData{Lx: CTRL_ANALOG_CENTER, Ly: CTRL_ANALOG_CENTER}
	}
	return s.controller.PeekBuffer()
}
