package main

import "testing"

func TestNewRenderer_SoftwareTakesConfiguredCaps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConstantBlend = false
	r, err := newRenderer(cfg, NewVRAM(GU_VRAM_SIZE), discardLogger())
	if err != nil {
		t.Fatalf("newRenderer: %v", err)
	}
	defer r.Destroy()
	soft, ok := r.(*SoftwareRenderer)
	if !ok {
		t.Fatalf("renderer is %T, want *SoftwareRenderer", r)
	}
	if caps := soft.Caps(); caps.ConstantBlend || !caps.BlendEquations {
		t.Fatalf("caps = %+v", caps)
	}
}

func TestNewScene_ScriptSelectsLua(t *testing.T) {
	cfg := DefaultConfig()
	if _, ok := newScene(cfg, NewController(nil)).(*DemoScene); !ok {
		t.Fatal("no script should give the demo scene")
	}
	cfg.Script = "scene.lua"
	scene := newScene(cfg, NewController(nil))
	defer scene.Close()
	if _, ok := scene.(*LuaScene); !ok {
		t.Fatalf("scene is %T, want *LuaScene", scene)
	}
}
