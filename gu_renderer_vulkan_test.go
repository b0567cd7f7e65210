//go:build !headless

// gu_renderer_vulkan_test.go - Tests for the Vulkan format table

package main

import (
	"testing"

	vk "github.com/goki/vulkan"
)

// guChannelShift finds the lowest storage bit of channel ch (R, G, B, A) in
// a GU pixel format. Channels ConvertTo8888 fills with a constant are absent.
func guChannelShift(psm, ch int) (int, bool) {
	if (ConvertTo8888(psm, 0)>>(8*ch))&0xFF != 0 {
		return 0, false
	}
	for b := 0; b < PixelBits(psm); b++ {
		if (ConvertTo8888(psm, 1<<b)>>(8*ch))&0xFF != 0 {
			return b, true
		}
	}
	return 0, false
}

func TestVulkanFormats_ViewRestoresGuChannelOrder(t *testing.T) {
	// Lowest bit of each stored component, read as a little-endian word
	stored := map[vk.Format]map[vk.ComponentSwizzle]int{
		vk.FormatB5g6r5UnormPack16: {
			vk.ComponentSwizzleB: 11, vk.ComponentSwizzleG: 5, vk.ComponentSwizzleR: 0,
		},
		vk.FormatA1r5g5b5UnormPack16: {
			vk.ComponentSwizzleA: 15, vk.ComponentSwizzleR: 10, vk.ComponentSwizzleG: 5, vk.ComponentSwizzleB: 0,
		},
		vk.FormatR4g4b4a4UnormPack16: {
			vk.ComponentSwizzleR: 12, vk.ComponentSwizzleG: 8, vk.ComponentSwizzleB: 4, vk.ComponentSwizzleA: 0,
		},
		vk.FormatR8g8b8a8Unorm: {
			vk.ComponentSwizzleR: 0, vk.ComponentSwizzleG: 8, vk.ComponentSwizzleB: 16, vk.ComponentSwizzleA: 24,
		},
	}
	own := []vk.ComponentSwizzle{vk.ComponentSwizzleR, vk.ComponentSwizzleG, vk.ComponentSwizzleB, vk.ComponentSwizzleA}

	for _, f := range vulkanFormats {
		layout, ok := stored[f.format]
		if !ok {
			t.Fatalf("psm %d: no layout for format %d", f.psm, f.format)
		}
		view := []vk.ComponentSwizzle{f.view.R, f.view.G, f.view.B, f.view.A}
		for ch := range 4 {
			want, present := guChannelShift(f.psm, ch)
			if !present {
				continue
			}
			src := view[ch]
			if src == vk.ComponentSwizzleIdentity {
				src = own[ch]
			}
			if got, ok := layout[src]; !ok || got != want {
				t.Fatalf("psm %d channel %d reads bit %d (present %v), want %d", f.psm, ch, got, ok, want)
			}
		}
	}
}

func TestIsIdentityView(t *testing.T) {
	if !isIdentityView(identityView) {
		t.Fatal("identity mapping reported as swizzled")
	}
	explicit := vk.ComponentMapping{R: vk.ComponentSwizzleR, G: vk.ComponentSwizzleG, B: vk.ComponentSwizzleB, A: vk.ComponentSwizzleA}
	if !isIdentityView(explicit) {
		t.Fatal("explicit own-channel mapping reported as swizzled")
	}
	for _, f := range vulkanFormats {
		swizzled := f.psm == GU_PSM_5551 || f.psm == GU_PSM_4444
		if isIdentityView(f.view) == swizzled {
			t.Fatalf("psm %d: swizzled = %v", f.psm, !swizzled)
		}
	}
}
