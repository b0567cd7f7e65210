//go:build !headless

// gu_renderer_vulkan.go - Vulkan Capability Probe

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
gu_renderer_vulkan.go - Vulkan Capability Probe

Asks the first Vulkan physical device which GU texture formats it can
sample with optimal tiling. The answer configures the
software renderer so it accepts and rejects uploads the way that device
would, which drives the texture cache's 8888 fallback.
*/

package main

import (
	"fmt"
	"log/slog"

	vk "github.com/goki/vulkan"
)

func init() {
	compiledFeatures = append(compiledFeatures, "vulkan:probe")
}

// VulkanProbe is the host description read from a Vulkan device. Swizzled
// lists the accepted formats that are sampled through a non-identity view.
type VulkanProbe struct {
	Device   string
	Formats  []int
	Swizzled []int
	Caps     HostCaps
}

var identityView = vk.ComponentMapping{
	R: vk.ComponentSwizzleIdentity,
	G: vk.ComponentSwizzleIdentity,
	B: vk.ComponentSwizzleIdentity,
	A: vk.ComponentSwizzleIdentity,
}

// vulkanFormats pairs each GU storage mode with a core 1.0 format and the
// image view mapping that reads it back in GU channel order. GU packs red
// in the low bits; Vulkan names packed components from the high bits down.
// Core 1.0 has no A1B5G5R5 or A4B4G4R4, so 5551 and 4444 are swizzled.
var vulkanFormats = []struct {
	psm    int
	format vk.Format
	view   vk.ComponentMapping
}{
	{GU_PSM_5650, vk.FormatB5g6r5UnormPack16, identityView},
	{GU_PSM_5551, vk.FormatA1r5g5b5UnormPack16, vk.ComponentMapping{
		R: vk.ComponentSwizzleB,
		G: vk.ComponentSwizzleIdentity,
		B: vk.ComponentSwizzleR,
		A: vk.ComponentSwizzleIdentity,
	}},
	{GU_PSM_4444, vk.FormatR4g4b4a4UnormPack16, vk.ComponentMapping{
		R: vk.ComponentSwizzleA,
		G: vk.ComponentSwizzleB,
		B: vk.ComponentSwizzleG,
		A: vk.ComponentSwizzleR,
	}},
	{GU_PSM_8888, vk.FormatR8g8b8a8Unorm, identityView},
}

func isIdentityView(m vk.ComponentMapping) bool {
	same := func(s, own vk.ComponentSwizzle) bool {
		return s == vk.ComponentSwizzleIdentity || s == own
	}
	return same(m.R, vk.ComponentSwizzleR) && same(m.G, vk.ComponentSwizzleG) &&
		same(m.B, vk.ComponentSwizzleB) && same(m.A, vk.ComponentSwizzleA)
}

// ProbeVulkan creates a throwaway instance and inspects the first device.
func ProbeVulkan(logger *slog.Logger) (*VulkanProbe, error) {
	if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
		return nil, guErr("vulkan probe", ErrNoRenderer, "loader: %v", err)
	}
	if err := vk.Init(); err != nil {
		return nil, guErr("vulkan probe", ErrNoRenderer, "init: %v", err)
	}

	var instance vk.Instance
	res := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:            vk.StructureTypeApplicationInfo,
			PApplicationName: "gu-host\x00",
			PEngineName:      "gu-host\x00",
			ApiVersion:       vk.MakeVersion(1, 0, 0),
		},
	}, nil, &instance)
	if res != vk.Success {
		return nil, guErr("vulkan probe", ErrNoRenderer, "create instance: result %d", res)
	}
	defer vk.DestroyInstance(instance, nil)
	if err := vk.InitInstance(instance); err != nil {
		return nil, guErr("vulkan probe", ErrNoRenderer, "init instance: %v", err)
	}

	var count uint32
	if res := vk.EnumeratePhysicalDevices(instance, &count, nil); res != vk.Success || count == 0 {
		return nil, guErr("vulkan probe", ErrNoRenderer, "no physical devices")
	}
	gpus := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(instance, &count, gpus); (res != vk.Success && res != vk.Incomplete) || count == 0 {
		return nil, guErr("vulkan probe", ErrNoRenderer, "enumerate physical devices: result %d", res)
	}
	gpu := gpus[0]

	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()

	probe := &VulkanProbe{Device: vk.ToString(props.DeviceName[:])}
	for _, f := range vulkanFormats {
		var fp vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(gpu, f.format, &fp)
		fp.Deref()
		if fp.OptimalTilingFeatures&vk.FormatFeatureFlags(vk.FormatFeatureSampledImageBit) != 0 {
			probe.Formats = append(probe.Formats, f.psm)
			if !isIdentityView(f.view) {
				probe.Swizzled = append(probe.Swizzled, f.psm)
			}
		}
	}

	// Constant blend factors and every GU blend equation are core in 1.0.
	probe.Caps = HostCaps{ConstantBlend: true, BlendEquations: true}

	logger.Info("vulkan probe",
		"device", probe.Device,
		"formats", fmt.Sprint(probe.Formats),
		"swizzled", fmt.Sprint(probe.Swizzled))
	return probe, nil
}

// Apply configures a software renderer to behave like the probed device.
func (p *VulkanProbe) Apply(r *SoftwareRenderer) {
	r.SetAcceptedFormats(p.Formats)
	r.SetCaps(p.Caps)
}
