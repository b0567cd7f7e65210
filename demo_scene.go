// demo_scene.go - Built-in Demo Scene

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
demo_scene.go - Built-in Demo Scene

Draws every primitive kind once per frame: a gradient sky, a scrolling
starfield of points, a sine line strip, a spinning fan, a ring of
triangles, an indexed quad, and a palette-cycled 8 bit sprite that the
controller moves around. An additive glow and an outline sit on top.
With a mixer attached, holding CROSS plays a square wave whose pitch
follows the sprite's height.
*/

package main

import (
	"math"
	"sync/atomic"
)

const (
	demoStars      = 64
	demoSpriteSize = 32
	demoWaveSteps  = 48
	demoFanSteps   = 16
	demoCycleEvery = 4 // frames per palette step
	demoToneVolume = 2000
)

type DemoScene struct {
	controller *Controller

	texels  []byte // T8 indices
	palette []byte // 256 entries of 8888
	x, y    float64
	stars   [demoStars][3]int // x, y, speed

	toneHz     atomic.Uint32
	tonePhase  float64
	sampleRate int
}

func NewDemoScene(controller *Controller) *DemoScene {
	return &DemoScene{controller: controller}
}

// AttachAudio reserves channel for the CROSS tone. The callback runs on the
// audio goroutine.
func (d *DemoScene) AttachAudio(mixer *AudioMixer, channel, sampleRate int) error {
	d.sampleRate = sampleRate
	d.toneHz.Store(440)
	return mixer.Reserve(channel, 0, d.fillTone)
}

func (d *DemoScene) fillTone(_ int, buf []int16) {
	if d.controller == nil || !d.controller.PeekBuffer().Pressed(CTRL_CROSS) {
		clear(buf)
		return
	}
	step := float64(d.toneHz.Load()) / float64(d.sampleRate)
	for i := 0; i+1 < len(buf); i += 2 {
		v := int16(demoToneVolume)
		if d.tonePhase >= 0.5 {
			v = -v
		}
		buf[i], buf[i+1] = v, v
		d.tonePhase += step
		if d.tonePhase >= 1 {
			d.tonePhase--
		}
	}
}

func (d *DemoScene) Init(ctx *GuContext) error {
	d.texels = make([]byte, demoSpriteSize*demoSpriteSize)
	for y := range demoSpriteSize {
		for x := range demoSpriteSize {
			dx, dy := float64(x)-15.5, float64(y)-15.5
			d.texels[y*demoSpriteSize+x] = byte(int(math.Hypot(dx, dy)*8+math.Atan2(dy, dx)*40) & 0xFF)
		}
	}
	d.palette = make([]byte, GU_PALETTE_ENTRIES*4)
	d.x, d.y = GU_SCREEN_WIDTH/2-demoSpriteSize, GU_SCREEN_HEIGHT/2-demoSpriteSize

	seed := uint32(0x2545F491)
	for i := range d.stars {
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		d.stars[i] = [3]int{int(seed % GU_SCREEN_WIDTH), int((seed >> 9) % GU_SCREEN_HEIGHT), 1 + int(seed>>20)%3}
	}

	ctx.TexMode(GU_PSM_T8, 0, 0)
	ctx.ClutMode(GU_PSM_8888)
	d.cyclePalette(0)
	if err := ctx.ClutLoad(GU_PALETTE_ENTRIES/GU_CLUT_BLOCK, d.palette); err != nil {
		return err
	}
	return ctx.TexImage(0, demoSpriteSize, demoSpriteSize, demoSpriteSize, d.texels)
}

// cyclePalette fills the palette with a rainbow rotated by step.
func (d *DemoScene) cyclePalette(step int) {
	for i := range GU_PALETTE_ENTRIES {
		phase := float64(i+step) / GU_PALETTE_ENTRIES * 2 * math.Pi
		r := uint32(127 + 127*math.Sin(phase))
		g := uint32(127 + 127*math.Sin(phase+2*math.Pi/3))
		b := uint32(127 + 127*math.Sin(phase+4*math.Pi/3))
		writePixel(d.palette, i*4, GU_PSM_8888, 0xFF000000|b<<16|g<<8|r)
	}
}

func (d *DemoScene) move() {
	if d.controller == nil {
		return
	}
	in := d.controller.PeekBuffer()
	const speed = 3
	if in.Pressed(CTRL_LEFT) {
		d.x -= speed
	}
	if in.Pressed(CTRL_RIGHT) {
		d.x += speed
	}
	if in.Pressed(CTRL_UP) {
		d.y -= speed
	}
	if in.Pressed(CTRL_DOWN) {
		d.y += speed
	}
	d.x += float64(int(in.Lx)-CTRL_ANALOG_CENTER) / 32
	d.y += float64(int(in.Ly)-CTRL_ANALOG_CENTER) / 32
	d.x = math.Max(0, math.Min(d.x, GU_SCREEN_WIDTH-2*demoSpriteSize))
	d.y = math.Max(0, math.Min(d.y, GU_SCREEN_HEIGHT-2*demoSpriteSize))
	d.toneHz.Store(uint32(880 - d.y*2))
}

func (d *DemoScene) Frame(ctx *GuContext, n uint64) error {
	d.move()
	t := float64(n) / 60

	ctx.ClearScreen(0xFF100808)
	shift := uint32(n/2) & 0x3F
	if err := ctx.DrawGradientRect(0, 0, GU_SCREEN_WIDTH, GU_SCREEN_HEIGHT,
		0xFF400000|shift<<8, 0xFF200020, 0xFF000000, 0xFF000010|shift); err != nil {
		return err
	}

	points := make([][2]int, 0, demoStars)
	for _, s := range d.stars {
		x := (s[0] - int(n)*s[2]) % GU_SCREEN_WIDTH
		if x < 0 {
			x += GU_SCREEN_WIDTH
		}
		points = append(points, [2]int{x, s[1]})
	}
	if err := ctx.DrawPoints(points, 0xFFFFFFFF); err != nil {
		return err
	}

	ctx.Disable(GU_TEXTURE_2D)
	wave := make([]DecodedVertex, demoWaveSteps)
	for i := range wave {
		x := float64(i) * GU_SCREEN_WIDTH / (demoWaveSteps - 1)
		wave[i] = DecodedVertex{
			X:     float32(x),
			Y:     float32(220 + 20*math.Sin(x/40+t*3)),
			Color: 0xFF00FFFF,
		}
	}
	if err := ctx.DrawVertices(GU_LINE_STRIP, wave); err != nil {
		return err
	}

	fan := make([]DecodedVertex, 0, demoFanSteps+2)
	fan = append(fan, DecodedVertex{X: 410, Y: 70, Color: 0xFFFFFFFF})
	for i := 0; i <= demoFanSteps; i++ {
		a := float64(i)/demoFanSteps*2*math.Pi + t
		r := 40.0
		if i%2 == 1 {
			r = 24
		}
		fan = append(fan, DecodedVertex{
			X:     float32(410 + r*math.Cos(a)),
			Y:     float32(70 + r*math.Sin(a)),
			Color: 0xFF0080FF,
		})
	}
	if err := ctx.DrawVertices(GU_TRIANGLE_FAN, fan); err != nil {
		return err
	}

	tris := make([]DecodedVertex, 0, 9)
	for k := range 3 {
		cx := 70 + 45*math.Cos(t+float64(k)*2*math.Pi/3)
		cy := 70 + 45*math.Sin(t+float64(k)*2*math.Pi/3)
		for j := range 3 {
			a := -t*2 + float64(j)*2*math.Pi/3
			tris = append(tris, DecodedVertex{
				X:     float32(cx + 16*math.Cos(a)),
				Y:     float32(cy + 16*math.Sin(a)),
				Color: 0xFF000000 | 0xFF<<(8*uint(j)),
			})
		}
	}
	if err := ctx.DrawVertices(GU_TRIANGLES, tris); err != nil {
		return err
	}

	quad := []DecodedVertex{
		{X: 360, Y: 160, Color: 0xC0FF0000},
		{X: 460, Y: 160, Color: 0xC000FF00},
		{X: 460, Y: 200, Color: 0xC00000FF},
		{X: 360, Y: 200, Color: 0xC0FFFFFF},
	}
	if err := ctx.DrawIndexed(GU_TRIANGLES, quad, []byte{0, 1, 2, 0, 2, 3}); err != nil {
		return err
	}
	ctx.Enable(GU_TEXTURE_2D)

	if n%demoCycleEvery == 0 {
		d.cyclePalette(int(n / demoCycleEvery))
		if err := ctx.ClutLoad(GU_PALETTE_ENTRIES/GU_CLUT_BLOCK, d.palette); err != nil {
			return err
		}
	}
	x0, y0 := float32(d.x), float32(d.y)
	x1, y1 := x0+2*demoSpriteSize, y0+2*demoSpriteSize
	if err := ctx.DrawVertices(GU_SPRITES, []DecodedVertex{
		{X: x0, Y: y0, Color: 0xFFFFFFFF},
		{X: x1, Y: y1, U: demoSpriteSize, V: demoSpriteSize, Color: 0xFFFFFFFF},
	}); err != nil {
		return err
	}

	ctx.SetAlpha(FX_ADD, 0x60)
	if err := ctx.DrawFillRect(int(x0)-6, int(y0)-6, int(x1)+6, int(y1)+6, 0xFF40A0FF); err != nil {
		return err
	}
	ctx.SetAlpha(FX_RGBA, 0)
	if err := ctx.DrawRect(int(x0)-1, int(y0)-1, int(x1), int(y1), 0xFFFFFFFF); err != nil {
		return err
	}
	cx, cy := int(x0+x1)/2, int(y0+y1)/2
	if err := ctx.DrawLine(cx-4, cy, cx+4, cy, 0xFF0000FF); err != nil {
		return err
	}
	return ctx.DrawLine(cx, cy-4, cx, cy+4, 0xFF0000FF)
}

func (d *DemoScene) Close() {}
