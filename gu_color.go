// gu_color.go - Pixel Format Conversion

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
gu_color.go - Pixel Format Conversion

Conversion between the reduced colour depths of the GU (5650, 5551, 4444)
and the canonical 8888 word (red in bits 0-7, alpha in bits 24-31).
Expansion uses bit replication so a full-scale channel maps to 0xFF.
*/

package main

import "encoding/binary"

func expand4(c uint32) uint32 { return c<<4 | c }
func expand5(c uint32) uint32 { return c<<3 | c>>2 }
func expand6(c uint32) uint32 { return c<<2 | c>>4 }

// ColorChannels unpacks the canonical word.
func ColorChannels(c uint32) (r, g, b, a uint8) {
	return uint8(c), uint8(c >> 8), uint8(c >> 16), uint8(c >> 24)
}

// ConvertTo8888 expands a pixel of the given storage mode to 8888.
func ConvertTo8888(psm int, c uint32) uint32 {
	switch psm {
	case GU_PSM_5650:
		return expand5(c&0x1F) | expand6((c>>5)&0x3F)<<8 | expand5((c>>11)&0x1F)<<16 | 0xFF000000
	case GU_PSM_5551:
		a := uint32(0)
		if c&0x8000 != 0 {
			a = 0xFF000000
		}
		return expand5(c&0x1F) | expand5((c>>5)&0x1F)<<8 | expand5((c>>10)&0x1F)<<16 | a
	case GU_PSM_4444:
		return expand4(c&0xF) | expand4((c>>4)&0xF)<<8 | expand4((c>>8)&0xF)<<16 | expand4((c>>12)&0xF)<<24
	}
	return c
}

// ConvertFrom8888 truncates an 8888 pixel to the given storage mode. It is
// the exact inverse of ConvertTo8888 on every expanded value.
func ConvertFrom8888(psm int, c uint32) uint32 {
	r, g, b, a := c&0xFF, (c>>8)&0xFF, (c>>16)&0xFF, c>>24
	switch psm {
	case GU_PSM_5650:
		return r>>3 | (g>>2)<<5 | (b>>3)<<11
	case GU_PSM_5551:
		return r>>3 | (g>>3)<<5 | (b>>3)<<10 | (a>>7)<<15
	case GU_PSM_4444:
		return r>>4 | (g>>4)<<4 | (b>>4)<<8 | (a>>4)<<12
	}
	return c
}

// PixelBits returns the storage size of one pixel.
func PixelBits(psm int) int {
	switch psm {
	case GU_PSM_5650, GU_PSM_5551, GU_PSM_4444:
		return 16
	case GU_PSM_8888:
		return 32
	case GU_PSM_T4:
		return 4
	case GU_PSM_T8:
		return 8
	}
	return 0
}

func isIndexedFormat(psm int) bool {
	return psm == GU_PSM_T4 || psm == GU_PSM_T8
}

func isDirectFormat(psm int) bool {
	return psm >= GU_PSM_5650 && psm <= GU_PSM_8888
}

// NextPow2 rounds n up to a power of two.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func readPixel(mem []byte, off int, psm int) uint32 {
	if PixelBits(psm) == 16 {
		return ConvertTo8888(psm, uint32(binary.LittleEndian.Uint16(mem[off:])))
	}
	return binary.LittleEndian.Uint32(mem[off:])
}

func writePixel(mem []byte, off int, psm int, c uint32) {
	if PixelBits(psm) == 16 {
		binary.LittleEndian.PutUint16(mem[off:], uint16(ConvertFrom8888(psm, c)))
		return
	}
	binary.LittleEndian.PutUint32(mem[off:], c)
}

// modulateColor multiplies two canonical words channel by channel,
// normalizing each product by 255.
func modulateColor(c, m uint32) uint32 {
	var out uint32
	for shift := uint(0); shift < 32; shift += 8 {
		v := (c >> shift) & 0xFF
		k := (m >> shift) & 0xFF
		out |= (v * k / 255) << shift
	}
	return out
}
