package rsrc

import "image/color"

// RGB is one entry of the 8-bit system palette.
type RGB struct {
	R, G, B uint8
}

func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = 0xFFFF
	return
}

// The primary ramps at indices 216-245 share one descending value sequence.
var rampValues = [10]uint8{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA, 0x99, 0x88, 0x77, 0x66}

// The gray ramp at 246-255 ends with pure black.
var grayValues = [10]uint8{0xEE, 0xDD, 0xCC, 0xBB, 0xAA, 0x99, 0x88, 0x77, 0x66, 0x00}

// systemPalette is the classic Mac OS 8-bit system palette used by icl8
// records: a 6x6x6 color cube at indices 0-215, red, green and blue ramps
// at 216-245, and a gray ramp at 246-255. Built once, read-only.
var systemPalette = buildSystemPalette()

func buildSystemPalette() [256]RGB {
	var pal [256]RGB
	i := 0
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				pal[i] = RGB{
					0xFF - uint8(r)*0x33,
					0xFF - uint8(g)*0x33,
					0xFF - uint8(b)*0x33,
				}
				i++
			}
		}
	}
	for _, v := range rampValues {
		pal[i] = RGB{v, 0, 0}
		i++
	}
	for _, v := range rampValues {
		pal[i] = RGB{0, v, 0}
		i++
	}
	for _, v := range rampValues {
		pal[i] = RGB{0, 0, v}
		i++
	}
	for _, v := range grayValues {
		pal[i] = RGB{v, v, v}
		i++
	}
	return pal
}

// PaletteRGB returns the palette entry for an icl8 index byte.
func PaletteRGB(index uint8) RGB {
	return systemPalette[index]
}

// Palette returns a fresh copy of the system palette.
func Palette() color.Palette {
	pal := make(color.Palette, len(systemPalette))
	for i, c := range systemPalette {
		pal[i] = c
	}
	return pal
}
