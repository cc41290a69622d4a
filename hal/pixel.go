package hal

import "image/color"

// rgb565 packs c the way the panel stores pixels.
func rgb565(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// putRGBA expands an RGB565 pixel into four bytes of an RGBA buffer,
// scaling each channel back to the full 0..255 range.
func putRGBA(dst []byte, p uint16) {
	r, g, b := (p>>11)&0x1F, (p>>5)&0x3F, p&0x1F
	dst[0] = uint8(r * 255 / 31)
	dst[1] = uint8(g * 255 / 63)
	dst[2] = uint8(b * 255 / 31)
	dst[3] = 0xFF
}
