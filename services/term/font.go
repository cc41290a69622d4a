package term

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// cellBaseline is the baseline offset from the top of a cell.
const cellBaseline = 9

// CellFont draws proggy glyphs centred in a fixed CellWidth x CellHeight
// cell, so the cursor arithmetic never depends on glyph metrics.
//
// Concurrent access is not safe due to internal glyph reuse.
var CellFont tinyfont.Fonter = &cellFont{base: &proggy.TinySZ8pt7b}

type cellFont struct {
	base tinyfont.Fonter
	g    cellGlyph
}

type cellGlyph struct {
	r    rune
	base tinyfont.Glypher
}

func (g *cellGlyph) Draw(display drivers.Displayer, x, y int16, c color.RGBA) {
	if g.base == nil {
		return
	}
	info := g.base.Info()
	pad := (CellWidth - int16(info.XAdvance)) / 2
	if pad < 0 {
		pad = 0
	}
	g.base.Draw(display, x+pad, y, c)
}

func (g *cellGlyph) Info() tinyfont.GlyphInfo {
	return tinyfont.GlyphInfo{
		Rune:     g.r,
		Width:    CellWidth,
		Height:   CellHeight,
		XAdvance: CellWidth,
		XOffset:  0,
		YOffset:  -cellBaseline,
	}
}

func (f *cellFont) GetYAdvance() uint8 { return CellHeight }

func (f *cellFont) GetGlyph(r rune) tinyfont.Glypher {
	if r < 0x20 || r > 0x7e {
		r = '?'
	}
	f.g.r = r
	f.g.base = f.base.GetGlyph(r)
	return &f.g
}
