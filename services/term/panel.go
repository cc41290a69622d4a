package term

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// Panel is a landscape display with hardware scrolling, such as the
// ILI9341 driver.
type Panel interface {
	drivers.Displayer
	FillRectangle(x, y, width, height int16, c color.RGBA) error
	SetScroll(line int16)
}

// PanelDisplay renders the terminal primitives on a Panel.
type PanelDisplay struct {
	panel  Panel
	font   tinyfont.Fonter
	fg, bg color.RGBA
	offset int16
}

// NewPanelDisplay draws white cell-font glyphs on black.
func NewPanelDisplay(p Panel) *PanelDisplay {
	return &PanelDisplay{panel: p, font: CellFont, fg: White, bg: Black}
}

func (d *PanelDisplay) DrawGlyph(at image.Point, r rune) error {
	x, y := int16(at.X), int16(at.Y)
	if err := d.panel.FillRectangle(x, y, CellWidth, CellHeight, d.bg); err != nil {
		return err
	}
	tinyfont.DrawChar(d.panel, d.font, x, y+cellBaseline, r, d.fg)
	return nil
}

func (d *PanelDisplay) Scroll(lines int16) error {
	d.offset = (d.offset + lines) % Width
	if d.offset < 0 {
		d.offset += Width
	}
	d.panel.SetScroll(d.offset)
	return nil
}

func (d *PanelDisplay) FillRect(r image.Rectangle, c color.RGBA) error {
	r = r.Intersect(image.Rect(0, 0, Width, Height))
	if r.Empty() {
		return nil
	}
	return d.panel.FillRectangle(int16(r.Min.X), int16(r.Min.Y), int16(r.Dx()), int16(r.Dy()), c)
}

// ScrollOffset returns the scroll line last sent to the panel.
func (d *PanelDisplay) ScrollOffset() int16 { return d.offset }
