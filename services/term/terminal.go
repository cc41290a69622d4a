// Package term is the scrolling text terminal drawn on the panel.
package term

import (
	"fmt"
	"image"
	"image/color"

	"wiohid/kernel"
)

// Panel geometry and the fixed glyph cell.
const (
	Width      = 320
	Height     = 240
	CellWidth  = 6
	CellHeight = 12

	// ClearDelay is the pause between two columns of the clear sweep.
	ClearDelay kernel.Cycles = 1000
)

var (
	Black = color.RGBA{A: 0xFF}
	White = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// Display is the set of drawing primitives the terminal needs.
type Display interface {
	DrawGlyph(at image.Point, r rune) error
	// Scroll moves the visible window by lines along the scroll axis of
	// the panel, which is the horizontal axis in landscape orientation.
	Scroll(lines int16) error
	FillRect(r image.Rectangle, c color.RGBA) error
}

// Delayer busy-waits. *kernel.Context implements it.
type Delayer interface {
	Delay(c kernel.Cycles)
}

// State is the terminal mode.
type State uint8

const (
	Writing State = iota
	Clearing
)

func (s State) String() string {
	switch s {
	case Writing:
		return "writing"
	case Clearing:
		return "clearing"
	default:
		return "unknown"
	}
}

// Terminal tracks the cursor and drives the display. It is owned by one
// resource and only used under its lock.
type Terminal struct {
	display Display
	cursor  image.Point
	state   State
	// scrolled is the scroll offset left by clear sweeps, modulo Width.
	scrolled int
}

// New returns a terminal writing at the origin.
func New(d Display) Terminal {
	return Terminal{display: d}
}

// Reset blanks the panel and moves the cursor home.
func (t *Terminal) Reset() error {
	if err := t.display.FillRect(image.Rect(0, 0, Width, Height), Black); err != nil {
		return fmt.Errorf("term: reset: %w", err)
	}
	t.cursor = image.Point{}
	t.state = Writing
	return nil
}

func (t *Terminal) Cursor() image.Point { return t.cursor }
func (t *Terminal) State() State        { return t.state }

// WriteChar draws one character at the cursor and advances it. A newline or
// a cursor past the right edge moves to the next line; a line past the
// bottom edge runs the clear sweep and restarts at the origin.
func (t *Terminal) WriteChar(d Delayer, c rune) error {
	if t.cursor.X >= Width || c == '\n' {
		t.cursor = image.Pt(0, t.cursor.Y+CellHeight)
	}
	if t.cursor.Y >= Height {
		if err := t.clear(d); err != nil {
			return err
		}
		t.cursor = image.Point{}
	}
	if c == '\n' {
		return nil
	}
	if err := t.display.DrawGlyph(t.cursor, c); err != nil {
		return fmt.Errorf("term: draw %q at %v: %w", c, t.cursor, err)
	}
	t.cursor.X += CellWidth
	return nil
}

// WriteString writes every byte of s.
func (t *Terminal) WriteString(d Delayer, s string) error {
	for i := 0; i < len(s); i++ {
		if err := t.WriteChar(d, rune(s[i])); err != nil {
			return err
		}
	}
	return nil
}

// Write appends a segment.
func (t *Terminal) Write(d Delayer, seg TextSegment) error {
	for _, b := range seg.Bytes() {
		if err := t.WriteChar(d, rune(b)); err != nil {
			return err
		}
	}
	return nil
}

// clear sweeps the panel one glyph column at a time: each step scrolls the
// picture by a column, blanks the column and waits ClearDelay cycles.
func (t *Terminal) clear(d Delayer) error {
	t.state = Clearing
	for x := 0; x < Width; x += CellWidth {
		if err := t.scroll(CellWidth); err != nil {
			return err
		}
		if err := t.display.FillRect(image.Rect(x, 0, x+CellWidth, Height), Black); err != nil {
			return fmt.Errorf("term: clear column %d: %w", x, err)
		}
		if d != nil {
			d.Delay(ClearDelay)
		}
	}
	// Bring the scroll origin back so the next page starts at column 0.
	if t.scrolled != 0 {
		if err := t.scroll(Width - t.scrolled); err != nil {
			return err
		}
	}
	t.state = Writing
	return nil
}

func (t *Terminal) scroll(n int) error {
	if err := t.display.Scroll(int16(n)); err != nil {
		return fmt.Errorf("term: scroll: %w", err)
	}
	t.scrolled = (t.scrolled + n) % Width
	return nil
}
