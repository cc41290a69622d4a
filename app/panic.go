package app

import (
	"fmt"
	"image/color"
	"strings"
	"unicode/utf8"

	"tinygo.org/x/tinyfont"

	"wiohid/hal"
	"wiohid/kernel"
	"wiohid/services/term"
)

var (
	faultBackground = color.RGBA{R: 0x80, A: 0xFF}
	faultForeground = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// onFault logs the fault and paints it on the panel. It runs once, from
// the kernel goroutine, before Run returns the fault.
func (a *App) onFault(info kernel.FaultInfo) {
	if l := a.h.Logger(); l != nil {
		l.WriteLineString(fmt.Sprintf("wiohid fault: task=%d (%s) value=%v", info.Task, info.Name, info.Value))
		for _, line := range strings.Split(string(info.Stack), "\n") {
			if line != "" {
				l.WriteLineString(line)
			}
		}
	}
	if p := a.h.Panel(); p != nil {
		paintFault(p, faultLines(info))
	}
}

func faultLines(info kernel.FaultInfo) []string {
	lines := []string{
		"wiohid fault",
		fmt.Sprintf("task: %d %s", info.Task, info.Name),
		fmt.Sprintf("fault: %v", info.Value),
	}
	if len(info.Stack) == 0 {
		return append(lines, "stack: unavailable")
	}
	lines = append(lines, "stack:")
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	return lines
}

// paintFault fills the panel and writes lines in terminal cells, wrapping
// long lines and stopping at the bottom edge.
func paintFault(p hal.Panel, lines []string) {
	p.SetScroll(0)
	w, h := p.Size()
	if err := p.FillRectangle(0, 0, w, h, faultBackground); err != nil {
		return
	}

	cols := w / term.CellWidth
	if cols <= 0 {
		cols = 1
	}
	y := int16(0)
	for _, line := range lines {
		for len(line) > 0 {
			if y+term.CellHeight > h {
				p.Display()
				return
			}
			chunk, rest := takeRunes(line, cols)
			drawTextLine(p, term.CellFont, 0, y, chunk, faultForeground)
			y += term.CellHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	p.Display()
}

func drawTextLine(d hal.Panel, font tinyfont.Fonter, x0, y0 int16, s string, fg color.RGBA) {
	x := x0
	for _, r := range s {
		tinyfont.DrawChar(d, font, x, y0+term.CellHeight-3, r, fg)
		x += term.CellWidth
	}
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
