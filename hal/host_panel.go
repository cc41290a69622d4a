//go:build !tinygo

package hal

import (
	"image/color"
	"sync"
)

// hostPanel is an in-memory RGB565 panel. The scroll offset rotates the
// visible picture horizontally, which is how the panel's vertical scroll
// looks once the display is turned to landscape.
type hostPanel struct {
	mu     sync.Mutex
	width  int
	height int
	buf    []uint16
	scroll int
	frames uint64
}

func newHostPanel(width, height int) *hostPanel {
	return &hostPanel{
		width:  width,
		height: height,
		buf:    make([]uint16, width*height),
	}
}

func (p *hostPanel) Size() (x, y int16) { return int16(p.width), int16(p.height) }

func (p *hostPanel) SetPixel(x, y int16, c color.RGBA) {
	if int(x) < 0 || int(y) < 0 || int(x) >= p.width || int(y) >= p.height {
		return
	}
	p.mu.Lock()
	p.buf[int(y)*p.width+int(x)] = rgb565(c)
	p.mu.Unlock()
}

func (p *hostPanel) Display() error {
	p.mu.Lock()
	p.frames++
	p.mu.Unlock()
	return nil
}

func (p *hostPanel) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0, y0 := max(int(x), 0), max(int(y), 0)
	x1, y1 := min(int(x)+int(width), p.width), min(int(y)+int(height), p.height)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}
	v := rgb565(c)

	p.mu.Lock()
	defer p.mu.Unlock()
	for yy := y0; yy < y1; yy++ {
		row := p.buf[yy*p.width : (yy+1)*p.width]
		for xx := x0; xx < x1; xx++ {
			row[xx] = v
		}
	}
	return nil
}

func (p *hostPanel) SetScroll(line int16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scroll = ((int(line) % p.width) + p.width) % p.width
}

// at returns the RGB565 value shown at screen position x, y.
func (p *hostPanel) at(x, y int) uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf[y*p.width+(x+p.scroll)%p.width]
}

// snapshotRGBA renders the visible picture into dst, which holds
// width*height*4 bytes.
func (p *hostPanel) snapshotRGBA(dst []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for y := 0; y < p.height; y++ {
		row := p.buf[y*p.width : (y+1)*p.width]
		for x := 0; x < p.width; x++ {
			j := (y*p.width + x) * 4
			if j+3 >= len(dst) {
				return
			}
			putRGBA(dst[j:j+4], row[(x+p.scroll)%p.width])
		}
	}
}
