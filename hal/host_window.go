//go:build !tinygo && cgo

package hal

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"

	"wiohid/internal/buildinfo"
)

// RunWindow shows the panel in a desktop window and maps keyboard keys to
// the user buttons. It blocks until the window closes or run fails.
func RunWindow(ctx context.Context, h HAL, run func(context.Context) error) error {
	hh, ok := h.(*hostHAL)
	if !ok {
		return ErrNotImplemented
	}
	defer hh.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	g := &hostGame{h: hh, done: done}
	ebiten.SetWindowTitle("Wio HID (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(hh.panel.width*2, hh.panel.height*2)
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil {
		return err
	}
	if g.err != nil {
		return g.err
	}
	cancel()
	return quiet(<-done)
}

type hostGame struct {
	h     *hostHAL
	done  <-chan error
	err   error
	pix   []byte
	panel *ebiten.Image
}

func (g *hostGame) Update() error {
	select {
	case err := <-g.done:
		g.err = quiet(err)
		return ebiten.Termination
	default:
	}
	pollKeys(g.h)
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	p := g.h.panel
	if g.panel == nil {
		g.pix = make([]byte, p.width*p.height*4)
		g.panel = ebiten.NewImage(p.width, p.height)
	}
	p.snapshotRGBA(g.pix)
	g.panel.WritePixels(g.pix)
	screen.DrawImage(g.panel, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.panel.width, g.h.panel.height
}
