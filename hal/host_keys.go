//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// buttonKeys maps keyboard keys to user buttons, in button order.
var buttonKeys = [ButtonCount]ebiten.Key{
	ebiten.KeyArrowUp,
	ebiten.KeyArrowLeft,
	ebiten.KeyArrowRight,
	ebiten.KeyArrowDown,
	ebiten.KeyEnter,
	ebiten.Key1,
	ebiten.Key2,
}

// keyBounces is how many extra edges a key produces while Shift is held.
const keyBounces = 3

func pollKeys(h *hostHAL) {
	bounces := 0
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		bounces = keyBounces
	}
	for i, k := range buttonKeys {
		switch {
		case inpututil.IsKeyJustPressed(k):
			h.buttons[i].bounce(true, bounces)
		case inpututil.IsKeyJustReleased(k):
			h.buttons[i].bounce(false, bounces)
		}
	}
}
