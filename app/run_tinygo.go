//go:build tinygo

package app

import (
	"context"

	"wiohid/hal"
)

// Run builds the default system on h and services it forever. A fault
// leaves the fault screen up until the board is reset.
func Run(h hal.HAL) {
	a, err := New(h, DefaultConfig())
	if err != nil {
		h.Logger().WriteLineString(err.Error())
		select {}
	}
	if err := a.Run(context.Background()); err != nil {
		h.Logger().WriteLineString(err.Error())
	}
	select {}
}
