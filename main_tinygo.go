//go:build tinygo && wioterminal

package main

import (
	"wiohid/app"
	"wiohid/hal"
)

func main() {
	app.Run(hal.New())
}
