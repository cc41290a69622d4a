//go:build !tinygo

package main

import (
	"log"

	"wiohid/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		log.Fatalf("error during command execution: %v", err)
	}
}
