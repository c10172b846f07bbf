//go:build tinygo

package main

import (
	"blinkled/core"
)

func main() {
	initDebug()

	b, err := core.NewBoard(mmio{}, core.DefaultConfig(), clockBackend())
	if err != nil {
		// DefaultConfig always validates; nothing sensible to do otherwise
		for {
		}
	}
	core.Main(b)
}
