//go:build tinygo && !qemu

package main

import "blinkled/core"

func clockBackend() core.ClockBackend {
	return core.PLLClock{}
}
