//go:build tinygo && qemu

package main

import "blinkled/core"

// QEMU does not model the RCC oscillators, so the ready flags never rise
func clockBackend() core.ClockBackend {
	return core.NoClock{}
}
