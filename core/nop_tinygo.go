//go:build tinygo

package core

import "device/arm"

// cpuNop executes one nop so the delay loop cannot be elided
func cpuNop() {
	arm.Asm("nop")
}
