//go:build tinygo

package main

import (
	"runtime/volatile"
	"unsafe"

	"blinkled/core"
)

// mmio is the memory-mapped peripheral bus: every access is a single
// volatile 32-bit load or store at the register address
type mmio struct{}

func reg(addr core.Addr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(addr)))
}

func (mmio) Load(addr core.Addr) uint32 {
	return reg(addr).Get()
}

func (mmio) Store(addr core.Addr, value uint32) {
	reg(addr).Set(value)
}
