//go:build tinygo && debug

package main

import (
	"device/arm"
	"unsafe"

	"blinkled/core"
)

// SYS_WRITE0: write a NUL-terminated string to the debugger console
const semihostWrite0 = 0x04

var lineBuf [96]byte

func semihostCommand(op uint32, param uintptr) {
	arm.AsmFull("mov r0, {op}\n"+
		"mov r1, {param}\n"+
		"bkpt 0xab", map[string]interface{}{"op": op, "param": param})
}

// semihostWrite sends s plus a newline to the debugger console.
// Output is truncated to fit lineBuf.
func semihostWrite(s string) {
	n := copy(lineBuf[:len(lineBuf)-3], s)
	lineBuf[n] = '\r'
	lineBuf[n+1] = '\n'
	lineBuf[n+2] = 0
	semihostCommand(semihostWrite0, uintptr(unsafe.Pointer(&lineBuf[0])))
}

func initDebug() {
	core.SetDebugWriter(semihostWrite)
	core.SetDebugEnabled(true)
	core.DebugPrintln("[BOOT] blinkled debug console")
}
