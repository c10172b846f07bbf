//go:build !tinygo

package core

// cpuNop is an empty call on regular Go (for testing)
//
//go:noinline
func cpuNop() {}
