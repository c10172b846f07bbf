package core

// Delay is a calibrated software spin delay.
// Accuracy depends on the compiler and the pipeline; it is good enough for a
// human-visible blink cadence and nothing more precise.
type Delay struct {
	// Loop iterations per millisecond (CPU frequency / 1000)
	PerMillisecond uint32

	// nop runs once per iteration. Nil means the CPU no-op instruction.
	nop func()
}

// NewDelay calibrates a delay for cpuFrequency
func NewDelay(cpuFrequency uint32) Delay {
	return Delay{PerMillisecond: cpuFrequency / 1000}
}

// WithTick returns a copy of d that calls tick instead of the no-op
// instruction on every iteration
func (d Delay) WithTick(tick func()) Delay {
	d.nop = tick
	return d
}

// Iterations returns the loop count for ms milliseconds
func (d Delay) Iterations(ms uint32) uint32 {
	return ms * d.PerMillisecond
}

// Millis busy-waits for about ms milliseconds and returns the number of
// iterations executed
func (d Delay) Millis(ms uint32) uint32 {
	n := d.Iterations(ms)
	nop := d.nop
	if nop == nil {
		nop = cpuNop
	}
	var i uint32
	for i = 0; i < n; i++ {
		nop()
	}
	return i
}
