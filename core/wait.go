package core

import "errors"

// ErrNotReady is returned by a bounded waiter when the hardware condition
// was not observed within its attempt budget
var ErrNotReady = errors.New("hardware not ready")

// ClockStage identifies which clock bring-up wait failed
type ClockStage uint8

const (
	StageHSEReady ClockStage = iota + 1
	StagePLLReady
	StageSysclkSwitch
)

func (s ClockStage) String() string {
	switch s {
	case StageHSEReady:
		return "HSE ready"
	case StagePLLReady:
		return "PLL ready"
	case StageSysclkSwitch:
		return "SYSCLK switch"
	default:
		return "unknown stage"
	}
}

// ClockError reports a clock stage that never confirmed
type ClockError struct {
	Stage ClockStage
	Err   error
}

func (e *ClockError) Error() string {
	return "clock init: " + e.Stage.String() + ": " + e.Err.Error()
}

func (e *ClockError) Unwrap() error {
	return e.Err
}

// Waiter polls a hardware condition until it holds
type Waiter interface {
	Until(cond func() bool) error
}

// Spin polls forever. It only ever returns nil, and only once cond holds.
// This is the production behaviour: a dead oscillator halts the firmware here.
type Spin struct{}

func (Spin) Until(cond func() bool) error {
	for !cond() {
	}
	return nil
}

// Bounded polls at most Attempts times before giving up with ErrNotReady.
// The condition is always polled at least once.
type Bounded struct {
	Attempts uint32
}

func (b Bounded) Until(cond func() bool) error {
	for i := uint32(0); i == 0 || i < b.Attempts; i++ {
		if cond() {
			return nil
		}
	}
	return ErrNotReady
}
