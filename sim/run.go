package sim

import (
	"context"
	"errors"

	"blinkled/core"
)

// ErrStalled is returned when the firmware goroutine was halted before it
// finished, which is what a hardware-ready flag that never rises looks like
var ErrStalled = errors.New("firmware stalled")

// Attach routes the board's delay loop and the core event clock through m,
// so one delay iteration is one simulated cycle
func Attach(b *core.Board, m *Memory) {
	b.Delay = b.Delay.WithTick(m.Tick)
	core.SetEventClock(func() uint32 { return uint32(m.Cycles()) })
}

// NewBoard creates simulated memory with model and a board attached to it
func NewBoard(cfg core.Config, backend core.ClockBackend, model Model) (*core.Board, *Memory, error) {
	m := New(DefaultRegions, model)
	b, err := core.NewBoard(m, cfg, backend)
	if err != nil {
		return nil, nil, err
	}
	Attach(b, m)
	return b, m, nil
}

// Run executes fn on its own goroutine against m. If ctx ends first the
// memory is halted, which terminates fn at its next register access, and
// ErrStalled is returned. A goroutine stopped by an access budget also
// yields ErrStalled.
func Run(ctx context.Context, m *Memory, fn func() error) error {
	var (
		err      error
		returned bool
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		err = fn()
		returned = true
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.Halt()
		<-done
	}
	if !returned {
		return ErrStalled
	}
	return err
}

// Blink boots the board inside Run and then executes phases blink steps.
// onPhase, if set, is called after every step on the firmware goroutine.
func Blink(ctx context.Context, b *core.Board, m *Memory, phases int, onPhase func(core.Phase)) error {
	return Run(ctx, m, func() error {
		if err := b.Init(); err != nil {
			return err
		}
		blinker := b.Blinker()
		for i := 0; phases <= 0 || i < phases; i++ {
			phase, err := blinker.Step()
			if err != nil {
				return err
			}
			if onPhase != nil {
				onPhase(phase)
			}
		}
		return nil
	})
}
