package core

// Board ties the register file, the clock backend and the firmware
// configuration together
type Board struct {
	RCC    *RCC
	GPIO   *GPIOPort
	Config Config
	Clock  ClockBackend
	Delay  Delay
}

// NewBoard validates cfg and binds the peripherals of file.
// A nil backend means PLLClock.
func NewBoard(file RegisterFile, cfg Config, backend ClockBackend) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		backend = PLLClock{}
	}
	rcc := NewRCC(file)
	return &Board{
		RCC:    rcc,
		GPIO:   NewGPIOC(file, rcc),
		Config: cfg,
		Clock:  backend,
		Delay:  NewDelay(cfg.CPUFrequency),
	}, nil
}

// Init runs clock bring-up followed by GPIO setup.
// With the Spin waiter this only returns once the hardware confirmed every step.
func (b *Board) Init() error {
	if err := b.Clock.Init(b.RCC, &b.Config); err != nil {
		if clockErr, ok := err.(*ClockError); ok {
			RecordEvent(EvtClockFailed, uint32(clockErr.Stage), b.RCC.CR.Get())
		}
		DebugPrintln("[BOOT] " + err.Error())
		return err
	}
	if err := b.GPIO.Init(b.Config.LEDs[:]); err != nil {
		DebugPrintln("[BOOT] gpio init: " + err.Error())
		return err
	}
	RecordEvent(EvtBootDone, b.Config.CPUFrequency, b.RCC.CFGR.Get())
	DebugPrintln("[BOOT] ready, cpu=" + utoa(b.Config.CPUFrequency) + "Hz cfgr=" + hex32(b.RCC.CFGR.Get()))
	return nil
}

// Blinker returns the LED blinker for this board
func (b *Board) Blinker() *Blinker {
	pins := [2]GPIOPin{b.Config.LEDs[0].Pin, b.Config.LEDs[1].Pin}
	return NewBlinker(b.GPIO, pins, b.Delay, b.Config.BlinkPeriodMs)
}

// Boot runs Init and then dumps the event ring, whether or not Init succeeded
func (b *Board) Boot() error {
	err := b.Init()
	DumpEvents()
	return err
}

// Main is the firmware entry point: boot, then blink forever.
// If boot fails under a bounded waiter the firmware parks here.
func Main(b *Board) {
	if err := b.Boot(); err != nil {
		for {
		}
	}
	b.Blinker().Run()
}
