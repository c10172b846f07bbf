package core

// Phase is one step of the blink cycle
type Phase uint8

const (
	PhaseAOn Phase = iota
	PhaseAOff
	PhaseBOn
	PhaseBOff

	phaseCount = 4
)

func (p Phase) String() string {
	switch p {
	case PhaseAOn:
		return "A on"
	case PhaseAOff:
		return "A off"
	case PhaseBOn:
		return "B on"
	case PhaseBOff:
		return "B off"
	default:
		return "invalid"
	}
}

// LED returns which LED (0 = A, 1 = B) the phase drives and the level
func (p Phase) LED() (index int, on bool) {
	return int(p) / 2, p%2 == 0
}

// Blinker alternates two output pins: A high, A low, B high, B low, each
// followed by one delay period
type Blinker struct {
	gpio     GPIODriver
	pins     [2]GPIOPin
	delay    Delay
	periodMs uint32
	next     Phase
}

// NewBlinker creates a blinker starting in PhaseAOn
func NewBlinker(gpio GPIODriver, pins [2]GPIOPin, delay Delay, periodMs uint32) *Blinker {
	return &Blinker{
		gpio:     gpio,
		pins:     pins,
		delay:    delay,
		periodMs: periodMs,
		next:     PhaseAOn,
	}
}

// Next returns the phase the next Step will execute
func (b *Blinker) Next() Phase {
	return b.next
}

// Step drives the pin for the current phase, waits one period and advances
func (b *Blinker) Step() (Phase, error) {
	phase := b.next
	led, on := phase.LED()
	if err := b.gpio.SetPin(b.pins[led], on); err != nil {
		return phase, err
	}
	RecordEvent(EvtPhase, uint32(phase), uint32(b.pins[led]))
	b.delay.Millis(b.periodMs)
	b.next = (phase + 1) % phaseCount
	return phase, nil
}

// Run blinks forever. It never returns.
func (b *Blinker) Run() {
	for {
		if _, err := b.Step(); err != nil {
			DebugPrintln("[BLINK] step failed: " + err.Error())
		}
	}
}
