package core

// GPIOPin identifies a pin number within one GPIO port (0..15)
type GPIOPin uint8

// PinMode is the 2-bit MODER encoding
type PinMode uint32

const (
	ModeInput     PinMode = 0b00
	ModeOutput    PinMode = 0b01
	ModeAlternate PinMode = 0b10
	ModeAnalog    PinMode = 0b11
)

func (m PinMode) String() string {
	switch m {
	case ModeInput:
		return "input"
	case ModeOutput:
		return "output"
	case ModeAlternate:
		return "alternate"
	case ModeAnalog:
		return "analog"
	default:
		return "invalid"
	}
}

// OutputType is the 1-bit OTYPER encoding
type OutputType uint32

const (
	PushPull  OutputType = 0
	OpenDrain OutputType = 1
)

func (t OutputType) String() string {
	switch t {
	case PushPull:
		return "push-pull"
	case OpenDrain:
		return "open-drain"
	default:
		return "invalid"
	}
}

// PinConfig is the (pin, mode, type) tuple applied by GpioInit
type PinConfig struct {
	Pin  GPIOPin
	Mode PinMode
	Type OutputType
}

// Validate rejects pin numbers and encodings the port cannot hold
func (p PinConfig) Validate() error {
	if p.Pin > 15 || p.Mode > ModeAnalog || p.Type > OpenDrain {
		return ErrInvalidPin
	}
	return nil
}

// GPIODriver is the abstract GPIO interface the blink loop uses.
// GPIOPort implements it on top of a register file.
type GPIODriver interface {
	// Configure applies mode and output type to a pin
	Configure(cfg PinConfig) error

	// SetPin drives the pin high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads back the output data bit of the pin
	GetPin(pin GPIOPin) (bool, error)
}
