// GPIO port support
// Configures pins of one port as digital outputs and drives their output data bits
package core

// STM32F0 GPIO port C memory map
const (
	GPIOCBase = Addr(0x48000800)

	GPIO_MODER_Offset  = 0x00 // Port mode register
	GPIO_OTYPER_Offset = 0x04 // Port output type register
	GPIO_ODR_Offset    = 0x14 // Port output data register

	GPIOC_MODER  = GPIOCBase + GPIO_MODER_Offset
	GPIOC_OTYPER = GPIOCBase + GPIO_OTYPER_Offset
	GPIOC_ODR    = GPIOCBase + GPIO_ODR_Offset
)

// GPIOPort is one GPIO bank together with its RCC clock gate
type GPIOPort struct {
	MODER  Register
	OTYPER Register
	ODR    Register

	rcc       *RCC
	clockGate uint32
}

// NewGPIOC binds port C of file
func NewGPIOC(file RegisterFile, rcc *RCC) *GPIOPort {
	return &GPIOPort{
		MODER:     NewRegister(file, GPIOC_MODER),
		OTYPER:    NewRegister(file, GPIOC_OTYPER),
		ODR:       NewRegister(file, GPIOC_ODR),
		rcc:       rcc,
		clockGate: RCC_AHBENR_IOPCEN,
	}
}

// EnableClock opens the AHB clock gate of the port.
// Port registers must not be accessed before this.
func (p *GPIOPort) EnableClock() {
	p.rcc.AHBENR.SetBits(p.clockGate)
}

// ClockEnabled reports whether the port clock gate is open
func (p *GPIOPort) ClockEnabled() bool {
	return p.rcc.AHBENR.HasBits(p.clockGate)
}

// Init enables the port clock, then configures every pin in order
func (p *GPIOPort) Init(pins []PinConfig) error {
	for _, cfg := range pins {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	p.EnableClock()
	RecordEvent(EvtGPIOClock, 0, p.clockGate)

	for _, cfg := range pins {
		if err := p.Configure(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Configure applies mode and output type to one pin
func (p *GPIOPort) Configure(cfg PinConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.MODER.ReplaceBits(uint32(cfg.Mode), 0x3, uint8(cfg.Pin)*2)
	p.OTYPER.ReplaceBits(uint32(cfg.Type), 0x1, uint8(cfg.Pin))
	RecordEvent(EvtPinConfig, uint32(cfg.Pin), uint32(cfg.Mode)<<1|uint32(cfg.Type))
	return nil
}

// SetPin drives the output data bit of pin
func (p *GPIOPort) SetPin(pin GPIOPin, value bool) error {
	if pin > 15 {
		return ErrInvalidPin
	}
	if value {
		p.ODR.SetBits(1 << pin)
	} else {
		p.ODR.ClearBits(1 << pin)
	}
	return nil
}

// GetPin reads back the output data bit of pin
func (p *GPIOPort) GetPin(pin GPIOPin) (bool, error) {
	if pin > 15 {
		return false, ErrInvalidPin
	}
	return p.ODR.HasBits(1 << pin), nil
}

// PinMode reads back the MODER field of pin
func (p *GPIOPort) PinMode(pin GPIOPin) PinMode {
	return PinMode(p.MODER.Field(uint8(pin)*2, 2))
}

// PinType reads back the OTYPER bit of pin
func (p *GPIOPort) PinType(pin GPIOPin) OutputType {
	return OutputType(p.OTYPER.Field(uint8(pin), 1))
}
