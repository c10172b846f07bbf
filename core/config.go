package core

import (
	"errors"
	"math"
)

// Clock tree defaults for the STM32F0 Discovery board
const (
	HSEFrequency    = 8000000  // 8MHz external crystal
	CPUFrequency    = 48000000 // 48MHz SYSCLK after PLL
	DefaultPreDiv   = 2        // HSE/2 = 4MHz PLL input
	DefaultPLLMul   = 12       // 4MHz x 12 = 48MHz
	DefaultPeriodMs = 1000     // LED phase length
)

var (
	ErrInvalidPin    = errors.New("invalid pin")
	ErrDuplicatePin  = errors.New("pin configured twice")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the build-time firmware configuration
type Config struct {
	HSEFrequency uint32 // External oscillator frequency in Hz
	CPUFrequency uint32 // Frequency the delay loop is calibrated for, in Hz
	PreDiv       uint32 // PLL input pre-divider, 1..16
	PLLMul       uint32 // PLL multiplier, 2..16
	AHB          AHBPrescaler
	APB          APBPrescaler

	// Phase length of the blink loop in milliseconds
	BlinkPeriodMs uint32

	// LED A and LED B, in blink order
	LEDs [2]PinConfig

	// Waiter used for every clock ready flag. Nil means Spin.
	Waiter Waiter
}

// DefaultConfig returns the board configuration: 48MHz from HSE/2 x 12,
// AHB at 48MHz, APB at 24MHz, blue LED on PC8 and green LED on PC9
func DefaultConfig() Config {
	return Config{
		HSEFrequency:  HSEFrequency,
		CPUFrequency:  CPUFrequency,
		PreDiv:        DefaultPreDiv,
		PLLMul:        DefaultPLLMul,
		AHB:           AHBDiv1,
		APB:           APBDiv2,
		BlinkPeriodMs: DefaultPeriodMs,
		LEDs: [2]PinConfig{
			{Pin: 8, Mode: ModeOutput, Type: PushPull},
			{Pin: 9, Mode: ModeOutput, Type: PushPull},
		},
		Waiter: Spin{},
	}
}

// SysclkFrequency returns the PLL output frequency the clock tree produces
func (c *Config) SysclkFrequency() uint32 {
	if c.PreDiv == 0 {
		return 0
	}
	return c.HSEFrequency / c.PreDiv * c.PLLMul
}

// Validate checks the configuration before any register is touched
func (c *Config) Validate() error {
	if c.PreDiv < 1 || c.PreDiv > 16 {
		return ErrInvalidConfig
	}
	if c.PLLMul < 2 || c.PLLMul > 16 {
		return ErrInvalidConfig
	}
	if c.CPUFrequency < 1000 || c.BlinkPeriodMs == 0 {
		return ErrInvalidConfig
	}
	// The delay loop counts iterations in 32 bits
	if uint64(c.BlinkPeriodMs)*uint64(c.CPUFrequency/1000) > math.MaxUint32 {
		return ErrInvalidConfig
	}
	for _, led := range c.LEDs {
		if err := led.Validate(); err != nil {
			return err
		}
	}
	if c.LEDs[0].Pin == c.LEDs[1].Pin {
		return ErrDuplicatePin
	}
	return nil
}

func (c *Config) waiter() Waiter {
	if c.Waiter == nil {
		return Spin{}
	}
	return c.Waiter
}
