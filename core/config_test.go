package core

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if got := cfg.SysclkFrequency(); got != CPUFrequency {
		t.Errorf("SysclkFrequency = %d, want %d", got, CPUFrequency)
	}
	if cfg.LEDs[0].Pin != 8 || cfg.LEDs[1].Pin != 9 {
		t.Errorf("LED pins = %d,%d, want 8,9", cfg.LEDs[0].Pin, cfg.LEDs[1].Pin)
	}
	if _, ok := cfg.waiter().(Spin); !ok {
		t.Errorf("default waiter is %T, want Spin", cfg.waiter())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"pin out of range", func(c *Config) { c.LEDs[1].Pin = 16 }, ErrInvalidPin},
		{"bad mode", func(c *Config) { c.LEDs[0].Mode = 4 }, ErrInvalidPin},
		{"duplicate pin", func(c *Config) { c.LEDs[1].Pin = 8 }, ErrDuplicatePin},
		{"prediv zero", func(c *Config) { c.PreDiv = 0 }, ErrInvalidConfig},
		{"pllmul too large", func(c *Config) { c.PLLMul = 17 }, ErrInvalidConfig},
		{"cpu frequency too low", func(c *Config) { c.CPUFrequency = 999 }, ErrInvalidConfig},
		{"zero period", func(c *Config) { c.BlinkPeriodMs = 0 }, ErrInvalidConfig},
		{"period overflows delay count", func(c *Config) { c.BlinkPeriodMs = 100000 }, ErrInvalidConfig},
		{"longest period at 48MHz", func(c *Config) { c.BlinkPeriodMs = 89478 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNilWaiterMeansSpin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Waiter = nil
	if _, ok := cfg.waiter().(Spin); !ok {
		t.Errorf("nil waiter resolved to %T, want Spin", cfg.waiter())
	}
}
