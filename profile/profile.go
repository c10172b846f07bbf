// Package profile loads board profiles for the host simulator.
// A profile selects the firmware configuration and how the simulated
// hardware behaves.
package profile

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"blinkled/core"
	"blinkled/sim"
)

//go:embed profiles.yaml
var rawProfiles []byte

var builtin []Profile

var (
	ErrUnknownProfile = errors.New("unknown profile")
	ErrUnknownBackend = errors.New("unknown clock backend")
	ErrUnknownWaiter  = errors.New("unknown wait strategy")
	ErrUnknownMode    = errors.New("unknown pin mode")
	ErrUnknownType    = errors.New("unknown output type")
	ErrClockMismatch  = errors.New("cpu frequency differs from the PLL output")
)

// LED describes one blink output
type LED struct {
	Name string `yaml:"name"`
	Pin  uint8  `yaml:"pin"`
	Mode string `yaml:"mode"`
	Type string `yaml:"type"`
}

// Profile is a simulated board
type Profile struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description,omitempty"`
	CPUFrequency  uint32 `yaml:"cpu_frequency"`
	BlinkPeriodMs uint32 `yaml:"blink_period_ms"`
	ClockBackend  string `yaml:"clock_backend"`
	Wait          string `yaml:"wait"`
	WaitAttempts  uint32 `yaml:"wait_attempts,omitempty"`

	// Hardware behaviour, nil means the part works
	HSEPresent     *bool `yaml:"hse_present,omitempty"`
	PLLLocks       *bool `yaml:"pll_locks,omitempty"`
	SwitchConfirms *bool `yaml:"sysclk_switches,omitempty"`

	HSEStartupPolls uint32 `yaml:"hse_startup_polls,omitempty"`
	PLLLockPolls    uint32 `yaml:"pll_lock_polls,omitempty"`

	LEDs []LED `yaml:"leds"`
}

// Builtin returns the profiles shipped with the tool
func Builtin() []Profile {
	out := make([]Profile, len(builtin))
	copy(out, builtin)
	return out
}

// Find returns a builtin profile by name with defaults applied
func Find(name string) (*Profile, error) {
	for _, p := range builtin {
		if p.Name == strings.ToLower(name) {
			found := p
			found.LEDs = append([]LED(nil), p.LEDs...)
			applyDefaults(&found)
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProfile, name)
}

// Load parses a YAML (or JSON) profile and returns it with defaults applied
func Load(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("couldn't parse profile: %w", err)
	}
	applyDefaults(&p)
	if _, err := p.Config(); err != nil {
		return nil, err
	}
	if _, err := p.Backend(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Marshal renders the profile as YAML
func (p *Profile) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// applyDefaults fills in missing values with the Discovery board settings
func applyDefaults(p *Profile) {
	if p.Name == "" {
		p.Name = "custom"
	}
	if p.CPUFrequency == 0 {
		p.CPUFrequency = core.CPUFrequency
	}
	if p.BlinkPeriodMs == 0 {
		p.BlinkPeriodMs = core.DefaultPeriodMs
	}
	if p.ClockBackend == "" {
		p.ClockBackend = "pll"
	}
	if p.Wait == "" {
		p.Wait = "spin"
	}
	if p.Wait == "bounded" && p.WaitAttempts == 0 {
		p.WaitAttempts = 100000
	}
	if len(p.LEDs) == 0 {
		p.LEDs = []LED{
			{Name: "blue", Pin: 8},
			{Name: "green", Pin: 9},
		}
	}
	for i := range p.LEDs {
		if p.LEDs[i].Mode == "" {
			p.LEDs[i].Mode = "output"
		}
		if p.LEDs[i].Type == "" {
			p.LEDs[i].Type = "push-pull"
		}
	}
}

// Config converts the profile into a validated firmware configuration
func (p *Profile) Config() (core.Config, error) {
	cfg := core.DefaultConfig()
	cfg.CPUFrequency = p.CPUFrequency
	cfg.BlinkPeriodMs = p.BlinkPeriodMs

	// The delay loop is calibrated for the clock the backend leaves running
	if p.ClockBackend == "pll" && cfg.CPUFrequency != cfg.SysclkFrequency() {
		return cfg, fmt.Errorf("%w: profile %s: cpu_frequency %d, PLL gives %d",
			ErrClockMismatch, p.Name, cfg.CPUFrequency, cfg.SysclkFrequency())
	}

	switch p.Wait {
	case "spin":
		cfg.Waiter = core.Spin{}
	case "bounded":
		cfg.Waiter = core.Bounded{Attempts: p.WaitAttempts}
	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnknownWaiter, p.Wait)
	}

	if len(p.LEDs) != 2 {
		return cfg, fmt.Errorf("profile %s: need exactly 2 LEDs, got %d", p.Name, len(p.LEDs))
	}
	for i, led := range p.LEDs {
		pc, err := led.PinConfig()
		if err != nil {
			return cfg, fmt.Errorf("profile %s: led %s: %w", p.Name, led.Name, err)
		}
		cfg.LEDs[i] = pc
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return cfg, nil
}

// Backend returns the clock backend the profile selects
func (p *Profile) Backend() (core.ClockBackend, error) {
	switch p.ClockBackend {
	case "pll":
		return core.PLLClock{}, nil
	case "none":
		return core.NoClock{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, p.ClockBackend)
	}
}

// Model returns the simulated hardware the profile describes
func (p *Profile) Model() *sim.STM32F0 {
	m := sim.NewSTM32F0()
	if p.HSEPresent != nil {
		m.HSEPresent = *p.HSEPresent
	}
	if p.PLLLocks != nil {
		m.PLLLocks = *p.PLLLocks
	}
	if p.SwitchConfirms != nil {
		m.SwitchConfirms = *p.SwitchConfirms
	}
	m.HSEStartupPolls = p.HSEStartupPolls
	m.PLLLockPolls = p.PLLLockPolls
	return m
}

// PinConfig converts the LED description into a pin tuple
func (l LED) PinConfig() (core.PinConfig, error) {
	pc := core.PinConfig{Pin: core.GPIOPin(l.Pin)}
	switch strings.ToLower(l.Mode) {
	case "input":
		pc.Mode = core.ModeInput
	case "output":
		pc.Mode = core.ModeOutput
	case "alternate":
		pc.Mode = core.ModeAlternate
	case "analog":
		pc.Mode = core.ModeAnalog
	default:
		return pc, fmt.Errorf("%w: %s", ErrUnknownMode, l.Mode)
	}
	switch strings.ToLower(l.Type) {
	case "push-pull":
		pc.Type = core.PushPull
	case "open-drain":
		pc.Type = core.OpenDrain
	default:
		return pc, fmt.Errorf("%w: %s", ErrUnknownType, l.Type)
	}
	return pc, pc.Validate()
}

func init() {
	var t struct {
		Profiles []Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(rawProfiles, &t); err != nil {
		panic(err)
	}
	builtin = t.Profiles
}
