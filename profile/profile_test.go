package profile

import (
	"errors"
	"strings"
	"testing"

	"blinkled/core"
)

func TestBuiltinProfilesValid(t *testing.T) {
	all := Builtin()
	if len(all) == 0 {
		t.Fatal("no builtin profiles")
	}
	for _, b := range all {
		p, err := Find(b.Name)
		if err != nil {
			t.Fatalf("Find(%s) failed: %v", b.Name, err)
		}
		if _, err := p.Config(); err != nil {
			t.Errorf("profile %s: %v", b.Name, err)
		}
		if _, err := p.Backend(); err != nil {
			t.Errorf("profile %s: %v", b.Name, err)
		}
	}
}

func TestDiscoveryDefaults(t *testing.T) {
	p, err := Find("discovery")
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	cfg, err := p.Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}

	want := core.DefaultConfig()
	if cfg.CPUFrequency != want.CPUFrequency || cfg.BlinkPeriodMs != want.BlinkPeriodMs {
		t.Errorf("cpu=%d period=%d, want %d %d", cfg.CPUFrequency, cfg.BlinkPeriodMs, want.CPUFrequency, want.BlinkPeriodMs)
	}
	if cfg.LEDs != want.LEDs {
		t.Errorf("LEDs = %+v, want %+v", cfg.LEDs, want.LEDs)
	}
	if _, ok := cfg.Waiter.(core.Spin); !ok {
		t.Errorf("waiter = %T, want Spin", cfg.Waiter)
	}

	m := p.Model()
	if !m.HSEPresent || !m.PLLLocks || !m.SwitchConfirms {
		t.Errorf("discovery model = %+v, want working hardware", m)
	}
}

func TestFindUnknown(t *testing.T) {
	if _, err := Find("nucleo"); !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("Find returned %v, want ErrUnknownProfile", err)
	}
}

func TestLoadYAML(t *testing.T) {
	data := []byte(`
name: fast
cpu_frequency: 8000
blink_period_ms: 250
clock_backend: none
wait: bounded
pll_locks: false
leds:
  - name: red
    pin: 3
    type: open-drain
  - name: amber
    pin: 4
`)
	p, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg, err := p.Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}

	if cfg.CPUFrequency != 8000 || cfg.BlinkPeriodMs != 250 {
		t.Errorf("cpu=%d period=%d", cfg.CPUFrequency, cfg.BlinkPeriodMs)
	}
	if b, ok := cfg.Waiter.(core.Bounded); !ok || b.Attempts != 100000 {
		t.Errorf("waiter = %#v, want Bounded{100000}", cfg.Waiter)
	}
	if cfg.LEDs[0] != (core.PinConfig{Pin: 3, Mode: core.ModeOutput, Type: core.OpenDrain}) {
		t.Errorf("LED A = %+v", cfg.LEDs[0])
	}
	if backend, _ := p.Backend(); backend != (core.NoClock{}) {
		t.Errorf("backend = %T, want NoClock", backend)
	}
	if m := p.Model(); m.PLLLocks || !m.HSEPresent {
		t.Errorf("model = %+v", m)
	}
}

func TestLoadJSON(t *testing.T) {
	p, err := Load([]byte(`{"name": "json", "blink_period_ms": 500}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.BlinkPeriodMs != 500 || p.CPUFrequency != core.CPUFrequency {
		t.Errorf("profile = %+v", p)
	}
}

func TestLoadRejectsBadProfiles(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"unknown waiter", "wait: forever", ErrUnknownWaiter},
		{"unknown mode", "leds: [{pin: 1, mode: pwm}, {pin: 2}]", ErrUnknownMode},
		{"unknown type", "leds: [{pin: 1, type: totem}, {pin: 2}]", ErrUnknownType},
		{"pin out of range", "leds: [{pin: 16}, {pin: 2}]", core.ErrInvalidPin},
		{"same pin twice", "leds: [{pin: 2}, {pin: 2}]", core.ErrDuplicatePin},
		{"period overflows delay count", "blink_period_ms: 100000", core.ErrInvalidConfig},
		{"cpu frequency not what the PLL gives", "cpu_frequency: 8000", ErrClockMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("Load returned %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Load([]byte("leds: [{pin: 1}]")); err == nil || !strings.Contains(err.Error(), "exactly 2") {
		t.Errorf("single LED accepted: %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	p, _ := Find("slow-crystal")
	data, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "hse_startup_polls: 2000") {
		t.Errorf("marshalled profile:\n%s", data)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	if _, err := Load([]byte("clock_backend: msi")); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Load returned %v, want ErrUnknownBackend", err)
	}
}

func TestCPUFrequencyFreeWithoutPLL(t *testing.T) {
	p, err := Load([]byte("clock_backend: none\ncpu_frequency: 8000000"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg, _ := p.Config(); cfg.CPUFrequency != 8000000 {
		t.Errorf("cpu = %d, want 8000000", cfg.CPUFrequency)
	}
}
