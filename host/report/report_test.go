package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/fatih/color"

	"blinkled/core"
	"blinkled/sim"
)

func TestCadenceUniform(t *testing.T) {
	s := Cadence([]float64{80, 80, 80, 80})
	if s.Count != 4 || s.Mean != 80 || s.StdDev != 0 || s.Min != 80 || s.Max != 80 {
		t.Errorf("summary = %+v", s)
	}
}

func TestCadenceSpread(t *testing.T) {
	s := Cadence([]float64{10, 20, 30})
	if s.Mean != 20 || s.Min != 10 || s.Max != 30 {
		t.Errorf("summary = %+v", s)
	}
	if math.Abs(s.StdDev-10) > 1e-9 {
		t.Errorf("stddev = %v, want 10", s.StdDev)
	}
}

func TestCadenceEmpty(t *testing.T) {
	if s := Cadence(nil); s.Count != 0 {
		t.Errorf("summary = %+v", s)
	}
	if s := Cadence([]float64{5}); s.StdDev != 0 || s.Mean != 5 {
		t.Errorf("single sample summary = %+v", s)
	}
}

func TestMilliseconds(t *testing.T) {
	if got := Milliseconds(48000000, 48000000); got != 1000 {
		t.Errorf("Milliseconds = %v, want 1000", got)
	}
}

func TestPrinterTransition(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	p := NewPrinter(&buf, "blue", "green", 1000)

	p.Transition(sim.Transition{Cycle: 2000, LED: 1, Pin: 9, On: true})
	out := buf.String()
	for _, want := range []string{"2000 cyc", "2000.0 ms", "green", "PC9", "ON"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestPrinterEvent(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	p := NewPrinter(&buf, "blue", "green", 1000)

	p.Event(core.Event{Type: core.EvtPLLLocked, Cycle: 42, Value1: 12, Value2: 0x03030083})
	out := buf.String()
	for _, want := range []string{"42 cyc", "PLL_LOCKED", "v1=12", "v2=0x03030083"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
