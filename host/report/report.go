// Package report formats simulator results for the terminal
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"blinkled/core"
	"blinkled/sim"
)

// Summary describes the spread of blink phase lengths in cycles
type Summary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Cadence summarises phase durations
func Cadence(durations []float64) Summary {
	if len(durations) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(durations, nil)
	if len(durations) == 1 {
		std = 0
	}
	return Summary{
		Count:  len(durations),
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(durations),
		Max:    floats.Max(durations),
	}
}

// Milliseconds converts a cycle count to milliseconds at cpuFrequency
func Milliseconds(cycles float64, cpuFrequency uint32) float64 {
	return cycles * 1000 / float64(cpuFrequency)
}

var (
	tagColor   = color.New(color.FgCyan, color.Bold)
	errorColor = color.New(color.FgRed, color.Bold)
	dimColor   = color.New(color.Faint)
)

// ledColor picks a colour for an LED by name
func ledColor(name string) *color.Color {
	switch strings.ToLower(name) {
	case "blue":
		return color.New(color.FgBlue, color.Bold)
	case "green":
		return color.New(color.FgGreen, color.Bold)
	case "red":
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgYellow, color.Bold)
	}
}

// Printer writes coloured simulator output
type Printer struct {
	w        io.Writer
	ledNames [2]string
	cpuFreq  uint32
}

// NewPrinter creates a printer for LEDs named a and b
func NewPrinter(w io.Writer, a, b string, cpuFrequency uint32) *Printer {
	return &Printer{w: w, ledNames: [2]string{a, b}, cpuFreq: cpuFrequency}
}

// Transition prints one LED level change
func (p *Printer) Transition(tr sim.Transition) {
	state := "off"
	if tr.On {
		state = "ON "
	}
	name := p.ledNames[tr.LED]
	fmt.Fprintf(p.w, "%s %-6s PC%-2d %s\n",
		dimColor.Sprintf("%12d cyc %9.1f ms", tr.Cycle, Milliseconds(float64(tr.Cycle), p.cpuFreq)),
		ledColor(name).Sprint(name), tr.Pin, state)
}

// Access prints one logged register store
func (p *Printer) Access(a sim.Access) {
	fmt.Fprintf(p.w, "%s %-12s %08X -> %08X\n",
		dimColor.Sprintf("#%-6d", a.Seq), tagColor.Sprint(sim.RegisterName(a.Addr)), a.Old, a.New)
}

// Event prints one core event
func (p *Printer) Event(evt core.Event) {
	p.EventLine(core.EventName(evt.Type), evt.Cycle, evt.Value1, evt.Value2)
}

// EventLine prints an event known only by name, as decoded from a firmware dump
func (p *Printer) EventLine(name string, cycle, v1, v2 uint32) {
	fmt.Fprintf(p.w, "%s %-13s v1=%d v2=0x%08X\n",
		dimColor.Sprintf("%12d cyc", cycle), tagColor.Sprint(name), v1, v2)
}

// Summary prints cadence statistics
func (p *Printer) Summary(s Summary) {
	if s.Count == 0 {
		fmt.Fprintln(p.w, "no complete phases")
		return
	}
	fmt.Fprintf(p.w, "%s phases=%d mean=%.1f ms stddev=%.3f ms min=%.1f ms max=%.1f ms\n",
		tagColor.Sprint("cadence"), s.Count,
		Milliseconds(s.Mean, p.cpuFreq), Milliseconds(s.StdDev, p.cpuFreq),
		Milliseconds(s.Min, p.cpuFreq), Milliseconds(s.Max, p.cpuFreq))
}

// Line prints a tagged message
func (p *Printer) Line(tag, text string) {
	fmt.Fprintf(p.w, "%s %s\n", tagColor.Sprintf("[%s]", tag), text)
}

// Error prints an error
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.w, "%s %v\n", errorColor.Sprint("error:"), err)
}
