package sim

import (
	"fmt"
	"io"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"blinkled/core"
)

// Transition is one LED level change seen on the output data register
type Transition struct {
	Cycle uint64
	LED   int // 0 = A, 1 = B
	Pin   core.GPIOPin
	On    bool
}

// Transitions extracts the level changes of pins from the store log, in order
func Transitions(log []Access, odr core.Addr, pins [2]core.GPIOPin) []Transition {
	var out []Transition
	for _, a := range log {
		if a.Addr != odr {
			continue
		}
		for led, pin := range pins {
			bit := uint32(1) << pin
			if a.Old&bit == a.New&bit {
				continue
			}
			out = append(out, Transition{
				Cycle: a.Cycle,
				LED:   led,
				Pin:   pin,
				On:    a.New&bit != 0,
			})
		}
	}
	return out
}

// PhaseDurations returns the cycles between consecutive transitions
func PhaseDurations(ts []Transition) []float64 {
	if len(ts) < 2 {
		return nil
	}
	out := make([]float64, 0, len(ts)-1)
	for i := 1; i < len(ts); i++ {
		out = append(out, float64(ts[i].Cycle-ts[i-1].Cycle))
	}
	return out
}

// Snapshot returns every non-zero register word by address
func (m *Memory) Snapshot() map[core.Addr]uint32 {
	out := make(map[core.Addr]uint32)
	for _, r := range m.Regions() {
		for off := uint32(0); off < r.Size; off += 4 {
			addr := r.Base + core.Addr(off)
			if v := m.Peek(addr); v != 0 {
				out[addr] = v
			}
		}
	}
	return out
}

// RegisterName returns the symbolic name of a known register address
func RegisterName(addr core.Addr) string {
	switch addr {
	case core.RCC_CR:
		return "RCC_CR"
	case core.RCC_CFGR:
		return "RCC_CFGR"
	case core.RCC_AHBENR:
		return "RCC_AHBENR"
	case core.RCC_CFGR2:
		return "RCC_CFGR2"
	case core.GPIOC_MODER:
		return "GPIOC_MODER"
	case core.GPIOC_OTYPER:
		return "GPIOC_OTYPER"
	case core.GPIOC_ODR:
		return "GPIOC_ODR"
	default:
		return fmt.Sprintf("0x%08X", uint32(addr))
	}
}

// Dump writes the non-zero registers in address order
func (m *Memory) Dump(w io.Writer) error {
	snap := m.Snapshot()
	addrs := maps.Keys(snap)
	slices.Sort(addrs)
	for _, addr := range addrs {
		if _, err := fmt.Fprintf(w, "%08X  %-12s  %08X\n", uint32(addr), RegisterName(addr), snap[addr]); err != nil {
			return err
		}
	}
	return nil
}
