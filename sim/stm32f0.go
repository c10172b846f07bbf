package sim

import "blinkled/core"

// RCC_CR power-on value: HSI on and ready
const resetRCC_CR = core.RCC_CR_HSION | core.RCC_CR_HSIRDY | 0x80

// STM32F0 models the RCC ready flags of an STM32F0 part.
// A false flag models a dead oscillator, a PLL that never locks or a clock
// switch that never confirms.
type STM32F0 struct {
	HSEPresent     bool
	PLLLocks       bool
	SwitchConfirms bool

	// Number of RCC_CR loads after HSEON before HSERDY rises
	HSEStartupPolls uint32
	// Number of RCC_CR loads after PLLON before PLLRDY rises
	PLLLockPolls uint32

	hsePending uint32
	pllPending uint32
}

// NewSTM32F0 returns a model with working oscillator, PLL and clock switch
func NewSTM32F0() *STM32F0 {
	return &STM32F0{HSEPresent: true, PLLLocks: true, SwitchConfirms: true}
}

// Reset writes the power-on register values
func (s *STM32F0) Reset(m *Memory) {
	s.hsePending = 0
	s.pllPending = 0
	m.Poke(core.RCC_CR, resetRCC_CR)
	m.Poke(core.RCC_CFGR, 0)
	m.Poke(core.RCC_CFGR2, 0)
	m.Poke(core.RCC_AHBENR, 0x14) // SRAM and FLITF clocks enabled
	m.Poke(core.GPIOC_MODER, 0)
	m.Poke(core.GPIOC_OTYPER, 0)
	m.Poke(core.GPIOC_ODR, 0)
}

// BeforeLoad counts down oscillator start-up and PLL lock while firmware polls
func (s *STM32F0) BeforeLoad(m *Memory, addr core.Addr) {
	if addr != core.RCC_CR {
		return
	}
	cr := m.Peek(core.RCC_CR)
	if s.hsePending > 0 {
		s.hsePending--
		if s.hsePending == 0 && cr&core.RCC_CR_HSEON != 0 {
			cr |= core.RCC_CR_HSERDY
		}
	}
	if s.pllPending > 0 {
		s.pllPending--
		if s.pllPending == 0 && cr&core.RCC_CR_PLLON != 0 && s.pllInputReady(m, cr) {
			cr |= core.RCC_CR_PLLRDY
		}
	}
	m.Poke(core.RCC_CR, cr)
}

// AfterStore applies the hardware side effects of a store
func (s *STM32F0) AfterStore(m *Memory, addr core.Addr, old, new uint32) {
	switch addr {
	case core.RCC_CR:
		m.Poke(core.RCC_CR, s.controlAfterStore(m, old, new))
	case core.RCC_CFGR:
		m.Poke(core.RCC_CFGR, s.configAfterStore(m, old, new))
	case core.GPIOC_MODER, core.GPIOC_OTYPER, core.GPIOC_ODR:
		// Unclocked port registers ignore writes
		if m.Peek(core.RCC_AHBENR)&core.RCC_AHBENR_IOPCEN == 0 {
			m.Poke(addr, old)
		}
	}
}

func (s *STM32F0) controlAfterStore(m *Memory, old, new uint32) uint32 {
	v := new

	// Ready flags are read-only: keep what the hardware had
	v &^= core.RCC_CR_HSIRDY | core.RCC_CR_HSERDY | core.RCC_CR_PLLRDY
	v |= old & (core.RCC_CR_HSIRDY | core.RCC_CR_HSERDY | core.RCC_CR_PLLRDY)

	sws := core.ClockSource((m.Peek(core.RCC_CFGR) >> core.RCC_CFGR_SWS_Pos) & core.RCC_CFGR_SWS_Msk)

	// HSI cannot be stopped while it clocks the system
	if sws == core.ClockSourceHSI {
		v |= core.RCC_CR_HSION
	}
	if v&core.RCC_CR_HSION != 0 {
		v |= core.RCC_CR_HSIRDY
	} else {
		v &^= core.RCC_CR_HSIRDY
	}

	switch {
	case v&core.RCC_CR_HSEON == 0 || !s.HSEPresent:
		v &^= core.RCC_CR_HSERDY
		s.hsePending = 0
	case old&core.RCC_CR_HSEON == 0 && v&core.RCC_CR_HSERDY == 0:
		if s.HSEStartupPolls == 0 {
			v |= core.RCC_CR_HSERDY
		} else {
			s.hsePending = s.HSEStartupPolls
		}
	}

	switch {
	case v&core.RCC_CR_PLLON == 0 || !s.PLLLocks || !s.pllInputReady(m, v):
		v &^= core.RCC_CR_PLLRDY
		s.pllPending = 0
	case old&core.RCC_CR_PLLON == 0 && v&core.RCC_CR_PLLRDY == 0:
		if s.PLLLockPolls == 0 {
			v |= core.RCC_CR_PLLRDY
		} else {
			s.pllPending = s.PLLLockPolls
		}
	}
	return v
}

func (s *STM32F0) configAfterStore(m *Memory, old, new uint32) uint32 {
	const swsMask = core.RCC_CFGR_SWS_Msk << core.RCC_CFGR_SWS_Pos

	sws := (old & swsMask) >> core.RCC_CFGR_SWS_Pos
	sw := core.ClockSource((new >> core.RCC_CFGR_SW_Pos) & core.RCC_CFGR_SW_Msk)
	if s.SwitchConfirms && s.sourceReady(m, sw) {
		sws = uint32(sw)
	}
	return new&^swsMask | sws<<core.RCC_CFGR_SWS_Pos
}

func (s *STM32F0) pllInputReady(m *Memory, cr uint32) bool {
	if m.Peek(core.RCC_CFGR)&core.RCC_CFGR_PLLSRC_HSE_PREDIV != 0 {
		return cr&core.RCC_CR_HSERDY != 0
	}
	return cr&core.RCC_CR_HSIRDY != 0
}

func (s *STM32F0) sourceReady(m *Memory, src core.ClockSource) bool {
	cr := m.Peek(core.RCC_CR)
	switch src {
	case core.ClockSourceHSI:
		return cr&core.RCC_CR_HSIRDY != 0
	case core.ClockSourceHSE:
		return cr&core.RCC_CR_HSERDY != 0
	case core.ClockSourcePLL:
		return cr&core.RCC_CR_PLLRDY != 0
	default:
		return false
	}
}
