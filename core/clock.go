package core

// ClockBackend brings the system clock to its operating frequency.
// The target picks one at startup: PLLClock on silicon, NoClock under an
// instruction-set simulator that has no oscillator peripherals.
type ClockBackend interface {
	Init(rcc *RCC, cfg *Config) error
}

// PLLClock switches SYSCLK from HSI to HSE/PREDIV x PLLMUL.
// The register sequence is fixed; reordering it hangs or misclocks the part.
type PLLClock struct{}

func (PLLClock) Init(rcc *RCC, cfg *Config) error {
	w := cfg.waiter()

	// (1) Start HSE and wait for the oscillator to settle
	rcc.CR.Set(RCC_CR_HSEON)
	if err := w.Until(func() bool { return rcc.CR.HasBits(RCC_CR_HSERDY) }); err != nil {
		return &ClockError{Stage: StageHSEReady, Err: err}
	}
	RecordEvent(EvtHSEReady, 0, rcc.CR.Get())

	// (2) PREDIV: HSE/2 = 4MHz
	rcc.CFGR2.SetBits(PreDivBits(cfg.PreDiv) << RCC_CFGR2_PREDIV_Pos)

	// (3) PLL input is the PREDIV output
	rcc.CFGR.SetBits(RCC_CFGR_PLLSRC_HSE_PREDIV)

	// (4) PLLMUL: 4MHz x 12 = 48MHz
	rcc.CFGR.SetBits(PLLMulBits(cfg.PLLMul) << RCC_CFGR_PLLMUL_Pos)

	// (5) Enable the PLL and wait for lock
	rcc.CR.SetBits(RCC_CR_PLLON)
	if err := w.Until(func() bool { return rcc.CR.HasBits(RCC_CR_PLLRDY) }); err != nil {
		return &ClockError{Stage: StagePLLReady, Err: err}
	}
	RecordEvent(EvtPLLLocked, cfg.PLLMul, rcc.CR.Get())

	// (6) HCLK = SYSCLK
	rcc.CFGR.ReplaceBits(uint32(cfg.AHB), RCC_CFGR_HPRE_Msk, RCC_CFGR_HPRE_Pos)

	// (7) Switch SYSCLK to the PLL and confirm through SWS
	rcc.CFGR.SetBits(uint32(ClockSourcePLL) << RCC_CFGR_SW_Pos)
	if err := w.Until(func() bool { return rcc.SystemClockSource() == ClockSourcePLL }); err != nil {
		return &ClockError{Stage: StageSysclkSwitch, Err: err}
	}
	RecordEvent(EvtSysclkPLL, uint32(ClockSourcePLL), rcc.CFGR.Get())

	// (8) PCLK = HCLK/2 = 24MHz
	rcc.CFGR.ReplaceBits(uint32(cfg.APB), RCC_CFGR_PPRE_Msk, RCC_CFGR_PPRE_Pos)
	return nil
}

// NoClock leaves the reset clock tree untouched
type NoClock struct{}

func (NoClock) Init(rcc *RCC, cfg *Config) error {
	RecordEvent(EvtClockSkipped, 0, 0)
	return nil
}
