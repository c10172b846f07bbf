package core

// STM32F0 Reset and Clock Control (RCC) memory map
const (
	RCCBase = Addr(0x40021000)

	RCC_CR     = RCCBase + 0x00 // Clock control register
	RCC_CFGR   = RCCBase + 0x04 // Clock configuration register
	RCC_AHBENR = RCCBase + 0x14 // AHB peripheral clock enable register
	RCC_CFGR2  = RCCBase + 0x2C // Clock configuration register 2
)

// RCC_CR bits
const (
	RCC_CR_HSION  uint32 = 1 << 0
	RCC_CR_HSIRDY uint32 = 1 << 1
	RCC_CR_HSEON  uint32 = 1 << 16
	RCC_CR_HSERDY uint32 = 1 << 17
	RCC_CR_PLLON  uint32 = 1 << 24
	RCC_CR_PLLRDY uint32 = 1 << 25
)

// RCC_CFGR fields
const (
	RCC_CFGR_SW_Pos     = 0
	RCC_CFGR_SW_Msk     = 0x3
	RCC_CFGR_SWS_Pos    = 2
	RCC_CFGR_SWS_Msk    = 0x3
	RCC_CFGR_HPRE_Pos   = 4
	RCC_CFGR_HPRE_Msk   = 0xF
	RCC_CFGR_PPRE_Pos   = 8
	RCC_CFGR_PPRE_Msk   = 0x7
	RCC_CFGR_PLLSRC_Pos = 16
	RCC_CFGR_PLLMUL_Pos = 18
	RCC_CFGR_PLLMUL_Msk = 0xF

	// PLLSRC: 0 = HSI/2, 1 = HSE/PREDIV
	RCC_CFGR_PLLSRC_HSE_PREDIV uint32 = 1 << RCC_CFGR_PLLSRC_Pos
)

// RCC_CFGR2 fields
const (
	RCC_CFGR2_PREDIV_Pos = 0
	RCC_CFGR2_PREDIV_Msk = 0xF
)

// RCC_AHBENR bits
const (
	RCC_AHBENR_IOPAEN uint32 = 1 << 17
	RCC_AHBENR_IOPBEN uint32 = 1 << 18
	RCC_AHBENR_IOPCEN uint32 = 1 << 19
)

// ClockSource is the 2-bit SW/SWS encoding of the system clock source
type ClockSource uint32

const (
	ClockSourceHSI ClockSource = 0b00
	ClockSourceHSE ClockSource = 0b01
	ClockSourcePLL ClockSource = 0b10
)

func (s ClockSource) String() string {
	switch s {
	case ClockSourceHSI:
		return "HSI"
	case ClockSourceHSE:
		return "HSE"
	case ClockSourcePLL:
		return "PLL"
	default:
		return "invalid"
	}
}

// AHBPrescaler is the 4-bit HPRE encoding
type AHBPrescaler uint32

const (
	AHBDiv1   AHBPrescaler = 0b0000
	AHBDiv2   AHBPrescaler = 0b1000
	AHBDiv4   AHBPrescaler = 0b1001
	AHBDiv512 AHBPrescaler = 0b1111
)

// APBPrescaler is the 3-bit PPRE encoding (0xx is HCLK not divided)
type APBPrescaler uint32

const (
	APBDiv1  APBPrescaler = 0b000
	APBDiv2  APBPrescaler = 0b100
	APBDiv4  APBPrescaler = 0b101
	APBDiv8  APBPrescaler = 0b110
	APBDiv16 APBPrescaler = 0b111
)

// PLLMulBits encodes a PLL multiplication factor (2..16) into the PLLMUL field
func PLLMulBits(factor uint32) uint32 {
	return (factor - 2) & RCC_CFGR_PLLMUL_Msk
}

// PLLMulFactor decodes the PLLMUL field. 0b1111 also means x16.
func PLLMulFactor(bits uint32) uint32 {
	bits &= RCC_CFGR_PLLMUL_Msk
	if bits == RCC_CFGR_PLLMUL_Msk {
		return 16
	}
	return bits + 2
}

// PreDivBits encodes a pre-divider (1..16) into the PREDIV field
func PreDivBits(divider uint32) uint32 {
	return (divider - 1) & RCC_CFGR2_PREDIV_Msk
}

// RCC groups the clock control registers of one register file
type RCC struct {
	CR     Register
	CFGR   Register
	AHBENR Register
	CFGR2  Register
}

// NewRCC binds the RCC registers to file
func NewRCC(file RegisterFile) *RCC {
	return &RCC{
		CR:     NewRegister(file, RCC_CR),
		CFGR:   NewRegister(file, RCC_CFGR),
		AHBENR: NewRegister(file, RCC_AHBENR),
		CFGR2:  NewRegister(file, RCC_CFGR2),
	}
}

// SystemClockSource reads back the SWS status field
func (r *RCC) SystemClockSource() ClockSource {
	return ClockSource(r.CFGR.Field(RCC_CFGR_SWS_Pos, 2))
}
