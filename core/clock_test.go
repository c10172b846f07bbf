package core_test

import (
	"context"
	"errors"
	"testing"

	"blinkled/core"
	"blinkled/sim"
)

func newSimBoard(t *testing.T, cfg core.Config, backend core.ClockBackend, model sim.Model) (*core.Board, *sim.Memory) {
	t.Helper()
	b, m, err := sim.NewBoard(cfg, backend, model)
	if err != nil {
		t.Fatalf("NewBoard failed: %v", err)
	}
	return b, m
}

// firstStore returns the sequence number of the first store to addr that
// sets bits which were clear before
func firstStore(t *testing.T, log []sim.Access, addr core.Addr, bits uint32) uint64 {
	t.Helper()
	for _, a := range log {
		if a.Addr == addr && a.Old&bits != bits && a.New&bits == bits {
			return a.Seq
		}
	}
	t.Fatalf("no store to %s setting 0x%08X", sim.RegisterName(addr), bits)
	return 0
}

func TestPLLClockSelectsPLL(t *testing.T) {
	b, m := newSimBoard(t, core.DefaultConfig(), core.PLLClock{}, sim.NewSTM32F0())

	if err := b.Clock.Init(b.RCC, &b.Config); err != nil {
		t.Fatalf("clock init failed: %v", err)
	}

	if got := b.RCC.SystemClockSource(); got != core.ClockSourcePLL {
		t.Errorf("SWS = %v, want PLL", got)
	}

	cfgr := m.Peek(core.RCC_CFGR)
	if got := core.PLLMulFactor(cfgr >> core.RCC_CFGR_PLLMUL_Pos); got != 12 {
		t.Errorf("PLL multiplier = %d, want 12", got)
	}
	if cfgr&core.RCC_CFGR_PLLSRC_HSE_PREDIV == 0 {
		t.Error("PLL source is not HSE/PREDIV")
	}
	if got := (cfgr >> core.RCC_CFGR_HPRE_Pos) & core.RCC_CFGR_HPRE_Msk; got != uint32(core.AHBDiv1) {
		t.Errorf("HPRE = %04b, want 0000", got)
	}
	if got := (cfgr >> core.RCC_CFGR_PPRE_Pos) & core.RCC_CFGR_PPRE_Msk; got != uint32(core.APBDiv2) {
		t.Errorf("PPRE = %03b, want 100", got)
	}
	if got := m.Peek(core.RCC_CFGR2) & core.RCC_CFGR2_PREDIV_Msk; got != 1 {
		t.Errorf("PREDIV = %d, want 1 (divide by 2)", got)
	}

	cr := m.Peek(core.RCC_CR)
	for _, bit := range []uint32{core.RCC_CR_HSEON, core.RCC_CR_HSERDY, core.RCC_CR_PLLON, core.RCC_CR_PLLRDY} {
		if cr&bit == 0 {
			t.Errorf("RCC_CR = 0x%08X, missing 0x%08X", cr, bit)
		}
	}
}

func TestPLLClockWriteOrder(t *testing.T) {
	b, m := newSimBoard(t, core.DefaultConfig(), core.PLLClock{}, sim.NewSTM32F0())

	if err := b.Clock.Init(b.RCC, &b.Config); err != nil {
		t.Fatalf("clock init failed: %v", err)
	}
	log := m.Log()

	hseOn := firstStore(t, log, core.RCC_CR, core.RCC_CR_HSEON)
	prediv := firstStore(t, log, core.RCC_CFGR2, core.PreDivBits(2))
	pllSrc := firstStore(t, log, core.RCC_CFGR, core.RCC_CFGR_PLLSRC_HSE_PREDIV)
	pllMul := firstStore(t, log, core.RCC_CFGR, core.PLLMulBits(12)<<core.RCC_CFGR_PLLMUL_Pos)
	pllOn := firstStore(t, log, core.RCC_CR, core.RCC_CR_PLLON)
	swPLL := firstStore(t, log, core.RCC_CFGR, uint32(core.ClockSourcePLL)<<core.RCC_CFGR_SW_Pos)
	ppre := firstStore(t, log, core.RCC_CFGR, uint32(core.APBDiv2)<<core.RCC_CFGR_PPRE_Pos)

	order := []struct {
		name string
		seq  uint64
	}{
		{"HSEON", hseOn},
		{"PREDIV", prediv},
		{"PLLSRC", pllSrc},
		{"PLLMUL", pllMul},
		{"PLLON", pllOn},
		{"SW=PLL", swPLL},
		{"PPRE", ppre},
	}
	for i := 1; i < len(order); i++ {
		if order[i-1].seq >= order[i].seq {
			t.Errorf("%s (seq %d) must be stored before %s (seq %d)",
				order[i-1].name, order[i-1].seq, order[i].name, order[i].seq)
		}
	}
}

func TestClockInitWaitsForever(t *testing.T) {
	tests := []struct {
		name       string
		model      *sim.STM32F0
		lastStore  core.Addr
		storeCount int
	}{
		{
			name:       "HSE absent",
			model:      &sim.STM32F0{HSEPresent: false, PLLLocks: true, SwitchConfirms: true},
			lastStore:  core.RCC_CR,
			storeCount: 1,
		},
		{
			name:       "PLL never locks",
			model:      &sim.STM32F0{HSEPresent: true, PLLLocks: false, SwitchConfirms: true},
			lastStore:  core.RCC_CR,
			storeCount: 5,
		},
		{
			name:       "clock switch never confirms",
			model:      &sim.STM32F0{HSEPresent: true, PLLLocks: true, SwitchConfirms: false},
			lastStore:  core.RCC_CFGR,
			storeCount: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, m := newSimBoard(t, core.DefaultConfig(), core.PLLClock{}, tt.model)

			const budget = 5000
			m.SetAccessBudget(budget)

			err := sim.Run(context.Background(), m, b.Init)
			if !errors.Is(err, sim.ErrStalled) {
				t.Fatalf("Init returned %v, want it to never return", err)
			}

			log := m.Log()
			if len(log) != tt.storeCount {
				t.Fatalf("got %d stores before the stall, want %d", len(log), tt.storeCount)
			}
			if last := log[len(log)-1]; last.Addr != tt.lastStore {
				t.Errorf("last store went to %s, want %s", sim.RegisterName(last.Addr), sim.RegisterName(tt.lastStore))
			}
			if got := m.Peek(core.RCC_AHBENR) & core.RCC_AHBENR_IOPCEN; got != 0 {
				t.Error("GPIO clock enabled although clock init never finished")
			}
			if m.Accesses() != budget {
				t.Errorf("accesses = %d, want the full budget %d", m.Accesses(), budget)
			}
		})
	}
}

func TestBoundedWaiterReportsStage(t *testing.T) {
	tests := []struct {
		name  string
		model *sim.STM32F0
		stage core.ClockStage
	}{
		{"HSE absent", &sim.STM32F0{HSEPresent: false, PLLLocks: true, SwitchConfirms: true}, core.StageHSEReady},
		{"PLL never locks", &sim.STM32F0{HSEPresent: true, PLLLocks: false, SwitchConfirms: true}, core.StagePLLReady},
		{"switch never confirms", &sim.STM32F0{HSEPresent: true, PLLLocks: true, SwitchConfirms: false}, core.StageSysclkSwitch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := core.DefaultConfig()
			cfg.Waiter = core.Bounded{Attempts: 100}
			b, _ := newSimBoard(t, cfg, core.PLLClock{}, tt.model)

			err := b.Init()
			if !errors.Is(err, core.ErrNotReady) {
				t.Fatalf("Init returned %v, want ErrNotReady", err)
			}
			var clockErr *core.ClockError
			if !errors.As(err, &clockErr) {
				t.Fatalf("error %v is not a ClockError", err)
			}
			if clockErr.Stage != tt.stage {
				t.Errorf("stage = %v, want %v", clockErr.Stage, tt.stage)
			}
		})
	}
}

func TestClockInitPollsUntilReady(t *testing.T) {
	model := sim.NewSTM32F0()
	model.HSEStartupPolls = 200
	model.PLLLockPolls = 50
	b, m := newSimBoard(t, core.DefaultConfig(), core.PLLClock{}, model)

	if err := b.Clock.Init(b.RCC, &b.Config); err != nil {
		t.Fatalf("clock init failed: %v", err)
	}
	if got := m.Loads(core.RCC_CR); got < 250 {
		t.Errorf("RCC_CR loaded %d times, want at least 250 polls", got)
	}
	if got := b.RCC.SystemClockSource(); got != core.ClockSourcePLL {
		t.Errorf("SWS = %v, want PLL", got)
	}
}

func TestNoClockSkipsRCC(t *testing.T) {
	b, m := newSimBoard(t, core.DefaultConfig(), core.NoClock{}, sim.NewSTM32F0())

	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if n := len(m.Stores(core.RCC_CR)) + len(m.Stores(core.RCC_CFGR)) + len(m.Stores(core.RCC_CFGR2)); n != 0 {
		t.Errorf("NoClock made %d clock register stores", n)
	}
	if got := b.RCC.SystemClockSource(); got != core.ClockSourceHSI {
		t.Errorf("SWS = %v, want HSI", got)
	}
	if !b.GPIO.ClockEnabled() {
		t.Error("GPIO init must still run with NoClock")
	}
}
