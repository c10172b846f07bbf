package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"blinkled/core"
	"blinkled/host/report"
	"blinkled/sim"
)

var runPhases int
var runStats bool
var runEvents bool
var runShared string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot the firmware in the simulator and blink",
	Long: `Boots the firmware against the simulated register file, then runs the
blink loop and prints every LED transition with its cycle stamp.
With --phases 0 it blinks until interrupted, exactly like the firmware.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSimulation(runShared)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		a, b := s.ledNames()
		p := report.NewPrinter(cmd.OutOrStdout(), a, b, s.board.Config.CPUFrequency)
		pins := [2]core.GPIOPin{s.board.Config.LEDs[0].Pin, s.board.Config.LEDs[1].Pin}

		booted := false
		var transitions []sim.Transition
		err = sim.Run(ctx, s.mem, func() error {
			if err := s.board.Init(); err != nil {
				return err
			}
			booted = true
			p.Line("BOOT", fmt.Sprintf("SYSCLK=%s CFGR=0x%08X", s.board.RCC.SystemClockSource(), s.board.RCC.CFGR.Get()))

			blinker := s.board.Blinker()
			for i := 0; runPhases <= 0 || i < runPhases; i++ {
				if _, err := blinker.Step(); err != nil {
					return err
				}
				for _, tr := range sim.Transitions(s.mem.Log(), core.GPIOC_ODR, pins) {
					p.Transition(tr)
					transitions = append(transitions, tr)
				}
				s.mem.ResetLog()
				if err := s.mem.Flush(); err != nil {
					return err
				}
			}
			return nil
		})

		switch {
		case errors.Is(err, sim.ErrStalled) && !booted:
			err = stallError(s)
		case errors.Is(err, sim.ErrStalled):
			err = nil // interrupted while blinking
		}

		if runEvents {
			for _, evt := range core.Events() {
				p.Event(evt)
			}
		}
		if runStats {
			p.Summary(report.Cadence(sim.PhaseDurations(transitions)))
		}
		if err != nil {
			p.Error(err)
		}
		return err
	},
}

func init() {
	runCmd.Flags().IntVarP(&runPhases, "phases", "n", 8, "blink phases to run (0 = forever)")
	runCmd.Flags().BoolVar(&runStats, "stats", false, "print cadence statistics")
	runCmd.Flags().BoolVar(&runEvents, "events", false, "print the firmware event ring")
	runCmd.Flags().StringVar(&runShared, "shared", "", "back the registers with this file for 'watch'")
	rootCmd.AddCommand(runCmd)
}

// bootOnly runs clock and GPIO init in the simulator
func bootOnly(ctx context.Context, s *simulation) error {
	err := sim.Run(ctx, s.mem, s.board.Init)
	if errors.Is(err, sim.ErrStalled) {
		return stallError(s)
	}
	return err
}
