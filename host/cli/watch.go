package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"blinkled/core"
	"blinkled/host/report"
	"blinkled/sim"
)

var watchShared string
var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the LEDs of a 'run --shared' simulation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchShared == "" {
			return fmt.Errorf("--shared is required")
		}
		prof, err := loadProfile()
		if err != nil {
			return err
		}
		cfg, err := prof.Config()
		if err != nil {
			return err
		}

		mem, err := sim.OpenSharedReadOnly(watchShared, sim.DefaultRegions)
		if err != nil {
			return err
		}
		defer mem.Close()

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		p := report.NewPrinter(cmd.OutOrStdout(), prof.LEDs[0].Name, prof.LEDs[1].Name, cfg.CPUFrequency)
		pins := [2]core.GPIOPin{cfg.LEDs[0].Pin, cfg.LEDs[1].Pin}

		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		start := time.Now()
		last := mem.Peek(core.GPIOC_ODR)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
			odr := mem.Peek(core.GPIOC_ODR)
			if odr == last {
				continue
			}
			changes := sim.Transitions([]sim.Access{{Addr: core.GPIOC_ODR, Old: last, New: odr}}, core.GPIOC_ODR, pins)
			for _, tr := range changes {
				tr.Cycle = uint64(time.Since(start).Milliseconds()) * uint64(cfg.CPUFrequency/1000)
				p.Transition(tr)
			}
			last = odr
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchShared, "shared", "", "register window file written by 'run --shared'")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 20*time.Millisecond, "poll interval")
	rootCmd.AddCommand(watchCmd)
}
