package cli

import (
	"github.com/spf13/cobra"

	"blinkled/host/report"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Print the register stores made during boot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSimulation("")
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		err = bootOnly(ctx, s)

		a, b := s.ledNames()
		p := report.NewPrinter(cmd.OutOrStdout(), a, b, s.board.Config.CPUFrequency)
		for _, access := range s.mem.Log() {
			p.Access(access)
		}
		if err != nil {
			p.Error(err)
		}
		return err
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Boot, then print every non-zero register",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSimulation("")
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		bootErr := bootOnly(ctx, s)
		if err := s.mem.Dump(cmd.OutOrStdout()); err != nil {
			return err
		}
		if bootErr != nil {
			a, b := s.ledNames()
			report.NewPrinter(cmd.ErrOrStderr(), a, b, s.board.Config.CPUFrequency).Error(bootErr)
		}
		return bootErr
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(dumpCmd)
}
