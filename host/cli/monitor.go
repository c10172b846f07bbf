package cli

import (
	"github.com/spf13/cobra"

	"blinkled/host/monitor"
	"blinkled/host/report"
	"blinkled/host/serial"
)

var monitorDevice string
var monitorBaud int

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print firmware debug output from a serial device",
	Long: `Reads the debug lines of a firmware built with -tags debug. Under QEMU,
route semihosting to a pty and pass that pty here:

  qemu-system-arm ... -chardev pty,id=dbg -semihosting-config enable=on,chardev=dbg`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := serial.DefaultConfig(monitorDevice)
		cfg.Baud = monitorBaud

		m := monitor.NewMonitor()
		if err := m.ConnectWithConfig(cfg); err != nil {
			return err
		}
		defer m.Close()

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		p := report.NewPrinter(cmd.OutOrStdout(), "A", "B", 0)
		return m.Run(ctx, func(l monitor.Line) {
			printLine(p, l)
		})
	},
}

// printLine renders one firmware line, decoding event ring entries
func printLine(p *report.Printer, l monitor.Line) {
	switch {
	case l.Event != nil:
		p.EventLine(l.Event.Name, l.Event.Cycle, l.Event.Value1, l.Event.Value2)
	case l.Tag == "":
		p.Line("firmware", l.Text)
	default:
		p.Line(l.Tag, l.Text)
	}
}

func init() {
	monitorCmd.Flags().StringVarP(&monitorDevice, "device", "d", "/dev/ttyUSB0", "serial device or pty")
	monitorCmd.Flags().IntVarP(&monitorBaud, "baud", "b", 115200, "baud rate (ignored by a pty)")
	rootCmd.AddCommand(monitorCmd)
}
