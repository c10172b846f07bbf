package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"blinkled/core"
	"blinkled/profile"
	"blinkled/sim"
)

var verbose bool
var profileName string
var profileFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blinkhost",
	Short: "Host tooling for the blinkled firmware",
	Long: `Runs the blinkled firmware core against a simulated STM32F0 register
file, and monitors the debug output of a real or emulated board.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !verbose {
			log.SetOutput(io.Discard)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "make verbose (enable debug logging)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "discovery", "builtin board profile")
	rootCmd.PersistentFlags().StringVarP(&profileFile, "profile-file", "f", "", "board profile file (YAML or JSON)")
}

// loadProfile resolves the profile selected on the command line
func loadProfile() (*profile.Profile, error) {
	if profileFile != "" {
		data, err := os.ReadFile(profileFile)
		if err != nil {
			return nil, fmt.Errorf("couldn't read profile: %w", err)
		}
		return profile.Load(data)
	}
	return profile.Find(profileName)
}

// simulation is a board wired to simulated memory
type simulation struct {
	prof  *profile.Profile
	board *core.Board
	mem   *sim.Memory
}

// newSimulation builds the board for the selected profile. A non-empty
// shared path backs the registers with a memory-mapped file.
func newSimulation(shared string) (*simulation, error) {
	prof, err := loadProfile()
	if err != nil {
		return nil, err
	}
	cfg, err := prof.Config()
	if err != nil {
		return nil, err
	}
	backend, err := prof.Backend()
	if err != nil {
		return nil, err
	}

	var mem *sim.Memory
	if shared != "" {
		mem, err = sim.OpenShared(shared, sim.DefaultRegions, prof.Model())
		if err != nil {
			return nil, err
		}
	} else {
		mem = sim.New(sim.DefaultRegions, prof.Model())
	}

	board, err := core.NewBoard(mem, cfg, backend)
	if err != nil {
		mem.Close()
		return nil, err
	}
	sim.Attach(board, mem)

	if verbose {
		core.SetDebugWriter(func(s string) { log.Println(s) })
		core.SetDebugEnabled(true)
	}
	log.Printf("profile %s: cpu=%dHz period=%dms backend=%s wait=%s",
		prof.Name, cfg.CPUFrequency, cfg.BlinkPeriodMs, prof.ClockBackend, prof.Wait)

	return &simulation{prof: prof, board: board, mem: mem}, nil
}

func (s *simulation) Close() error {
	return s.mem.Close()
}

func (s *simulation) ledNames() (string, string) {
	return s.prof.LEDs[0].Name, s.prof.LEDs[1].Name
}

// signalContext is cancelled by Ctrl-C
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}

// stallError explains where boot stopped, using the clock registers
func stallError(s *simulation) error {
	cr := s.mem.Peek(core.RCC_CR)
	stage := core.StageSysclkSwitch
	switch {
	case cr&core.RCC_CR_HSERDY == 0:
		stage = core.StageHSEReady
	case cr&core.RCC_CR_PLLON != 0 && cr&core.RCC_CR_PLLRDY == 0:
		stage = core.StagePLLReady
	}
	return fmt.Errorf("%w waiting for %s (RCC_CR=0x%08X, %d polls)",
		sim.ErrStalled, stage, cr, s.mem.Loads(core.RCC_CR)+s.mem.Loads(core.RCC_CFGR))
}
