package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"blinkled/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the selected board profile with defaults applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		data, err := p.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the builtin board profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, p := range profile.Builtin() {
			fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(profilesCmd)
}
