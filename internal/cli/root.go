package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the root command for the patients binary.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "patients",
		Short:         "Patient table service",
		Long:          "Serves an editable, sortable, searchable patient table held in memory.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config.yml (default: ./config.yml or ./config/config.yml)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))

	return cmd
}
