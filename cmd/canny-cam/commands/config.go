package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/canny-cam/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect canny-cam configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Long: `Print the configuration after defaults, the config file and
CANNY_CAM_* environment variables have been merged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "# canny-cam configuration")
			return config.Encode(cmd.OutOrStdout(), a.cfg)
		},
	})
	return cmd
}
