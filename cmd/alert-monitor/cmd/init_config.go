package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/alert-monitor/internal/config"
)

func newInitConfigCommand() *cobra.Command {
	var force bool

	command := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration file.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigFilename
			if len(args) > 0 {
				path = args[0]
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists, use --force to overwrite", path)
				}
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

			return err
		},
	}

	command.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return command
}
