package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config FILE",
		Short: "Write a parameter file",
		Long: `Write the model parameters to a file that run and network read back with
--config. The format follows the extension (.yaml, .yml or .json). Values
are the defaults, overridden by any parameter flag given.

Examples:
  virnet config params.yaml
  virnet config --nodes 500 --degree 8 params.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := loadParams(cmd)
			if err != nil {
				return err
			}
			if err := params.Validate(); err != nil {
				return err
			}
			if err := params.WriteToFile(args[0]); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote parameters to %s\n", args[0])
			return nil
		},
	}

	addParamFlags(cmd)
	return cmd
}
