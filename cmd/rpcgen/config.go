package main

import (
	"github.com/spf13/cobra"

	"go.eggybyte.com/egg/rpcgen/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective options as YAML",
		Long: `Config resolves defaults, the options file and RPCGEN_* environment
variables, validates the result and prints it in the format rpcgen.yaml uses.

Examples:
  rpcgen config > rpcgen.yaml
  RPCGEN_WORKERS=8 rpcgen config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.Load(config.LoadOptions{File: a.configFile})
			if err != nil {
				return err
			}
			data, err := config.Marshal(opts)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
