package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"go.eggybyte.com/egg/rpcgen/internal/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show rpcgen version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if a.printer.JSON() {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(info)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\ngo version %s (%s)\n", info, info.GoVersion, info.Platform)
			return err
		},
	}
}
