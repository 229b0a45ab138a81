package main

import (
	"github.com/spf13/cobra"

	"go.eggybyte.com/egg/rpcgen/internal/generator"
)

func newPlanCmd(a *app) *cobra.Command {
	f := &runFlags{}
	var format string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the layout plan without writing anything",
		Long: `Plan runs the parse, validate and plan stages and prints the directories
and files generate would produce.

Examples:
  rpcgen plan -i order.proto -o ./out
  rpcgen plan -i order.proto -o ./out --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := a.runConfig(cmd, f)
			if err != nil {
				return err
			}

			g, err := generator.New(generator.WithLogger(a.logger))
			if err != nil {
				return err
			}

			plan, err := g.PlanOnly(cmd.Context(), run)
			if err != nil {
				return err
			}
			return a.printer.Plan(plan, format)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml, json or text")
	return cmd
}
