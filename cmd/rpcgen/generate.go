package main

import (
	"github.com/spf13/cobra"

	"go.eggybyte.com/egg/rpcgen/internal/generator"
)

func newGenerateCmd(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a project scaffold from a .proto schema",
		Long: `Generate parses the schema, validates it, plans the project layout and
writes every file below <output>/<project>.

Existing files with identical content are left alone. Existing files with
different content are reported as conflicts and never overwritten.

Examples:
  rpcgen generate -i order.proto -o ./out
  rpcgen generate -i order.proto -o ./out --module-prefix github.com/acme`,
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

			a.printer.Info("Generating from %s into %s", run.InputPath, run.OutputRoot)
			a.printer.Debug("Module prefix %q, go %s, %d worker(s)",
				run.Options.ModulePrefix, run.Options.GoVersion, run.Options.Workers)
			report, err := g.Generate(cmd.Context(), run)
			a.printer.Report(report)
			return err
		},
	}
	f.register(cmd)
	return cmd
}
