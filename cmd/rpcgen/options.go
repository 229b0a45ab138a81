package main

import (
	"github.com/spf13/cobra"

	"go.eggybyte.com/egg/rpcgen/internal/config"
)

// runFlags are the flags shared by generate and plan.
type runFlags struct {
	input  string
	output string

	modulePrefix string
	goVersion    string
	workers      int
	host         string
	port         int
	ioThreads    int
}

func (f *runFlags) register(cmd *cobra.Command) {
	d := config.Defaults()
	flags := cmd.Flags()

	flags.StringVarP(&f.input, "input", "i", "", "path to the .proto schema (required)")
	flags.StringVarP(&f.output, "output", "o", "", "output root directory (required)")
	flags.StringVar(&f.modulePrefix, "module-prefix", d.ModulePrefix, "prefix of the generated Go module path")
	flags.StringVar(&f.goVersion, "go-version", d.GoVersion, "go directive of the generated go.mod")
	flags.IntVar(&f.workers, "workers", d.Workers, "concurrent file writes")
	flags.StringVar(&f.host, "host", d.Server.Host, "server listen host")
	flags.IntVar(&f.port, "port", d.Server.Port, "server listen port")
	flags.IntVar(&f.ioThreads, "io-threads", d.Server.IOThreads, "server I/O threads")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
}

// runConfig layers the options file and environment, applies explicitly set
// flags on top, and builds the run configuration.
func (a *app) runConfig(cmd *cobra.Command, f *runFlags) (config.RunConfig, error) {
	opts, err := config.Load(config.LoadOptions{File: a.configFile})
	if err != nil {
		return config.RunConfig{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("module-prefix") {
		opts.ModulePrefix = f.modulePrefix
	}
	if flags.Changed("go-version") {
		opts.GoVersion = f.goVersion
	}
	if flags.Changed("workers") {
		opts.Workers = f.workers
	}
	if flags.Changed("host") {
		opts.Server.Host = f.host
	}
	if flags.Changed("port") {
		opts.Server.Port = f.port
	}
	if flags.Changed("io-threads") {
		opts.Server.IOThreads = f.ioThreads
	}
	if err := opts.Validate(); err != nil {
		return config.RunConfig{}, err
	}

	return config.NewRunConfig(f.input, f.output, opts)
}
