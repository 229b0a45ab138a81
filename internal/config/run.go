package config

import (
	"os"
	"path/filepath"
	"strings"

	"go.eggybyte.com/egg/rpcgen/internal/errors"
)

// RunConfig is the immutable input of one generation run.
type RunConfig struct {
	InputPath  string
	OutputRoot string
	Options    Options
}

// NewRunConfig checks that input names an existing .proto file and cleans a
// trailing separator off output. An empty output is passed through unchanged
// so the planner can reject it.
func NewRunConfig(input, output string, opts Options) (RunConfig, error) {
	if input == "" {
		return RunConfig{}, errors.Build(errors.CodeInput).
			WithOp("config.NewRunConfig").
			WithMsg("input schema path is required").
			Err()
	}
	if filepath.Ext(input) != ".proto" {
		return RunConfig{}, errors.Build(errors.CodeInput).
			WithOp("config.NewRunConfig").
			WithPath(input).
			WithMsg("input must be a .proto file").
			Err()
	}
	info, err := os.Stat(input)
	if err != nil {
		return RunConfig{}, errors.Build(errors.CodeInput).
			WithOp("config.NewRunConfig").
			WithPath(input).
			WithMsg("input schema not found").
			WithErr(err).
			Err()
	}
	if info.IsDir() {
		return RunConfig{}, errors.Build(errors.CodeInput).
			WithOp("config.NewRunConfig").
			WithPath(input).
			WithMsg("input schema is a directory").
			Err()
	}

	return RunConfig{
		InputPath:  input,
		OutputRoot: NormalizeOutput(output),
		Options:    opts,
	}, nil
}

// NormalizeOutput cleans path and strips trailing separators. "" stays "".
func NormalizeOutput(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	return filepath.Clean(path)
}
