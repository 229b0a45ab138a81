// Package config assembles the per-invocation run configuration.
//
// Overview:
//   - Responsibility: Options defaults, YAML and environment layering, validation
//   - Key Types: Options (generator settings), RunConfig (one immutable run)
//   - Concurrency Model: Values are plain data; build once, then share read-only
//   - Error Semantics: Every failure is a CONFIG error; invalid fields become findings
//   - Performance Notes: Reflection runs once per invocation
//
// Usage:
//
//	opts, err := config.Load(config.LoadOptions{File: "rpcgen.yaml"})
//	run, err := config.NewRunConfig("order.proto", "./out", opts)
package config

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"go.eggybyte.com/egg/rpcgen/internal/errors"
)

// Options holds the generator settings that flow into the scaffold.
type Options struct {
	// ModulePrefix is prepended to the project name to form the Go module path
	// of the scaffold ("github.com/acme" gives "github.com/acme/order").
	ModulePrefix string `yaml:"module_prefix" env:"RPCGEN_MODULE_PREFIX" validate:"omitempty,excludesrune= "`

	// GoVersion is written to the scaffold's go.mod.
	GoVersion string `yaml:"go_version" env:"RPCGEN_GO_VERSION" validate:"required,goversion"`

	// Workers bounds concurrent file writes.
	Workers int `yaml:"workers" env:"RPCGEN_WORKERS" validate:"min=1,max=64"`

	Server ServerOptions `yaml:"server"`
	Log    LogOptions    `yaml:"log"`
}

// ServerOptions are the listen settings rendered into conf/<project>.yaml.
type ServerOptions struct {
	Host      string `yaml:"host" env:"RPCGEN_SERVER_HOST" validate:"required,ip|hostname"`
	Port      int    `yaml:"port" env:"RPCGEN_SERVER_PORT" validate:"min=1,max=65535"`
	IOThreads int    `yaml:"io_threads" env:"RPCGEN_SERVER_IO_THREADS" validate:"min=1,max=256"`
}

// LogOptions are the logging settings rendered into conf/<project>.yaml.
type LogOptions struct {
	Level          string `yaml:"level" env:"RPCGEN_LOG_LEVEL" validate:"oneof=debug info warn error"`
	Dir            string `yaml:"dir" env:"RPCGEN_LOG_DIR" validate:"required"`
	MaxFileSizeMB  int    `yaml:"max_file_size_mb" env:"RPCGEN_LOG_MAX_FILE_SIZE_MB" validate:"min=1"`
	SyncIntervalMS int    `yaml:"sync_interval_ms" env:"RPCGEN_LOG_SYNC_INTERVAL_MS" validate:"min=1"`
}

// Defaults returns the built-in option values.
func Defaults() Options {
	return Options{
		GoVersion: "1.22",
		Workers:   4,
		Server: ServerOptions{
			Host:      "0.0.0.0",
			Port:      12345,
			IOThreads: 4,
		},
		Log: LogOptions{
			Level:          "debug",
			Dir:            "log",
			MaxFileSizeMB:  100,
			SyncIntervalMS: 500,
		},
	}
}

var goVersionPattern = regexp.MustCompile(`^1\.\d+(\.\d+)?$`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("goversion", func(fl validator.FieldLevel) bool {
		return goVersionPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks every field and reports all violations as findings of a
// single CONFIG error.
func (o Options) Validate() error {
	err := newValidator().Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(errors.CodeConfig, "config.Validate", err)
	}

	findings := make([]errors.Finding, 0, len(verrs))
	for _, fe := range verrs {
		findings = append(findings, errors.Finding{
			Path:    fieldPath(fe),
			Message: describe(fe),
		})
	}

	return errors.Build(errors.CodeConfig).
		WithOp("config.Validate").
		WithMsgf("invalid options: %d field(s) rejected", len(findings)).
		WithFindings(findings...).
		Err()
}

// fieldPath drops the root struct name from the namespace ("Options.server.port").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	case "goversion":
		return fmt.Sprintf("must look like 1.N or 1.N.P, got %q", fe.Value())
	case "excludesrune":
		return "must not contain spaces"
	case "ip|hostname":
		return fmt.Sprintf("must be an IP address or host name, got %q", fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
