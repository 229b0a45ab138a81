package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"go.eggybyte.com/egg/rpcgen/internal/errors"
)

// DefaultFile is read from the working directory when no file is named.
const DefaultFile = "rpcgen.yaml"

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// File is an explicit options file; it must exist when set.
	File string
	// Dir is searched for DefaultFile when File is empty ("" means ".").
	Dir string
	// Lookup reads environment variables (nil means os.LookupEnv).
	Lookup LookupFunc
}

// Load layers defaults, the YAML options file and RPCGEN_* environment
// variables, then validates the result. Command-line flags are applied by the
// caller on the returned value.
func Load(lo LoadOptions) (Options, error) {
	opts := Defaults()

	path := lo.File
	required := path != ""
	if !required {
		dir := lo.Dir
		if dir == "" {
			dir = "."
		}
		path = filepath.Join(dir, DefaultFile)
	}

	if err := mergeFile(&opts, path, required); err != nil {
		return Options{}, err
	}

	lookup := lo.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := bindEnv(lookup, &opts); err != nil {
		return Options{}, errors.Build(errors.CodeConfig).
			WithOp("config.Load").
			WithMsg("invalid environment override").
			WithErr(err).
			Err()
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func mergeFile(opts *Options, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Build(errors.CodeConfig).
			WithOp("config.Load").
			WithPath(path).
			WithMsg("cannot read options file").
			WithErr(err).
			Err()
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(opts); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		b := errors.Build(errors.CodeConfig).
			WithOp("config.Load").
			WithPath(path).
			WithMsg("malformed options file").
			WithErr(err)
		var te *yaml.TypeError
		if stderrors.As(err, &te) {
			for _, msg := range te.Errors {
				b.WithFindings(errors.Finding{Path: path, Message: strings.TrimPrefix(msg, "yaml: ")})
			}
		}
		return b.Err()
	}
	return nil
}

// Marshal renders opts as YAML, the format Load reads.
func Marshal(opts Options) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(opts); err != nil {
		return nil, errors.Wrap(errors.CodeConfig, "config.Marshal", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(errors.CodeConfig, "config.Marshal", err)
	}
	return buf.Bytes(), nil
}
