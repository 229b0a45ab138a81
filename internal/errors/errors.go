// Package errors provides the structured error taxonomy of the generation pipeline.
//
// Overview:
//   - Responsibility: Classify pipeline failures by code and carry source locations
//   - Key Types: Code for classification, E for structured errors, Finding for batched issues
//   - Concurrency Model: All functions are safe for concurrent use
//   - Error Semantics: Compatible with standard library error wrapping
//   - Performance Notes: Minimal allocations, errors are built once per failure
//
// Usage:
//
//	err := errors.New(errors.CodeInput, "schema file is empty")
//	wrapped := errors.Wrap(errors.CodeInput, "schema.Parse", originalErr)
//	code := errors.CodeOf(err)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents an error classification code.
type Code string

// Pipeline error codes, one per failure class.
const (
	CodeInput           Code = "INPUT"
	CodeParse           Code = "PARSE"
	CodeValidation      Code = "VALIDATION"
	CodePlan            Code = "PLAN"
	CodeRender          Code = "RENDER"
	CodeConflict        Code = "CONFLICT"
	CodeMaterialization Code = "MATERIALIZATION"
	CodeConfig          Code = "CONFIG"
)

// Finding is a single located issue inside a batched error.
type Finding struct {
	Path    string `json:"path,omitempty" yaml:"path,omitempty"` // Schema path or file path the issue refers to
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"` // Source line (0 when unknown)
	Message string `json:"message" yaml:"message"`
}

// String formats the finding as "path (line N): message".
func (f Finding) String() string {
	var b strings.Builder
	if f.Path != "" {
		b.WriteString(f.Path)
	}
	if f.Line > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "(line %d)", f.Line)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(f.Message)
	return b.String()
}

// E represents a structured error with code, operation, location, and findings.
type E struct {
	Code     Code      // Error classification code
	Op       string    // Operation that failed
	Path     string    // File or schema path involved (may be empty)
	Line     int       // Source line (0 when unknown)
	Column   int       // Source column (0 when unknown)
	Msg      string    // Human-readable message
	Err      error     // Underlying error (may be nil)
	Findings []Finding // Batched issues (validation, materialization summaries)
}

// Error implements the error interface.
func (e *E) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	if e.Path != "" {
		b.WriteString(e.Path)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
			if e.Column > 0 {
				fmt.Fprintf(&b, ":%d", e.Column)
			}
		}
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		fmt.Fprintf(&b, "%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	}
	if len(e.Findings) > 0 {
		fmt.Fprintf(&b, " (%d issue", len(e.Findings))
		if len(e.Findings) > 1 {
			b.WriteString("s")
		}
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns the underlying error for error unwrapping.
func (e *E) Unwrap() error {
	return e.Err
}

// New creates a new structured error with the given code and message.
func New(code Code, msg string) error {
	return &E{
		Code: code,
		Msg:  msg,
	}
}

// Newf creates a new structured error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &E{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new structured error wrapping an existing error.
// The operation name helps identify where the error occurred.
func Wrap(code Code, op string, err error) error {
	return &E{
		Code: code,
		Op:   op,
		Err:  err,
	}
}

// Wrapf creates a new structured error wrapping an existing error with formatted message.
func Wrapf(code Code, op string, err error, format string, args ...any) error {
	return &E{
		Code: code,
		Op:   op,
		Err:  err,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the error code from an error.
// Returns empty string if the error doesn't have a code.
func CodeOf(err error) Code {
	var e *E
	if err != nil && errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// FindingsOf returns the findings attached to the first *E in the chain.
func FindingsOf(err error) []Finding {
	var e *E
	if err != nil && errors.As(err, &e) {
		return e.Findings
	}
	return nil
}

// As is a convenience wrapper over the standard library's errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is a convenience wrapper over the standard library's errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Builder provides a fluent interface for constructing errors.
type Builder struct {
	e E
}

// Build starts a new error with the given code.
func Build(code Code) *Builder {
	return &Builder{e: E{Code: code}}
}

// WithOp sets the operation that failed.
func (b *Builder) WithOp(op string) *Builder {
	b.e.Op = op
	return b
}

// WithPath sets the file or schema path involved.
func (b *Builder) WithPath(path string) *Builder {
	b.e.Path = path
	return b
}

// WithPosition sets the source line and column.
func (b *Builder) WithPosition(line, column int) *Builder {
	b.e.Line = line
	b.e.Column = column
	return b
}

// WithErr wraps an underlying error.
func (b *Builder) WithErr(err error) *Builder {
	b.e.Err = err
	return b
}

// WithMsg sets a human-readable message.
func (b *Builder) WithMsg(msg string) *Builder {
	b.e.Msg = msg
	return b
}

// WithMsgf sets a formatted human-readable message.
func (b *Builder) WithMsgf(format string, args ...any) *Builder {
	b.e.Msg = fmt.Sprintf(format, args...)
	return b
}

// WithFindings appends findings to the error.
func (b *Builder) WithFindings(findings ...Finding) *Builder {
	b.e.Findings = append(b.e.Findings, findings...)
	return b
}

// Err builds and returns the error.
func (b *Builder) Err() error {
	e := b.e
	return &e
}
