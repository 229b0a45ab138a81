// Package ui provides the user-facing output of the rpcgen CLI.
//
// Overview:
//   - Responsibility: Levelled messages, run reports, plan listings, failures
//   - Key Types: Printer, Message
//   - Concurrency Model: A Printer serializes writes and is safe for concurrent use
//   - Error Semantics: Write errors are dropped; output is best effort
//   - Performance Notes: One formatted write per message
//
// Usage:
//
//	p := ui.New(os.Stdout, os.Stderr)
//	p.Info("Generating %s", path)
//	p.Report(report)
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

// OutputLevel represents the severity level of a message.
type OutputLevel string

// Message levels.
const (
	LevelDebug   OutputLevel = "debug"
	LevelInfo    OutputLevel = "info"
	LevelWarning OutputLevel = "warning"
	LevelError   OutputLevel = "error"
	LevelSuccess OutputLevel = "success"
)

// Message is the JSON form of one output line.
type Message struct {
	Level     OutputLevel `json:"level"`
	Text      string      `json:"text"`
	Data      any         `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type prefix struct {
	label string
	color *color.Color
}

var prefixes = map[OutputLevel]prefix{
	LevelDebug:   {"DEBUG", color.New(color.FgMagenta)},
	LevelInfo:    {"INFO ", color.New(color.FgCyan)},
	LevelWarning: {"WARN ", color.New(color.FgYellow)},
	LevelError:   {"ERROR", color.New(color.FgRed, color.Bold)},
	LevelSuccess: {"DONE ", color.New(color.FgGreen)},
}

// Printer writes CLI output. Errors go to the error stream; everything else
// goes to the output stream.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	verbose bool
	json    bool
	now     func() time.Time
}

// New creates a Printer writing to out and errOut.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut, now: time.Now}
}

// SetVerbose enables debug messages.
func (p *Printer) SetVerbose(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verbose = enabled
}

// SetJSON switches every message to one JSON object per line.
func (p *Printer) SetJSON(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.json = enabled
}

// JSON reports whether JSON output is enabled.
func (p *Printer) JSON() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.json
}

func (p *Printer) emit(level OutputLevel, data any, format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if level == LevelDebug && !p.verbose {
		return
	}

	text := fmt.Sprintf(format, args...)
	w := p.out
	if level == LevelError {
		w = p.errOut
	}

	if p.json {
		msg := Message{Level: level, Text: text, Data: data, Timestamp: p.now().UTC()}
		if err := json.NewEncoder(w).Encode(msg); err != nil {
			fmt.Fprintf(p.errOut, "failed to encode output: %v\n", err)
		}
		return
	}

	pre := prefixes[level]
	fmt.Fprintf(w, "%s %s\n", pre.color.Sprint(pre.label), text)
}

// Debug outputs a message shown only in verbose mode.
func (p *Printer) Debug(format string, args ...any) { p.emit(LevelDebug, nil, format, args...) }

// Info outputs an informational message.
func (p *Printer) Info(format string, args ...any) { p.emit(LevelInfo, nil, format, args...) }

// Warning outputs a warning.
func (p *Printer) Warning(format string, args ...any) { p.emit(LevelWarning, nil, format, args...) }

// Error outputs an error message on the error stream.
func (p *Printer) Error(format string, args ...any) { p.emit(LevelError, nil, format, args...) }

// Success outputs a completion message.
func (p *Printer) Success(format string, args ...any) { p.emit(LevelSuccess, nil, format, args...) }
