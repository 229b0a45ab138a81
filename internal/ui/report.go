package ui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"go.eggybyte.com/egg/rpcgen/internal/errors"
	"go.eggybyte.com/egg/rpcgen/internal/layout"
	"go.eggybyte.com/egg/rpcgen/internal/materializer"
)

var outcomeColors = map[materializer.Outcome]*color.Color{
	materializer.OutcomeCreated:      color.New(color.FgGreen),
	materializer.OutcomeWritten:      color.New(color.FgGreen),
	materializer.OutcomeExisted:      color.New(color.Faint),
	materializer.OutcomeUnchanged:    color.New(color.Faint),
	materializer.OutcomeConflict:     color.New(color.FgYellow),
	materializer.OutcomeFailed:       color.New(color.FgRed),
	materializer.OutcomeNotAttempted: color.New(color.Faint),
}

func outcomeLabel(o materializer.Outcome) string {
	label := fmt.Sprintf("%-13s", o)
	if c, ok := outcomeColors[o]; ok {
		return c.Sprint(label)
	}
	return label
}

// Report prints every file outcome followed by a summary line. Directory
// lines are shown in verbose mode only.
func (p *Printer) Report(r *materializer.Report) {
	if r == nil {
		return
	}

	summary := fmt.Sprintf("%d written, %d unchanged, %d conflict(s), %d failed, %d not attempted",
		r.Written, r.Unchanged, r.Conflicts, r.Failed, r.NotAttempted)

	if p.JSON() {
		level := LevelSuccess
		if !r.OK() {
			level = LevelError
		}
		p.emit(level, r, "%s", summary)
		return
	}

	p.mu.Lock()
	if p.verbose {
		for _, d := range r.Directories {
			fmt.Fprintf(p.out, "  %s %s/\n", outcomeLabel(d.Outcome), d.Path)
		}
	}
	for _, f := range r.Files {
		line := fmt.Sprintf("  %s %s", outcomeLabel(f.Outcome), f.Path)
		if f.Error != "" {
			line += " (" + f.Error + ")"
		}
		fmt.Fprintln(p.out, line)
	}
	p.mu.Unlock()

	if r.OK() {
		p.Success("%s", summary)
	} else {
		p.Warning("%s", summary)
	}
}

// Plan prints plan in format "yaml", "json" or "text".
func (p *Printer) Plan(plan *layout.Plan, format string) error {
	var data []byte
	var err error

	switch strings.ToLower(format) {
	case "yaml", "":
		data, err = yaml.Marshal(plan)
	case "json":
		data, err = json.MarshalIndent(plan, "", "  ")
		data = append(data, '\n')
	case "text":
		var b strings.Builder
		for _, d := range plan.Directories {
			fmt.Fprintf(&b, "%s/\n", d)
		}
		for _, f := range plan.Files {
			fmt.Fprintf(&b, "%s  [%s]\n", f.OutputPath, f.TemplateID)
		}
		data = []byte(b.String())
	default:
		return errors.Newf(errors.CodeConfig, "unknown plan format %q (want yaml, json or text)", format)
	}
	if err != nil {
		return errors.Wrap(errors.CodeConfig, "ui.Plan", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = p.out.Write(data)
	return nil
}

// Failure prints err and each of its findings on its own line.
func (p *Printer) Failure(err error) {
	if err == nil {
		return
	}
	findings := errors.FindingsOf(err)

	if p.JSON() {
		p.emit(LevelError, map[string]any{
			"code":     string(errors.CodeOf(err)),
			"findings": findings,
		}, "%v", err)
		return
	}

	p.Error("%v", err)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range findings {
		fmt.Fprintf(p.errOut, "  - %s\n", f)
	}
}
