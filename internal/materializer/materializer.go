// Package materializer writes a layout plan to disk.
//
// Overview:
//   - Responsibility: Render every planned file, create directories, publish files
//   - Key Types: Materializer, Report, Renderer
//   - Concurrency Model: Directories are created sequentially; files are
//     published by an errgroup bounded by Options.Workers
//   - Error Semantics: RENDER before any write; MATERIALIZATION for directory and
//     write failures; CONFLICT when the first failing file differs on disk
//   - Performance Notes: All content is held in memory between render and write
//
// Usage:
//
//	m := materializer.New("./out", renderer, materializer.Options{Workers: 4})
//	report, err := m.Materialize(ctx, plan)
package materializer

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"

	"golang.org/x/sync/errgroup"

	"go.eggybyte.com/egg/rpcgen/internal/errors"
	"go.eggybyte.com/egg/rpcgen/internal/layout"
	"go.eggybyte.com/egg/rpcgen/internal/logx"
	"go.eggybyte.com/egg/rpcgen/internal/projectfs"
	"go.eggybyte.com/egg/rpcgen/internal/templates"
)

// Renderer produces the content of one file.
type Renderer interface {
	Render(id string, ctx templates.Context) (string, error)
}

// Options configures a Materializer.
type Options struct {
	// Workers bounds concurrent file writes (default 1).
	Workers int
	// FileMode is applied to published files (default 0644).
	FileMode fs.FileMode
	// Logger receives per-step records (default logx.Nop()).
	Logger logx.Logger
}

// Materializer applies plans below one output root.
type Materializer struct {
	fs       *projectfs.FS
	renderer Renderer
	workers  int
	mode     fs.FileMode
	logger   logx.Logger
}

// New creates a Materializer writing below root.
func New(root string, renderer Renderer, opts Options) *Materializer {
	m := &Materializer{
		fs:       projectfs.New(root),
		renderer: renderer,
		workers:  opts.Workers,
		mode:     opts.FileMode,
		logger:   opts.Logger,
	}
	if m.workers < 1 {
		m.workers = 1
	}
	if m.mode == 0 {
		m.mode = 0o644
	}
	if m.logger == nil {
		m.logger = logx.Nop()
	}
	return m
}

// Materialize renders and writes plan. The returned Report is non-nil
// whenever plan is non-nil, including on error.
//
// Steps:
//  1. Render every file in memory; a failure returns before touching disk.
//  2. Create the output root and each planned directory in order; a failure
//     stops the run and leaves every file not attempted.
//  3. Publish files. Identical existing content is unchanged, differing
//     content is a conflict and is left alone; neither stops other files.
//     ctx is checked before each file.
func (m *Materializer) Materialize(ctx context.Context, plan *layout.Plan) (*Report, error) {
	if plan == nil {
		return nil, errors.Build(errors.CodeMaterialization).
			WithOp("materializer.Materialize").
			WithMsg("no plan").
			Err()
	}

	report := newReport(m.fs.Root(), plan)

	contents, err := m.render(plan)
	if err != nil {
		return report, err
	}

	if err := m.createDirectories(ctx, plan, report); err != nil {
		report.tally()
		return report, err
	}

	m.writeFiles(ctx, plan, contents, report)
	report.tally()
	return report, m.outcomeError(ctx, report)
}

func newReport(root string, plan *layout.Plan) *Report {
	r := &Report{
		Root:        DirResult{Path: root, Outcome: OutcomeNotAttempted},
		Directories: make([]DirResult, len(plan.Directories)),
		Files:       make([]FileResult, len(plan.Files)),
	}
	for i, d := range plan.Directories {
		r.Directories[i] = DirResult{Path: d, Outcome: OutcomeNotAttempted}
	}
	for i, f := range plan.Files {
		r.Files[i] = FileResult{Path: f.OutputPath, TemplateID: f.TemplateID, Outcome: OutcomeNotAttempted}
	}
	r.tally()
	return r
}

func (m *Materializer) render(plan *layout.Plan) ([][]byte, error) {
	out := make([][]byte, len(plan.Files))
	for i, f := range plan.Files {
		text, err := m.renderer.Render(f.TemplateID, f.Context)
		if err != nil {
			m.logger.Error(err, "render failed", "template", f.TemplateID, "path", f.OutputPath)
			if errors.CodeOf(err) == errors.CodeRender {
				return nil, err
			}
			return nil, errors.Build(errors.CodeRender).
				WithOp("materializer.render").
				WithPath(f.OutputPath).
				WithMsgf("template %s failed", f.TemplateID).
				WithErr(err).
				Err()
		}
		out[i] = []byte(text)
	}
	return out, nil
}

func (m *Materializer) createDirectories(ctx context.Context, plan *layout.Plan, report *Report) error {
	fail := func(path string, err error) error {
		m.logger.Error(err, "directory failed", "path", path)
		return errors.Build(errors.CodeMaterialization).
			WithOp("materializer.createDirectories").
			WithPath(path).
			WithMsg("cannot create directory").
			WithErr(err).
			WithFindings(errors.Finding{Path: path, Message: err.Error()}).
			Err()
	}

	if err := ctx.Err(); err != nil {
		return fail(m.fs.Root(), err)
	}

	created, err := m.fs.EnsureRoot()
	if err != nil {
		report.Root.Outcome = OutcomeFailed
		report.Root.Error = err.Error()
		return fail(m.fs.Root(), err)
	}
	report.Root.Outcome = dirOutcome(created)

	for i, d := range plan.Directories {
		created, err := m.fs.CreateDirectory(d)
		if err != nil {
			report.Directories[i].Outcome = OutcomeFailed
			report.Directories[i].Error = err.Error()
			return fail(d, err)
		}
		report.Directories[i].Outcome = dirOutcome(created)
		m.logger.Debug("directory ready", "path", d, "outcome", string(report.Directories[i].Outcome))
	}
	return nil
}

func dirOutcome(created bool) Outcome {
	if created {
		return OutcomeCreated
	}
	return OutcomeExisted
}

func (m *Materializer) writeFiles(ctx context.Context, plan *layout.Plan, contents [][]byte, report *Report) {
	var g errgroup.Group
	g.SetLimit(m.workers)

	for i := range plan.Files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			report.Files[i] = m.writeFile(report.Files[i], contents[i])
			return nil
		})
	}
	_ = g.Wait()
}

func (m *Materializer) writeFile(res FileResult, data []byte) FileResult {
	existing, err := m.fs.ReadFile(res.Path)
	switch {
	case err == nil:
		return m.compare(res, existing, data)
	case !stderrors.Is(err, fs.ErrNotExist):
		return m.failed(res, err)
	}

	if err := m.fs.WriteFileAtomic(res.Path, data, m.mode); err != nil {
		if !stderrors.Is(err, projectfs.ErrExists) {
			return m.failed(res, err)
		}
		existing, readErr := m.fs.ReadFile(res.Path)
		if readErr != nil {
			return m.failed(res, readErr)
		}
		return m.compare(res, existing, data)
	}

	res.Outcome = OutcomeWritten
	m.logger.Debug("file written", "path", res.Path, "bytes", len(data))
	return res
}

func (m *Materializer) compare(res FileResult, existing, data []byte) FileResult {
	if bytes.Equal(existing, data) {
		res.Outcome = OutcomeUnchanged
		res.Warning = "already exists with identical content"
		m.logger.Warn("file unchanged", "path", res.Path)
		return res
	}
	res.Outcome = OutcomeConflict
	res.Error = "exists with different content"
	m.logger.Warn("file conflict", "path", res.Path)
	return res
}

func (m *Materializer) failed(res FileResult, err error) FileResult {
	res.Outcome = OutcomeFailed
	res.Error = err.Error()
	m.logger.Error(err, "file failed", "path", res.Path)
	return res
}

// outcomeError turns a report into the run's error. The first failing file in
// plan order decides the code.
func (m *Materializer) outcomeError(ctx context.Context, report *Report) error {
	if report.Conflicts == 0 && report.Failed == 0 && report.NotAttempted == 0 {
		return nil
	}

	var first *FileResult
	var findings []errors.Finding
	for i := range report.Files {
		f := &report.Files[i]
		switch f.Outcome {
		case OutcomeConflict, OutcomeFailed:
			if first == nil {
				first = f
			}
			findings = append(findings, errors.Finding{Path: f.Path, Message: f.Error})
		}
	}
	if report.NotAttempted > 0 {
		findings = append(findings, errors.Finding{
			Message: fmt.Sprintf("%d file(s) not attempted", report.NotAttempted),
		})
	}

	b := errors.Build(errors.CodeMaterialization).
		WithOp("materializer.Materialize").
		WithFindings(findings...)

	switch {
	case first == nil:
		return b.WithMsg("run cancelled").WithErr(ctx.Err()).Err()
	case first.Outcome == OutcomeConflict:
		return errors.Build(errors.CodeConflict).
			WithOp("materializer.Materialize").
			WithPath(first.Path).
			WithMsgf("%s exists with different content", first.Path).
			WithFindings(findings...).
			Err()
	default:
		return b.WithPath(first.Path).WithMsgf("cannot write %s", first.Path).Err()
	}
}
