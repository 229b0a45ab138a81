// Package generator runs the scaffold pipeline: parse, validate, plan, then
// render and materialize.
//
// Overview:
//   - Responsibility: Sequence the stages and attribute failures to a stage
//   - Key Types: Generator, Error, Stage
//   - Concurrency Model: One Generator may serve concurrent runs; runs share no state
//   - Error Semantics: *Error{Stage, Err}; Err keeps its typed code
//   - Performance Notes: Templates are parsed once per Generator
//
// Usage:
//
//	report, err := generator.Generate(ctx, run)
//	var gerr *generator.Error
//	if errors.As(err, &gerr) {
//	    fmt.Println("failed during", gerr.Stage)
//	}
package generator

import (
	"context"
	"fmt"
	"time"

	"go.eggybyte.com/egg/rpcgen/internal/config"
	"go.eggybyte.com/egg/rpcgen/internal/errors"
	"go.eggybyte.com/egg/rpcgen/internal/layout"
	"go.eggybyte.com/egg/rpcgen/internal/logx"
	"go.eggybyte.com/egg/rpcgen/internal/materializer"
	"go.eggybyte.com/egg/rpcgen/internal/schema"
	"go.eggybyte.com/egg/rpcgen/internal/templates"
	"go.eggybyte.com/egg/rpcgen/internal/validator"
)

// Stage names a pipeline step.
type Stage string

// Pipeline stages in execution order.
const (
	StageSetup       Stage = "setup"
	StageParse       Stage = "parse"
	StageValidate    Stage = "validate"
	StagePlan        Stage = "plan"
	StageRender      Stage = "render"
	StageMaterialize Stage = "materialize"
)

// Error reports the stage at which a run stopped.
type Error struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

// Unwrap returns the stage's error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for stage progress.
func WithLogger(l logx.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRenderer replaces the embedded template set.
func WithRenderer(r materializer.Renderer) Option {
	return func(g *Generator) {
		if r != nil {
			g.renderer = r
		}
	}
}

// Generator runs the pipeline.
type Generator struct {
	logger   logx.Logger
	renderer materializer.Renderer
}

// New creates a Generator with the embedded templates.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{logger: logx.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	if g.renderer == nil {
		r, err := templates.New()
		if err != nil {
			return nil, &Error{Stage: StageSetup, Err: err}
		}
		g.renderer = r
	}
	return g, nil
}

// Generate runs every stage with a default Generator.
func Generate(ctx context.Context, cfg config.RunConfig) (*materializer.Report, error) {
	g, err := New()
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, cfg)
}

// PlanOnly runs parse, validate and plan with a default Generator.
func PlanOnly(ctx context.Context, cfg config.RunConfig) (*layout.Plan, error) {
	g, err := New()
	if err != nil {
		return nil, err
	}
	return g.PlanOnly(ctx, cfg)
}

// PlanOnly runs parse, validate and plan without writing anything.
func (g *Generator) PlanOnly(ctx context.Context, cfg config.RunConfig) (*layout.Plan, error) {
	log := g.logger.With("input", cfg.InputPath, "output", cfg.OutputRoot)

	if err := ctx.Err(); err != nil {
		return nil, &Error{Stage: StageParse, Err: errors.Wrap(errors.CodeInput, "generator.PlanOnly", err)}
	}

	start := time.Now()
	def, err := schema.Parse(cfg.InputPath)
	if err != nil {
		return nil, g.stageFailed(log, StageParse, err)
	}
	log.Debug("stage finished", "stage", string(StageParse),
		"messages", len(def.Messages), "services", len(def.Services), "duration", time.Since(start))

	start = time.Now()
	v, err := validator.Validate(def)
	if err != nil {
		return nil, g.stageFailed(log, StageValidate, err)
	}
	log.Debug("stage finished", "stage", string(StageValidate), "duration", time.Since(start))

	plan, err := layout.Build(v, cfg.OutputRoot, layout.FromConfig(cfg.Options))
	if err != nil {
		return nil, g.stageFailed(log, StagePlan, err)
	}
	log.Debug("stage finished", "stage", string(StagePlan),
		"directories", len(plan.Directories), "files", len(plan.Files))

	return plan, nil
}

// Generate runs every stage. A second run with the same inputs writes
// nothing and reports every file unchanged.
func (g *Generator) Generate(ctx context.Context, cfg config.RunConfig) (*materializer.Report, error) {
	plan, err := g.PlanOnly(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log := g.logger.With("input", cfg.InputPath, "output", cfg.OutputRoot)
	start := time.Now()

	m := materializer.New(cfg.OutputRoot, g.renderer, materializer.Options{
		Workers: cfg.Options.Workers,
		Logger:  log,
	})
	report, err := m.Materialize(ctx, plan)
	if err != nil {
		stage := StageMaterialize
		if errors.IsCode(err, errors.CodeRender) {
			stage = StageRender
		}
		return report, g.stageFailed(log, stage, err)
	}

	log.Info("generation finished",
		"project", plan.Root,
		"written", report.Written,
		"unchanged", report.Unchanged,
		"duration", time.Since(start))
	return report, nil
}

func (g *Generator) stageFailed(log logx.Logger, stage Stage, err error) error {
	log.Error(err, "stage failed", "stage", string(stage), "code", string(errors.CodeOf(err)))
	return &Error{Stage: stage, Err: err}
}
