// Package layout derives the directory and file plan of a scaffold from a
// validated schema.
//
// Overview:
//   - Responsibility: Decide every directory, output path, template and context
//   - Key Types: Plan, FileSpec, Options
//   - Concurrency Model: Planning is pure apart from read-only stat calls
//   - Error Semantics: PLAN errors for unusable output roots
//   - Performance Notes: Linear in messages plus services
//
// Usage:
//
//	plan, err := layout.Build(validated, "./out", layout.FromConfig(opts))
//	for _, f := range plan.Files {
//	    fmt.Println(f.TemplateID, f.OutputPath)
//	}
package layout

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.eggybyte.com/egg/rpcgen/internal/config"
	"go.eggybyte.com/egg/rpcgen/internal/errors"
	"go.eggybyte.com/egg/rpcgen/internal/schema"
	"go.eggybyte.com/egg/rpcgen/internal/strcase"
	"go.eggybyte.com/egg/rpcgen/internal/templates"
	"go.eggybyte.com/egg/rpcgen/internal/validator"
)

// Template ids used by the plan.
const (
	TemplateMain         = "project/main"
	TemplateConf         = "project/conf"
	TemplateGoMod        = "project/gomod"
	TemplateReadme       = "project/readme"
	TemplateMessage      = "types/message"
	TemplateService      = "service/interface"
	TemplateServerStub   = "server/stub"
	TemplateClientInvoke = "client/invoker"
	TemplateClientStub   = "client/stub"
)

// Plan is the ordered description of a scaffold. Paths are slash separated
// and relative to the output root.
type Plan struct {
	Root        string     `json:"root" yaml:"root"`
	OutputRoot  string     `json:"output_root" yaml:"output_root"`
	Directories []string   `json:"directories" yaml:"directories"`
	Files       []FileSpec `json:"files" yaml:"files"`
}

// FileSpec is one file to render.
type FileSpec struct {
	TemplateID string            `json:"template" yaml:"template"`
	OutputPath string            `json:"path" yaml:"path"`
	Context    templates.Context `json:"-" yaml:"-"`
}

// Options carries run settings that flow into rendered files.
type Options struct {
	ModulePrefix string
	GoVersion    string
	Server       config.ServerOptions
	Log          config.LogOptions
}

// FromConfig copies the layout-relevant settings out of opts.
func FromConfig(opts config.Options) Options {
	return Options{
		ModulePrefix: opts.ModulePrefix,
		GoVersion:    opts.GoVersion,
		Server:       opts.Server,
		Log:          opts.Log,
	}
}

// withDefaults fills unset fields from config.Defaults so a zero Options
// still yields a buildable scaffold.
func (o Options) withDefaults() Options {
	d := config.Defaults()
	if o.GoVersion == "" {
		o.GoVersion = d.GoVersion
	}
	if o.Server == (config.ServerOptions{}) {
		o.Server = d.Server
	}
	if o.Log == (config.LogOptions{}) {
		o.Log = d.Log
	}
	return o
}

// ModulePath returns the Go module path of project.
func (o Options) ModulePath(project string) string {
	prefix := strings.TrimSuffix(strings.TrimSpace(o.ModulePrefix), "/")
	if prefix == "" {
		return project
	}
	return prefix + "/" + project
}

// Build plans the scaffold for v below outputRoot. It reads the filesystem
// only to reject unusable targets and never writes.
//
// Errors (all PLAN):
//   - v is nil
//   - outputRoot is empty
//   - outputRoot, or outputRoot/<project>, exists and is not a directory
func Build(v *validator.Validated, outputRoot string, opts Options) (*Plan, error) {
	if v == nil {
		return nil, errors.Build(errors.CodePlan).
			WithOp("layout.Build").
			WithMsg("no validated schema").
			Err()
	}
	if strings.TrimSpace(outputRoot) == "" {
		return nil, errors.Build(errors.CodePlan).
			WithOp("layout.Build").
			WithMsg("output directory is empty").
			Err()
	}

	def := v.Definition()
	project := def.ProjectName

	if err := requireDirOrAbsent(outputRoot); err != nil {
		return nil, err
	}
	if err := requireDirOrAbsent(filepath.Join(outputRoot, project)); err != nil {
		return nil, err
	}

	p := &planner{
		def:     def,
		opts:    opts.withDefaults(),
		project: project,
	}
	return p.plan(outputRoot), nil
}

func requireDirOrAbsent(p string) error {
	info, err := os.Stat(p)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return errors.Build(errors.CodePlan).
			WithOp("layout.Build").
			WithPath(p).
			WithMsg("exists and is not a directory").
			Err()
	case stderrors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return errors.Build(errors.CodePlan).
			WithOp("layout.Build").
			WithPath(p).
			WithMsg("cannot inspect output path").
			WithErr(err).
			Err()
	}
}

type planner struct {
	def     *schema.Definition
	opts    Options
	project string
}

func (p *planner) rel(parts ...string) string {
	return path.Join(append([]string{p.project}, parts...)...)
}

func (p *planner) plan(outputRoot string) *Plan {
	plan := &Plan{
		Root:       p.project,
		OutputRoot: outputRoot,
		Directories: []string{
			p.rel(),
			p.rel("cmd"),
			p.rel("cmd", "server"),
			p.rel("conf"),
			p.rel("internal"),
			p.rel("internal", "server"),
			p.rel("pkg"),
			p.rel("pkg", "types"),
			p.rel("pkg", "service"),
			p.rel("pkg", "client"),
		},
	}

	project := p.projectContext()
	add := func(id, out string, ctx templates.Context) {
		plan.Files = append(plan.Files, FileSpec{TemplateID: id, OutputPath: out, Context: ctx})
	}

	add(TemplateGoMod, p.rel("go.mod"), project)
	add(TemplateReadme, p.rel("README.md"), project)
	add(TemplateMain, p.rel("cmd", "server", "main.go"), project)
	add(TemplateConf, p.rel("conf", p.project+".yaml"), project)

	for _, m := range p.def.Messages {
		add(TemplateMessage, p.rel("pkg", "types", goFile(m.Name)), templates.Context{
			"Source":  p.source(),
			"Message": m,
		})
	}
	for _, s := range p.def.Services {
		add(TemplateService, p.rel("pkg", "service", goFile(s.Name)), p.serviceContext(s))
	}
	for _, s := range p.def.Services {
		add(TemplateServerStub, p.rel("internal", "server", goFile(s.Name)), p.serviceContext(s))
	}
	add(TemplateClientInvoke, p.rel("pkg", "client", "invoker.go"), templates.Context{
		"Source":  p.source(),
		"Project": p.project,
	})
	for _, s := range p.def.Services {
		add(TemplateClientStub, p.rel("pkg", "client", goFile(s.Name)), p.serviceContext(s))
	}

	return plan
}

func goFile(name string) string {
	return strcase.ToSnakeCase(name) + ".go"
}

// source is the schema file name without its directory, so output does not
// depend on where the schema lives.
func (p *planner) source() string {
	return filepath.Base(p.def.Source)
}

func (p *planner) projectContext() templates.Context {
	o := p.opts
	return templates.Context{
		"Source":            p.source(),
		"Project":           p.project,
		"Module":            o.ModulePath(p.project),
		"Package":           p.def.Package,
		"GoVersion":         o.GoVersion,
		"Messages":          p.def.Messages,
		"Services":          p.def.Services,
		"ConfPath":          path.Join("conf", p.project+".yaml"),
		"Host":              o.Server.Host,
		"Port":              o.Server.Port,
		"IOThreads":         o.Server.IOThreads,
		"LogLevel":          o.Log.Level,
		"LogDir":            o.Log.Dir,
		"LogMaxFileSizeMB":  o.Log.MaxFileSizeMB,
		"LogSyncIntervalMS": o.Log.SyncIntervalMS,
	}
}

func (p *planner) serviceContext(s *schema.Service) templates.Context {
	qualifier := s.Name
	if p.def.Package != "" {
		qualifier = p.def.Package + "." + s.Name
	}
	return templates.Context{
		"Source":    p.source(),
		"Module":    p.opts.ModulePath(p.project),
		"Qualifier": qualifier,
		"Service":   s,
	}
}
