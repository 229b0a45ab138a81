// Package templates renders scaffold files from embedded text templates.
//
// Overview:
//   - Responsibility: Parse the embedded template set once and render files by id
//   - Key Types: Renderer, Context
//   - Concurrency Model: A Renderer is immutable after New and safe for concurrent use
//   - Error Semantics: Every failure is a RENDER error naming the template id
//   - Performance Notes: Templates are parsed once per Renderer; Go output is
//     normalized with x/tools/imports in format-only mode
//
// Usage:
//
//	r, err := templates.New()
//	text, err := r.Render("types/message", templates.Context{"Source": "order.proto", "Message": msg})
package templates

import (
	"bytes"
	"embed"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"go.eggybyte.com/egg/rpcgen/internal/errors"
)

//go:embed templates
var embedded embed.FS

// Suffix marks template files inside the template tree.
const Suffix = ".tmpl"

// Context is the data handed to one template.
type Context map[string]any

// Renderer renders templates by id. An id is the template's path under the
// template root with the output extension and Suffix removed, so
// "types/message.go.tmpl" has id "types/message".
type Renderer struct {
	set map[string]*entry
}

type entry struct {
	tmpl *template.Template
	isGo bool
}

// New parses the embedded template tree.
func New() (*Renderer, error) {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, errors.Wrap(errors.CodeRender, "templates.New", err)
	}
	return NewFromFS(sub)
}

// NewFromFS parses every *.tmpl file in fsys.
func NewFromFS(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{set: map[string]*entry{}}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, Suffix) {
			return nil
		}

		id, ext := splitName(p)
		if _, dup := r.set[id]; dup {
			return errors.Build(errors.CodeRender).
				WithOp("templates.NewFromFS").
				WithPath(p).
				WithMsgf("template id %q is defined twice", id).
				Err()
		}

		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		tmpl, err := template.New(id).
			Option("missingkey=error").
			Funcs(funcs).
			Parse(string(src))
		if err != nil {
			return errors.Build(errors.CodeRender).
				WithOp("templates.NewFromFS").
				WithPath(p).
				WithMsg("template does not parse").
				WithErr(err).
				Err()
		}

		r.set[id] = &entry{tmpl: tmpl, isGo: ext == ".go"}
		return nil
	})
	if err != nil {
		if errors.CodeOf(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.CodeRender, "templates.NewFromFS", err)
	}

	return r, nil
}

// splitName turns "types/message.go.tmpl" into ("types/message", ".go").
func splitName(p string) (id, ext string) {
	dir, base := path.Split(strings.TrimSuffix(p, Suffix))
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base, ext = base[:i], base[i:]
	}
	return dir + base, ext
}

// IDs returns the known template ids in sorted order.
func (r *Renderer) IDs() []string {
	ids := make([]string, 0, len(r.set))
	for id := range r.set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

var missingKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`map has no entry for key "([^"]+)"`),
	regexp.MustCompile(`can't evaluate field (\w+)`),
}

// Render executes template id with ctx. Identical inputs give identical output.
//
// Errors (all RENDER):
//   - id is unknown
//   - ctx lacks a key the template uses; the message names the key
//   - a Go template produced source that does not format
func (r *Renderer) Render(id string, ctx Context) (string, error) {
	e, ok := r.set[id]
	if !ok {
		return "", errors.Build(errors.CodeRender).
			WithOp("templates.Render").
			WithPath(id).
			WithMsgf("unknown template id %q", id).
			Err()
	}

	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, map[string]any(ctx)); err != nil {
		b := errors.Build(errors.CodeRender).
			WithOp("templates.Render").
			WithPath(id).
			WithErr(err)
		if key := missingKey(err); key != "" {
			return "", b.WithMsgf("template %s: missing context key %q", id, key).Err()
		}
		return "", b.WithMsgf("template %s failed", id).Err()
	}

	if !e.isGo {
		return buf.String(), nil
	}

	out, err := imports.Process(id+".go", buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return "", errors.Build(errors.CodeRender).
			WithOp("templates.Render").
			WithPath(id).
			WithMsgf("template %s produced invalid Go", id).
			WithErr(err).
			Err()
	}
	return string(out), nil
}

func missingKey(err error) string {
	for _, re := range missingKeyPatterns {
		if m := re.FindStringSubmatch(err.Error()); m != nil {
			return m[1]
		}
	}
	return ""
}
