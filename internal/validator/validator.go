// Package validator checks a parsed schema for semantic problems before any
// layout is planned.
//
// Overview:
//   - Responsibility: Collect every semantic violation of a Definition in one pass
//   - Key Types: Validated, the only input the layout planner accepts
//   - Concurrency Model: Validate is stateless and safe for concurrent use
//   - Error Semantics: One VALIDATION error listing every violation as a finding
//   - Performance Notes: Linear in the number of declarations
//
// Usage:
//
//	v, err := validator.Validate(def)
//	if err != nil {
//	    for _, f := range errors.FindingsOf(err) {
//	        fmt.Println(f)
//	    }
//	}
package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.eggybyte.com/egg/rpcgen/internal/errors"
	"go.eggybyte.com/egg/rpcgen/internal/schema"
	"go.eggybyte.com/egg/rpcgen/internal/strcase"
)

// maxFieldPosition is the largest field number protobuf allows.
const maxFieldPosition = 1<<29 - 1

// reservedFileNames are generated next to per-service client files.
var reservedFileNames = map[string]bool{
	"invoker": true,
}

var projectNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// Validated is a Definition that passed validation. It can only be produced
// by Validate and holds a private copy of the definition.
type Validated struct {
	def *schema.Definition
}

// Definition returns a copy of the validated definition.
func (v *Validated) Definition() *schema.Definition {
	return v.def.Clone()
}

// ProjectName returns the validated project name.
func (v *Validated) ProjectName() string {
	return v.def.ProjectName
}

// Validate checks def and returns either a Validated model or a single
// VALIDATION error whose findings list every violation in source order.
func Validate(def *schema.Definition) (*Validated, error) {
	if def == nil {
		return nil, errors.Build(errors.CodeValidation).
			WithOp("validator.Validate").
			WithMsg("no schema definition").
			Err()
	}

	c := &checker{def: def}
	c.project()
	c.messages()
	c.services()

	if len(c.findings) > 0 {
		sort.SliceStable(c.findings, func(i, j int) bool {
			return c.findings[i].Line < c.findings[j].Line
		})
		return nil, errors.Build(errors.CodeValidation).
			WithOp("validator.Validate").
			WithPath(def.Source).
			WithMsgf("schema has %d problem(s)", len(c.findings)).
			WithFindings(c.findings...).
			Err()
	}

	return &Validated{def: def.Clone()}, nil
}

type checker struct {
	def      *schema.Definition
	findings []errors.Finding
	// idents maps "<package>.<identifier>" of generated Go code to its owner.
	idents seen
}

// declare records the Go identifiers that owner generates in package pkg and
// reports those already taken by another declaration.
func (c *checker) declare(path string, line int, owner, pkg string, idents ...string) {
	if c.idents == nil {
		c.idents = seen{}
	}
	for _, id := range idents {
		key := pkg + "." + id
		if prev, ok := c.idents[key]; ok {
			c.add(path, line, "%s generates Go identifier %s in package %s, already declared by %s", owner, id, pkg, prev.name)
			continue
		}
		c.idents[key] = declared{owner, line}
	}
}

func (c *checker) add(path string, line int, format string, args ...any) {
	c.findings = append(c.findings, errors.Finding{
		Path:    path,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *checker) project() {
	name := c.def.ProjectName
	switch {
	case name == "":
		c.add("project", 0, "project name is empty")
	case strings.ContainsAny(name, `/\`):
		c.add("project", 0, "project name %q contains a path separator", name)
	case !projectNamePattern.MatchString(name):
		c.add("project", 0, "project name %q must start with a letter and contain only letters, digits, '_', '-' or '.'", name)
	}

	if len(c.def.Services) == 0 {
		c.add("project", 0, "schema declares no services")
	}
}

// seen tracks first declarations by key for duplicate and collision reports.
type seen map[string]declared

type declared struct {
	name string
	line int
}

func (c *checker) messages() {
	names := seen{}
	files := seen{}

	for _, m := range c.def.Messages {
		path := "message " + m.Name
		if m.Name == "" {
			c.add("message", m.Line, "message name is empty")
			continue
		}
		if schema.IsPrimitive(m.Name) {
			c.add(path, m.Line, "message name %s is a scalar type", m.Name)
		} else if prev, ok := names[m.Name]; ok {
			c.add(path, m.Line, "message %s is already declared at line %d", m.Name, prev.line)
		} else {
			names[m.Name] = declared{m.Name, m.Line}
			file := strcase.ToSnakeCase(m.Name)
			if prev, ok := files[file]; ok {
				c.add(path, m.Line, "message %s and %s both generate %s.go", prev.name, m.Name, file)
			} else {
				files[file] = declared{m.Name, m.Line}
				c.declare(path, m.Line, m.Name, "types", strcase.ToPascalCase(m.Name))
			}
		}
		c.fields(m)
	}
}

func (c *checker) fields(m *schema.Message) {
	names := seen{}
	goNames := seen{}
	positions := map[int]declared{}

	for _, f := range m.Fields {
		path := fmt.Sprintf("message %s.field %s", m.Name, f.Name)
		if f.Name == "" {
			c.add(fmt.Sprintf("message %s.field", m.Name), f.Line, "field name is empty")
		} else if prev, ok := names[f.Name]; ok {
			c.add(path, f.Line, "field %s is already declared at line %d", f.Name, prev.line)
		} else {
			names[f.Name] = declared{f.Name, f.Line}
			goName := strcase.ToPascalCase(f.Name)
			if prev, ok := goNames[goName]; ok {
				c.add(path, f.Line, "fields %s and %s both map to Go field %s", prev.name, f.Name, goName)
			} else {
				goNames[goName] = declared{f.Name, f.Line}
			}
		}

		switch {
		case f.Position <= 0:
			c.add(path, f.Line, "field position must be positive, got %d", f.Position)
		case f.Position > maxFieldPosition:
			c.add(path, f.Line, "field position %d exceeds %d", f.Position, maxFieldPosition)
		default:
			if prev, ok := positions[f.Position]; ok {
				c.add(path, f.Line, "field position %d is already used by %s", f.Position, prev.name)
			} else {
				positions[f.Position] = declared{f.Name, f.Line}
			}
		}

		if !c.resolves(f.Type) {
			c.add(path, f.Line, "type %q is not defined", f.Type)
		}
		if f.IsMap() && !schema.IsMapKey(f.KeyType) {
			c.add(path, f.Line, "map key type %q must be an integral, bool or string type", f.KeyType)
		}
	}
}

func (c *checker) services() {
	names := seen{}
	files := seen{}

	for _, s := range c.def.Services {
		path := "service " + s.Name
		if s.Name == "" {
			c.add("service", s.Line, "service name is empty")
		} else if prev, ok := names[s.Name]; ok {
			c.add(path, s.Line, "service %s is already declared at line %d", s.Name, prev.line)
		} else {
			names[s.Name] = declared{s.Name, s.Line}
			file := strcase.ToSnakeCase(s.Name)
			switch prev, ok := files[file]; {
			case reservedFileNames[file]:
				c.add(path, s.Line, "service %s generates %s.go, which is reserved", s.Name, file)
			case ok:
				c.add(path, s.Line, "service %s and %s both generate %s.go", prev.name, s.Name, file)
			default:
				files[file] = declared{s.Name, s.Line}
				goName := strcase.ToPascalCase(s.Name)
				c.declare(path, s.Line, s.Name, "service", goName, goName+"Methods")
				c.declare(path, s.Line, s.Name, "server", goName+"Server", "New"+goName+"Server")
				c.declare(path, s.Line, s.Name, "client", goName+"Client", "New"+goName+"Client")
			}
		}

		if len(s.Methods) == 0 {
			c.add(path, s.Line, "service %s declares no methods", s.Name)
		}
		c.methods(s)
	}
}

func (c *checker) methods(s *schema.Service) {
	names := seen{}
	goNames := seen{}

	for _, m := range s.Methods {
		path := fmt.Sprintf("service %s.method %s", s.Name, m.Name)
		if m.Name == "" {
			c.add(fmt.Sprintf("service %s.method", s.Name), m.Line, "method name is empty")
		} else if prev, ok := names[m.Name]; ok {
			c.add(path, m.Line, "method %s is already declared at line %d", m.Name, prev.line)
		} else {
			names[m.Name] = declared{m.Name, m.Line}
			goName := strcase.ToPascalCase(m.Name)
			if prev, ok := goNames[goName]; ok {
				c.add(path, m.Line, "methods %s and %s both map to Go method %s", prev.name, m.Name, goName)
			} else {
				goNames[goName] = declared{m.Name, m.Line}
			}
		}

		c.methodType(path, m.Line, "request", m.RequestType)
		c.methodType(path, m.Line, "response", m.ResponseType)
	}
}

func (c *checker) methodType(path string, line int, role, typ string) {
	switch {
	case schema.IsPrimitive(typ):
		c.add(path, line, "%s type %q must be a message, not a scalar", role, typ)
	case !c.isMessage(typ):
		c.add(path, line, "%s type %q is not defined", role, typ)
	}
}

func (c *checker) resolves(typ string) bool {
	return schema.IsPrimitive(typ) || c.isMessage(typ)
}

func (c *checker) isMessage(name string) bool {
	if name == "" {
		return false
	}
	_, ok := c.def.Message(name)
	return ok
}
