// Package schema parses .proto service definitions into the generator's model.
//
// Overview:
//   - Responsibility: Read a schema file and produce an ordered Definition
//   - Key Types: Definition, Message, Field, Service, Method
//   - Concurrency Model: Parse is stateless; a Definition is owned by one run
//   - Error Semantics: INPUT for unreadable files, PARSE with line and column otherwise
//   - Performance Notes: Single pass over the parsed element tree
//
// Usage:
//
//	def, err := schema.Parse("order.proto")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(def.ProjectName, len(def.Services))
package schema

// Definition is the parsed form of one schema file. Messages and services
// keep declaration order.
type Definition struct {
	ProjectName string     `json:"project_name" yaml:"project_name"`
	Package     string     `json:"package,omitempty" yaml:"package,omitempty"`
	Messages    []*Message `json:"messages" yaml:"messages"`
	Services    []*Service `json:"services" yaml:"services"`
	Source      string     `json:"source" yaml:"source"`
}

// Message is a top-level message declaration.
type Message struct {
	Name   string   `json:"name" yaml:"name"`
	Fields []*Field `json:"fields" yaml:"fields"`
	Line   int      `json:"line,omitempty" yaml:"line,omitempty"`
}

// Field is one message field. Type holds a primitive tag or a message name.
// KeyType is set only for map fields, in which case Type is the value type.
type Field struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Position int    `json:"position" yaml:"position"`
	Repeated bool   `json:"repeated,omitempty" yaml:"repeated,omitempty"`
	KeyType  string `json:"key_type,omitempty" yaml:"key_type,omitempty"`
	Line     int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// IsMap reports whether f is a map field.
func (f *Field) IsMap() bool {
	return f.KeyType != ""
}

// Service is an RPC service declaration.
type Service struct {
	Name    string    `json:"name" yaml:"name"`
	Methods []*Method `json:"methods" yaml:"methods"`
	Line    int       `json:"line,omitempty" yaml:"line,omitempty"`
}

// Method is a unary RPC. Request and response types name messages.
type Method struct {
	Name         string `json:"name" yaml:"name"`
	RequestType  string `json:"request_type" yaml:"request_type"`
	ResponseType string `json:"response_type" yaml:"response_type"`
	Line         int    `json:"line,omitempty" yaml:"line,omitempty"`
}

// Message returns the message declared under name.
func (d *Definition) Message(name string) (*Message, bool) {
	for _, m := range d.Messages {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Primitives lists the scalar type tags in declaration order of the protobuf
// language guide.
var Primitives = []string{
	"double", "float",
	"int32", "int64", "uint32", "uint64",
	"sint32", "sint64", "fixed32", "fixed64", "sfixed32", "sfixed64",
	"bool", "string", "bytes",
}

var primitiveSet = func() map[string]bool {
	m := make(map[string]bool, len(Primitives))
	for _, p := range Primitives {
		m[p] = true
	}
	return m
}()

// IsPrimitive reports whether tag is a scalar type tag.
func IsPrimitive(tag string) bool {
	return primitiveSet[tag]
}

// IsMapKey reports whether tag may key a map: any integral type, bool or string.
func IsMapKey(tag string) bool {
	switch tag {
	case "double", "float", "bytes":
		return false
	}
	return primitiveSet[tag]
}

// Clone returns a deep copy of d.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	out := &Definition{
		ProjectName: d.ProjectName,
		Package:     d.Package,
		Source:      d.Source,
	}
	for _, m := range d.Messages {
		mc := &Message{Name: m.Name, Line: m.Line}
		for _, f := range m.Fields {
			fc := *f
			mc.Fields = append(mc.Fields, &fc)
		}
		out.Messages = append(out.Messages, mc)
	}
	for _, s := range d.Services {
		sc := &Service{Name: s.Name, Line: s.Line}
		for _, m := range s.Methods {
			mc := *m
			sc.Methods = append(sc.Methods, &mc)
		}
		out.Services = append(out.Services, sc)
	}
	return out
}
