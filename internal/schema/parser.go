package schema

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/emicklei/proto"

	"go.eggybyte.com/egg/rpcgen/internal/errors"
)

// Extension is the required schema file extension.
const Extension = ".proto"

// DeriveProjectName returns the base name of path without the .proto
// extension. It never touches the filesystem.
func DeriveProjectName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Extension)
}

// Parse reads the schema at path and returns its Definition. It never returns
// a partial model: on failure the Definition is nil.
//
// Errors:
//   - INPUT when path lacks the .proto extension, cannot be read, or is blank
//   - PARSE with line and column when the text is malformed or declares a
//     construct the generator cannot scaffold (nested types, enums, extend,
//     streaming RPCs)
func Parse(path string) (*Definition, error) {
	if filepath.Ext(path) != Extension {
		return nil, errors.Build(errors.CodeInput).
			WithOp("schema.Parse").
			WithPath(path).
			WithMsgf("schema file must have the %s extension", Extension).
			Err()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Build(errors.CodeInput).
			WithOp("schema.Parse").
			WithPath(path).
			WithMsg("cannot read schema file").
			WithErr(err).
			Err()
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.Build(errors.CodeInput).
			WithOp("schema.Parse").
			WithPath(path).
			WithMsg("schema file is empty").
			Err()
	}

	parser := proto.NewParser(bytes.NewReader(unqualify(data)))
	parser.Filename(path)
	tree, err := parser.Parse()
	if err != nil {
		return nil, syntaxError(path, err)
	}

	b := &builder{
		path: path,
		def: &Definition{
			ProjectName: DeriveProjectName(path),
			Source:      path,
		},
	}
	if err := b.walk(tree); err != nil {
		return nil, err
	}
	return b.def, nil
}

// unqualify blanks the leading dot of fully-qualified type references
// (".shop.Item" becomes " shop.Item") outside comments and string literals.
// emicklei/proto rejects such a field when it directly follows a oneof block.
// Byte offsets are preserved so reported positions stay exact.
func unqualify(data []byte) []byte {
	out := bytes.Clone(data)
	var quote byte
	for i := 0; i < len(out); i++ {
		ch := out[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote || ch == '\n' {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '/' && i+1 < len(out) && out[i+1] == '/':
			for i < len(out) && out[i] != '\n' {
				i++
			}
		case ch == '/' && i+1 < len(out) && out[i+1] == '*':
			end := bytes.Index(out[i+2:], []byte("*/"))
			if end < 0 {
				return out
			}
			i += end + 3
		case ch == '.' && i > 0 && i+1 < len(out):
			prev, next := out[i-1], out[i+1]
			if (prev == ' ' || prev == '\t' || prev == '\n' || prev == '\r' || prev == '<' || prev == ',') &&
				(next == '_' || next >= 'a' && next <= 'z' || next >= 'A' && next <= 'Z') {
				out[i] = ' '
			}
		}
	}
	return out
}

var positionPattern = regexp.MustCompile(`(\d+):(\d+):\s*`)

// syntaxError converts a parser failure of the form "file:line:col: detail"
// into a located PARSE error.
func syntaxError(path string, err error) error {
	b := errors.Build(errors.CodeParse).WithOp("schema.Parse").WithPath(path)

	text := err.Error()
	loc := positionPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return b.WithMsg("malformed schema").WithErr(err).Err()
	}

	line, _ := strconv.Atoi(text[loc[2]:loc[3]])
	col, _ := strconv.Atoi(text[loc[4]:loc[5]])
	detail := strings.TrimSpace(text[loc[1]:])
	if detail == "" {
		detail = "malformed schema"
	}
	return b.WithPosition(line, col).WithMsg(detail).Err()
}

type builder struct {
	path string
	def  *Definition
}

func (b *builder) unsupported(pos scanner.Position, format string, args ...any) error {
	return errors.Build(errors.CodeParse).
		WithOp("schema.Parse").
		WithPath(b.path).
		WithPosition(pos.Line, pos.Column).
		WithMsgf(format, args...).
		Err()
}

func (b *builder) walk(tree *proto.Proto) error {
	// The package name must be known before any reference is normalized.
	for _, el := range tree.Elements {
		if pkg, ok := el.(*proto.Package); ok {
			b.def.Package = pkg.Name
		}
	}

	for _, el := range tree.Elements {
		switch v := el.(type) {
		case *proto.Message:
			if v.IsExtend {
				return b.unsupported(v.Position, "extend %s is not supported", v.Name)
			}
			msg, err := b.message(v)
			if err != nil {
				return err
			}
			b.def.Messages = append(b.def.Messages, msg)
		case *proto.Service:
			svc, err := b.service(v)
			if err != nil {
				return err
			}
			b.def.Services = append(b.def.Services, svc)
		case *proto.Enum:
			return b.unsupported(v.Position, "enum %s is not supported", v.Name)
		}
	}
	return nil
}

func (b *builder) message(m *proto.Message) (*Message, error) {
	msg := &Message{Name: m.Name, Line: m.Position.Line}

	for _, el := range m.Elements {
		switch v := el.(type) {
		case *proto.NormalField:
			msg.Fields = append(msg.Fields, b.field(v.Field, v.Repeated, ""))
		case *proto.MapField:
			msg.Fields = append(msg.Fields, b.field(v.Field, false, v.KeyType))
		case *proto.Oneof:
			for _, member := range v.Elements {
				if f, ok := member.(*proto.OneOfField); ok {
					msg.Fields = append(msg.Fields, b.field(f.Field, false, ""))
				}
			}
		case *proto.Message:
			return nil, b.unsupported(v.Position, "nested message %s.%s is not supported", m.Name, v.Name)
		case *proto.Enum:
			return nil, b.unsupported(v.Position, "nested enum %s.%s is not supported", m.Name, v.Name)
		case *proto.Group:
			return nil, b.unsupported(v.Position, "group %s.%s is not supported", m.Name, v.Name)
		}
	}
	return msg, nil
}

func (b *builder) field(f *proto.Field, repeated bool, keyType string) *Field {
	return &Field{
		Name:     f.Name,
		Type:     b.ref(f.Type),
		Position: f.Sequence,
		Repeated: repeated,
		KeyType:  keyType,
		Line:     f.Position.Line,
	}
}

func (b *builder) service(s *proto.Service) (*Service, error) {
	svc := &Service{Name: s.Name, Line: s.Position.Line}

	for _, el := range s.Elements {
		rpc, ok := el.(*proto.RPC)
		if !ok {
			continue
		}
		if rpc.StreamsRequest || rpc.StreamsReturns {
			return nil, b.unsupported(rpc.Position, "streaming method %s.%s is not supported", s.Name, rpc.Name)
		}
		svc.Methods = append(svc.Methods, &Method{
			Name:         rpc.Name,
			RequestType:  b.ref(rpc.RequestType),
			ResponseType: b.ref(rpc.ReturnsType),
			Line:         rpc.Position.Line,
		})
	}
	return svc, nil
}

// ref strips a leading dot and the file's own package qualifier, so
// ".order.Order" and "order.Order" both resolve to "Order".
func (b *builder) ref(name string) string {
	name = strings.TrimPrefix(name, ".")
	if b.def.Package != "" {
		name = strings.TrimPrefix(name, b.def.Package+".")
	}
	return name
}
