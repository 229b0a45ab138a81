package templates

import (
	"strconv"
	"text/template"

	"go.eggybyte.com/egg/rpcgen/internal/schema"
	"go.eggybyte.com/egg/rpcgen/internal/strcase"
)

var funcs = template.FuncMap{
	"pascal": strcase.ToPascalCase,
	"camel":  strcase.ToCamelCase,
	"snake":  strcase.ToSnakeCase,
	"quote":  strconv.Quote,
	"goType": GoType,
	"goRef":  GoRef,
}

var scalarGoTypes = map[string]string{
	"double":   "float64",
	"float":    "float32",
	"int32":    "int32",
	"int64":    "int64",
	"uint32":   "uint32",
	"uint64":   "uint64",
	"sint32":   "int32",
	"sint64":   "int64",
	"fixed32":  "uint32",
	"fixed64":  "uint64",
	"sfixed32": "int32",
	"sfixed64": "int64",
	"bool":     "bool",
	"string":   "string",
	"bytes":    "[]byte",
}

// GoType returns the Go type of f as declared inside the types package.
// Message values are pointers; repeated and map fields wrap the element type.
func GoType(f *schema.Field) string {
	elem := elemType(f.Type, "")
	switch {
	case f.IsMap():
		return "map[" + elemType(f.KeyType, "") + "]" + elem
	case f.Repeated:
		return "[]" + elem
	default:
		return elem
	}
}

// GoRef returns the pointer type of message name as seen from outside the
// types package.
func GoRef(name string) string {
	return elemType(name, "types.")
}

func elemType(tag, qualifier string) string {
	if t, ok := scalarGoTypes[tag]; ok {
		return t
	}
	return "*" + qualifier + strcase.ToPascalCase(tag)
}
