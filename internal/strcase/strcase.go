// Package strcase converts schema identifiers into Go identifiers and file names.
package strcase

import (
	"strings"
	"unicode"
)

// initialisms are rendered fully upper-case when they form a whole word.
var initialisms = map[string]bool{
	"API":  true,
	"HTTP": true,
	"ID":   true,
	"IP":   true,
	"JSON": true,
	"RPC":  true,
	"URL":  true,
	"UUID": true,
}

// ToSnakeCase converts PascalCase or camelCase to snake_case. Runs of capitals
// are kept together, so "OrderID" and "OrderId" both become "order_id".
func ToSnakeCase(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if r == '-' || r == ' ' {
			r = '_'
		}
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteRune('_')
				}
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}

	return b.String()
}

// ToPascalCase converts snake_case or camelCase to PascalCase, upper-casing
// known initialisms ("order_id" becomes "OrderID").
func ToPascalCase(s string) string {
	var b strings.Builder
	for _, word := range words(s) {
		upper := strings.ToUpper(word)
		if initialisms[upper] {
			b.WriteString(upper)
			continue
		}
		runes := []rune(word)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}
	return b.String()
}

// ToCamelCase converts an identifier to lowerCamelCase. A leading initialism
// is lowered as a whole ("URLValue" becomes "urlValue").
func ToCamelCase(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.ToLower(ws[0]))
	for _, word := range ws[1:] {
		upper := strings.ToUpper(word)
		if initialisms[upper] {
			b.WriteString(upper)
			continue
		}
		runes := []rune(word)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(string(runes[1:]))
	}
	return b.String()
}

// words splits an identifier on underscores and case boundaries.
func words(s string) []string {
	var out []string
	for _, part := range strings.Split(ToSnakeCase(s), "_") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
