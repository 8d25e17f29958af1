// Package mapping matches raw document field names onto schema property
// names. Matching is an ordered list of pure strategies tried in fixed
// priority order; each yields a match or nothing, and nothing beyond the
// documented strategies is ever attempted.
package mapping

import (
	"encoding/json"
	"strings"

	"github.com/tettuan/frontmatter-to-schema/internal/datatree"
)

// Strategy is one field-matching rule. claimed holds document fields already
// consumed by earlier properties; strategies must not return them.
type Strategy interface {
	Name() string
	Match(prop, propType string, doc *datatree.Map, claimed map[string]bool) (string, bool)
}

// Resolver tries its strategies in order and returns the first match.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds the standard strategy chain: exact name, explicit alias
// table, case/separator-insensitive, structural.
func NewResolver(aliases map[string]string) *Resolver {
	return &Resolver{strategies: []Strategy{
		exactStrategy{},
		aliasStrategy{aliases: aliases},
		foldedStrategy{},
		structuralStrategy{},
	}}
}

// Field returns the document field feeding the given schema property, or
// false when no strategy matches.
func (r *Resolver) Field(prop, propType string, doc *datatree.Map, claimed map[string]bool) (string, bool) {
	for _, s := range r.strategies {
		if field, ok := s.Match(prop, propType, doc, claimed); ok {
			return field, true
		}
	}
	return "", false
}

type exactStrategy struct{}

func (exactStrategy) Name() string { return "exact" }

func (exactStrategy) Match(prop, _ string, doc *datatree.Map, claimed map[string]bool) (string, bool) {
	if _, ok := doc.Get(prop); ok && !claimed[prop] {
		return prop, true
	}
	return "", false
}

type aliasStrategy struct {
	aliases map[string]string
}

func (aliasStrategy) Name() string { return "alias" }

func (s aliasStrategy) Match(prop, _ string, doc *datatree.Map, claimed map[string]bool) (string, bool) {
	field, ok := s.aliases[prop]
	if !ok || claimed[field] {
		return "", false
	}
	if _, ok := doc.Get(field); ok {
		return field, true
	}
	return "", false
}

// foldedStrategy matches ignoring case and the kebab/snake/camel separator
// style: "createdAt", "created_at" and "Created-At" all fold to "createdat".
type foldedStrategy struct{}

func (foldedStrategy) Name() string { return "folded" }

func (foldedStrategy) Match(prop, _ string, doc *datatree.Map, claimed map[string]bool) (string, bool) {
	want := fold(prop)
	for p := doc.Oldest(); p != nil; p = p.Next() {
		if !claimed[p.Key] && fold(p.Key) == want {
			return p.Key, true
		}
	}
	return "", false
}

func fold(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '-' || r == '_':
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// structuralStrategy matches when exactly one unclaimed document field has
// the value type the schema property declares. Ambiguity means no match.
type structuralStrategy struct{}

func (structuralStrategy) Name() string { return "structural" }

func (structuralStrategy) Match(_, propType string, doc *datatree.Map, claimed map[string]bool) (string, bool) {
	if propType == "" {
		return "", false
	}
	var candidate string
	n := 0
	for p := doc.Oldest(); p != nil; p = p.Next() {
		if claimed[p.Key] {
			continue
		}
		if valueType(p.Value) == propType {
			candidate = p.Key
			n++
		}
	}
	if n == 1 {
		return candidate, true
	}
	return "", false
}

func valueType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, int, int64, float64:
		return "number"
	case []any:
		return "array"
	case *datatree.Map, map[string]any:
		return "object"
	default:
		return ""
	}
}
