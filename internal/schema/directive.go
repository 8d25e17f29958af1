// Package schema loads JSON Schema fragments carrying x-* aggregation
// directives and classifies the directives into a closed set of kinds at
// load time. Everything downstream dispatches on the parsed variants, never
// on raw key strings.
package schema

import "errors"

// ErrConfiguration reports a directive attached to a structurally
// incompatible node, e.g. x-frontmatter-part on a non-array. It is fatal for
// the whole load.
var ErrConfiguration = errors.New("configuration error")

// Kind identifies one directive key.
type Kind int

const (
	KindUnknown Kind = iota
	KindPart         // x-frontmatter-part
	KindDerived      // x-derived-from
	KindDerivedUnique
	KindFlatten  // x-flatten-arrays
	KindFilter   // x-jmespath-filter
	KindTemplate // x-template
)

var directiveKinds = map[string]Kind{
	"x-frontmatter-part": KindPart,
	"x-derived-from":     KindDerived,
	"x-derived-unique":   KindDerivedUnique,
	"x-flatten-arrays":   KindFlatten,
	"x-jmespath-filter":  KindFilter,
	"x-template":         KindTemplate,
}

// Classify maps a schema key to a directive kind. Non-directive keys (no
// `x-` prefix) report KindUnknown and false; unrecognized `x-` keys report
// KindUnknown and true, so the loader can warn about them.
func Classify(key string) (Kind, bool) {
	if k, ok := directiveKinds[key]; ok {
		return k, true
	}
	if len(key) > 2 && key[:2] == "x-" {
		return KindUnknown, true
	}
	return KindUnknown, false
}

// PartDirective marks an array node populated with one element per source
// document, in document order. Source and Match narrow the document set for
// this occurrence; sibling occurrences never share a result.
type PartDirective struct {
	// Source is a doublestar glob over document IDs. Empty matches all.
	Source string
	// Match is a JSONPath selector evaluated per document (the document is
	// wrapped in a one-element array, so `$[?(@.kind == 'command')]` reads
	// naturally). A document is included iff the selector yields a result.
	// Empty matches all.
	Match string
}

// DerivedDirective computes a node by projecting the in-progress aggregate.
type DerivedDirective struct {
	// Expr is the raw path expression, e.g. "tools.commands[].c1". A
	// malformed expression degrades to an empty array at aggregation time.
	Expr string
	// Unique deduplicates the derived array preserving first-seen order.
	Unique bool
}

// FlattenDirective normalizes a field that may appear as scalar or array
// across documents into one flat array.
type FlattenDirective struct {
	// Field names the property to normalize. Empty means the directive's own
	// node.
	Field string
}

// FilterDirective computes a node by running a JMESPath query against the
// aggregate (or a named subtree). Compile and execution failures are
// non-fatal: the node is left unset and a warning recorded.
type FilterDirective struct {
	Query string
	// Target is an optional path expression naming the subtree the query
	// runs against. Empty means the whole aggregate.
	Target string
}
