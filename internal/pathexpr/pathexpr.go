// Package pathexpr implements the dotted path expressions used by schema
// directives and template placeholders: `tools.commands[0].name`,
// `commands[].c1`, `a[].b[]`. A bare `[]` suffix fans out over every element
// of an array and collects the per-element results.
package pathexpr

import "errors"

var (
	// ErrPathNotFound reports a segment absent at some step of traversal.
	// Index-out-of-bounds and null-mid-path resolve to this error too.
	ErrPathNotFound = errors.New("path not found")

	// ErrInvalidPathSyntax reports a malformed path expression. It is raised
	// at parse time, before any traversal happens.
	ErrInvalidPathSyntax = errors.New("invalid path syntax")

	// ErrArrayExpected reports an expansion suffix applied to a non-array.
	ErrArrayExpected = errors.New("array expected")
)

type opKind int

const (
	opKey opKind = iota
	opIndex
	opExpand
)

type op struct {
	kind  opKind
	key   string
	index int
}

// Expr is a parsed path expression, ready for repeated evaluation.
type Expr struct {
	src string
	ops []op
}

// String returns the original expression text.
func (x Expr) String() string { return x.src }

// Expands reports whether the expression contains at least one `[]` suffix,
// in which case Resolve returns an array.
func (x Expr) Expands() bool {
	for _, o := range x.ops {
		if o.kind == opExpand {
			return true
		}
	}
	return false
}
