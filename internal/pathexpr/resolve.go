package pathexpr

import (
	"errors"
	"fmt"

	"github.com/tettuan/frontmatter-to-schema/internal/datatree"
)

// Resolve evaluates the expression against root. Expressions without an
// expansion suffix yield a single value; expressions with one yield an array,
// even when it holds a single match. A terminal null is a valid result; a
// null or missing value mid-traversal fails with ErrPathNotFound.
func (x Expr) Resolve(root any) (any, error) {
	v, _, err := run(root, x.ops)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ResolveAsArray evaluates like Resolve but always yields an array: scalar
// results are wrapped, a missing or null path yields an empty array instead
// of failing.
func (x Expr) ResolveAsArray(root any) ([]any, error) {
	v, expanded, err := run(root, x.ops)
	if err != nil {
		if errors.Is(err, ErrPathNotFound) {
			return []any{}, nil
		}
		return nil, err
	}
	if expanded {
		return v.([]any), nil
	}
	if v == nil {
		return []any{}, nil
	}
	if arr, ok := v.([]any); ok {
		return arr, nil
	}
	return []any{v}, nil
}

// Exists reports whether Resolve would succeed.
func (x Expr) Exists(root any) bool {
	_, _, err := run(root, x.ops)
	return err == nil
}

// Resolve parses and evaluates in one step.
func Resolve(root any, path string) (any, error) {
	x, err := ParseString(path)
	if err != nil {
		return nil, err
	}
	return x.Resolve(root)
}

// ResolveAsArray parses and evaluates in one step.
func ResolveAsArray(root any, path string) ([]any, error) {
	x, err := ParseString(path)
	if err != nil {
		return nil, err
	}
	return x.ResolveAsArray(root)
}

func run(v any, ops []op) (any, bool, error) {
	for i, o := range ops {
		switch o.kind {
		case opKey:
			next, ok := lookup(v, o.key)
			if !ok {
				return nil, false, fmt.Errorf("%w: %q", ErrPathNotFound, o.key)
			}
			v = next
		case opIndex:
			arr, ok := v.([]any)
			if !ok || o.index >= len(arr) {
				return nil, false, fmt.Errorf("%w: index %d", ErrPathNotFound, o.index)
			}
			v = arr[o.index]
		case opExpand:
			if v == nil {
				return nil, false, fmt.Errorf("%w: null before expansion", ErrPathNotFound)
			}
			arr, ok := v.([]any)
			if !ok {
				return nil, false, fmt.Errorf("%w: expansion over %T", ErrArrayExpected, v)
			}
			rest := ops[i+1:]
			out := []any{}
			for _, el := range arr {
				r, expanded, err := run(el, rest)
				if err != nil {
					// Elements lacking the continuing property are skipped,
					// not null-padded.
					if errors.Is(err, ErrPathNotFound) {
						continue
					}
					return nil, false, err
				}
				if expanded {
					// Second expansion in the same path flattens one level.
					out = append(out, r.([]any)...)
				} else {
					out = append(out, r)
				}
			}
			return out, true, nil
		}
	}
	return v, false, nil
}

func lookup(v any, key string) (any, bool) {
	switch m := v.(type) {
	case *datatree.Map:
		return m.Get(key)
	case map[string]any:
		val, ok := m[key]
		return val, ok
	default:
		return nil, false
	}
}
