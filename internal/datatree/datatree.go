// Package datatree holds the generic value model shared by the whole
// pipeline: JSON-like trees whose objects keep their key order.
package datatree

import (
	"encoding/json"
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is a JSON object with insertion-ordered keys. Every object produced by
// the pipeline (decoded documents, aggregates, rendered output) uses this
// type so that serialization order is deterministic.
type Map = orderedmap.OrderedMap[string, any]

// NewMap returns an empty ordered object.
func NewMap() *Map {
	return orderedmap.New[string, any]()
}

// Clone deep-copies a tree. Scalars are shared (they are immutable), maps and
// slices are rebuilt.
func Clone(v any) any {
	switch t := v.(type) {
	case *Map:
		out := NewMap()
		for p := t.Oldest(); p != nil; p = p.Next() {
			out.Set(p.Key, Clone(p.Value))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	default:
		return v
	}
}

// Unordered converts a tree into plain map[string]any / []any form for query
// engines that only understand the encoding/json shapes. json.Number values
// become float64 so numeric comparisons behave as expected.
func Unordered(v any) any {
	switch t := v.(type) {
	case *Map:
		out := make(map[string]any, t.Len())
		for p := t.Oldest(); p != nil; p = p.Next() {
			out[p.Key] = Unordered(p.Value)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Unordered(e)
		}
		return out
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

// Ordered converts plain map[string]any trees (e.g. query results) back into
// the ordered form. Plain maps carry no order, so keys are sorted to keep the
// result deterministic.
func Ordered(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := NewMap()
		for _, k := range keys {
			out.Set(k, Ordered(t[k]))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Ordered(e)
		}
		return out
	default:
		return v
	}
}

// Equal reports deep equality of two trees. Ordered maps compare by key set
// and per-key value, not by key order.
func Equal(a, b any) bool {
	am, aok := a.(*Map)
	bm, bok := b.(*Map)
	if aok && bok {
		if am.Len() != bm.Len() {
			return false
		}
		for p := am.Oldest(); p != nil; p = p.Next() {
			bv, ok := bm.Get(p.Key)
			if !ok || !Equal(p.Value, bv) {
				return false
			}
		}
		return true
	}
	as, aok := a.([]any)
	bs, bok := b.([]any)
	if aok && bok {
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !Equal(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return scalarEqual(a, b)
}

func scalarEqual(a, b any) bool {
	an, aok := a.(json.Number)
	bn, bok := b.(json.Number)
	if aok || bok {
		return numberString(a, an, aok) == numberString(b, bn, bok)
	}
	return a == b
}

func numberString(v any, n json.Number, isNumber bool) string {
	if isNumber {
		return n.String()
	}
	return fmt.Sprintf("%v", v)
}
