// Package aggregate combines an ordered document set and a directive-carrying
// schema into one aggregate tree. Processing order is deterministic:
// frontmatter parts first (depth-first, left to right), then array
// normalization, then derived fields, then JMESPath filters.
package aggregate

import (
	"errors"
	"fmt"
	"log"

	"github.com/jmespath/go-jmespath"

	"github.com/tettuan/frontmatter-to-schema/api"
	"github.com/tettuan/frontmatter-to-schema/internal/datatree"
	"github.com/tettuan/frontmatter-to-schema/internal/mapping"
	"github.com/tettuan/frontmatter-to-schema/internal/pathexpr"
	"github.com/tettuan/frontmatter-to-schema/internal/schema"
)

// Warning codes recorded by the engine. Warnings never abort the pass; the
// affected node is left unset (or empty) and siblings complete normally.
const (
	WarnDerivedMalformed  = "derived-from-malformed"
	WarnDerivedUnresolved = "derived-from-unresolved"
	WarnFilterCompile     = "jmespath-compilation-failed"
	WarnFilterExecute     = "jmespath-execution-failed"
	WarnTargetUnwritable  = "target-path-unwritable"
)

// Warning is one contained, non-fatal failure.
type Warning struct {
	Path    string
	Code    string
	Message string
}

// Result is one completed aggregation pass.
type Result struct {
	// Tree is the aggregate, a *datatree.Map.
	Tree any
	// Warnings lists contained failures in the order they occurred.
	Warnings []Warning
}

// Options configure an Engine. Verbosity is explicit; the engine never reads
// process-wide state.
type Options struct {
	Verbosity api.Verbosity
	Logger    *log.Logger
	// Aliases feed the explicit-mapping strategy (schema property → document
	// field).
	Aliases map[string]string
}

// Engine aggregates documents. It holds no state between calls; the same
// engine may run any number of independent passes.
type Engine struct {
	opts     Options
	resolver *mapping.Resolver
}

func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:     opts,
		resolver: mapping.NewResolver(opts.Aliases),
	}
}

func (e *Engine) logf(level api.Verbosity, format string, args ...any) {
	if e.opts.Logger != nil && e.opts.Verbosity >= level {
		e.opts.Logger.Printf(format, args...)
	}
}

// Aggregate runs all four phases over the schema and returns the aggregate
// tree. Document order is preserved end-to-end. Structural directive misuse
// is fatal; query failures degrade to warnings.
func (e *Engine) Aggregate(docs []api.Document, s *schema.Schema) (*Result, error) {
	if s == nil || s.Root == nil {
		return nil, fmt.Errorf("%w: nil schema", schema.ErrConfiguration)
	}
	res := &Result{Tree: datatree.NewMap()}

	// Phase 1: populate every frontmatter-part array.
	var phaseErr error
	s.Walk(func(path string, n *schema.Node) {
		if phaseErr != nil || n.Part == nil {
			return
		}
		if err := e.populatePart(res, docs, path, n); err != nil {
			phaseErr = err
		}
	})
	if phaseErr != nil {
		return nil, phaseErr
	}

	// Phase 2: flatten-arrays normalization.
	s.Walk(func(path string, n *schema.Node) {
		if n.Flatten != nil {
			e.applyFlatten(res, path, n)
		}
	})

	// Phase 3: derived fields, deduplicated immediately when requested.
	s.Walk(func(path string, n *schema.Node) {
		if n.Derived != nil {
			e.applyDerived(res, path, n)
		}
	})

	// Phase 4: JMESPath filters run last so they can read derived values.
	s.Walk(func(path string, n *schema.Node) {
		if n.Filter != nil {
			e.applyFilter(res, path, n)
		}
	})

	return res, nil
}

func (e *Engine) populatePart(res *Result, docs []api.Document, path string, n *schema.Node) error {
	if path == "" {
		return fmt.Errorf("%w: x-frontmatter-part on the schema root", schema.ErrConfiguration)
	}
	set, err := scope(n.Part, docs, path)
	if err != nil {
		return err
	}
	e.logf(api.Verbose, "part %s: %d of %d documents", path, set.GetCardinality(), len(docs))

	elems := make([]any, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		doc := docs[it.Next()]
		elems = append(elems, e.buildElement(doc, n.Items))
	}
	return setPath(res.Tree, path, elems)
}

// buildElement projects one document onto the item schema. Item templates
// (x-template on the item schema) are deferred to rendering; this stage only
// shapes raw values.
func (e *Engine) buildElement(doc api.Document, item *schema.Node) any {
	fields, ok := doc.Fields.(*datatree.Map)
	if !ok || item == nil || len(item.Properties) == 0 {
		return datatree.Clone(doc.Fields)
	}
	out := datatree.NewMap()
	claimed := make(map[string]bool, len(item.Properties))
	for _, p := range item.Properties {
		field, ok := e.resolver.Field(p.Name, p.Node.Type, fields, claimed)
		if !ok {
			continue
		}
		claimed[field] = true
		v, _ := fields.Get(field)
		out.Set(p.Name, datatree.Clone(v))
	}
	return out
}

func (e *Engine) applyFlatten(res *Result, path string, n *schema.Node) {
	target, err := pathexpr.Resolve(res.Tree, path)
	if err != nil {
		return // nothing aggregated at this node
	}
	field := n.Flatten.Field
	switch {
	case field == "":
		flat := flattenValue(target)
		e.store(res, path, flat)
	default:
		// Normalize the named field, per element when the node holds a part
		// array, directly when it holds an object.
		switch t := target.(type) {
		case []any:
			for _, el := range t {
				if m, ok := el.(*datatree.Map); ok {
					if v, ok := m.Get(field); ok {
						m.Set(field, flattenValue(v))
					}
				}
			}
		case *datatree.Map:
			if v, ok := t.Get(field); ok {
				t.Set(field, flattenValue(v))
			}
		}
	}
}

// flattenValue normalizes scalar-or-array values: scalar becomes a
// one-element array, a nested array is flattened one level.
func flattenValue(v any) []any {
	arr, ok := v.([]any)
	if !ok {
		if v == nil {
			return []any{}
		}
		return []any{v}
	}
	out := make([]any, 0, len(arr))
	for _, el := range arr {
		if inner, ok := el.([]any); ok {
			out = append(out, inner...)
		} else {
			out = append(out, el)
		}
	}
	return out
}

func (e *Engine) applyDerived(res *Result, path string, n *schema.Node) {
	x, err := pathexpr.ParseString(n.Derived.Expr)
	if err != nil {
		res.Warnings = append(res.Warnings, Warning{
			Path:    path,
			Code:    WarnDerivedMalformed,
			Message: fmt.Sprintf("x-derived-from %q: %v", n.Derived.Expr, err),
		})
		e.store(res, path, []any{})
		return
	}

	if n.Type == "array" || x.Expands() {
		arr, err := x.ResolveAsArray(res.Tree)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{
				Path:    path,
				Code:    WarnDerivedUnresolved,
				Message: fmt.Sprintf("x-derived-from %q: %v", n.Derived.Expr, err),
			})
			arr = []any{}
		}
		if n.Derived.Unique {
			arr = dedupe(arr)
		}
		e.logf(api.Debug, "derived %s: %d values", path, len(arr))
		e.store(res, path, arr)
		return
	}

	v, err := x.Resolve(res.Tree)
	if err != nil {
		res.Warnings = append(res.Warnings, Warning{
			Path:    path,
			Code:    WarnDerivedUnresolved,
			Message: fmt.Sprintf("x-derived-from %q: %v", n.Derived.Expr, err),
		})
		return
	}
	e.store(res, path, v)
}

// dedupe removes duplicates preserving first-seen order. Values compare by
// their serialized form, so equal objects deduplicate too.
func dedupe(arr []any) []any {
	seen := make(map[string]bool, len(arr))
	out := make([]any, 0, len(arr))
	for _, v := range arr {
		key, err := datatree.EncodeJSON(v)
		if err != nil {
			out = append(out, v)
			continue
		}
		if seen[string(key)] {
			continue
		}
		seen[string(key)] = true
		out = append(out, v)
	}
	return out
}

func (e *Engine) applyFilter(res *Result, path string, n *schema.Node) {
	compiled, err := jmespath.Compile(n.Filter.Query)
	if err != nil {
		res.Warnings = append(res.Warnings, Warning{
			Path:    path,
			Code:    WarnFilterCompile,
			Message: fmt.Sprintf("x-jmespath-filter %q: %v", n.Filter.Query, err),
		})
		return
	}

	input := res.Tree
	if n.Filter.Target != "" {
		v, err := pathexpr.Resolve(res.Tree, n.Filter.Target)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{
				Path:    path,
				Code:    WarnFilterExecute,
				Message: fmt.Sprintf("x-jmespath-filter target %q: %v", n.Filter.Target, err),
			})
			return
		}
		input = v
	}

	out, err := compiled.Search(datatree.Unordered(input))
	if err != nil {
		res.Warnings = append(res.Warnings, Warning{
			Path:    path,
			Code:    WarnFilterExecute,
			Message: fmt.Sprintf("x-jmespath-filter %q: %v", n.Filter.Query, err),
		})
		return
	}
	e.store(res, path, datatree.Ordered(out))
}

func setPath(tree any, path string, v any) error {
	return datatree.SetPath(tree, path, v)
}

// store writes a directive result into the tree; an unwritable target (e.g.
// a directive addressing the schema root) degrades to a warning rather than
// dropping the result silently.
func (e *Engine) store(res *Result, path string, v any) {
	if err := setPath(res.Tree, path, v); err != nil {
		res.Warnings = append(res.Warnings, Warning{
			Path:    path,
			Code:    WarnTargetUnwritable,
			Message: err.Error(),
		})
	}
}

// IsConfigurationError reports whether err is the fatal directive-misuse
// class, as opposed to a contained warning condition.
func IsConfigurationError(err error) bool {
	return errors.Is(err, schema.ErrConfiguration)
}
