// Package render produces the final output tree from a template and a data
// context. The template defines the output shape exactly: placeholders are
// replaced by resolved values, everything else is copied verbatim, and
// nothing absent from the template appears in the output.
package render

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/tettuan/frontmatter-to-schema/api"
	"github.com/tettuan/frontmatter-to-schema/internal/datatree"
	"github.com/tettuan/frontmatter-to-schema/internal/pathexpr"
	"github.com/tettuan/frontmatter-to-schema/internal/schema"
)

// Warning codes. A warning leaves the placeholder null and the render
// continues; only template load/parse failures are fatal.
const (
	WarnSubstitutionMiss = "variable-substitution-miss"
	WarnInvalidPath      = "invalid-path-syntax"
	WarnArrayExpected    = "array-expected"
)

// Warning is one degraded placeholder.
type Warning struct {
	Placeholder string
	Code        string
	Message     string
}

// Result is a completed render.
type Result struct {
	Tree     any
	Warnings []Warning
}

// Options configure a Renderer; verbosity is explicit, never ambient.
type Options struct {
	Verbosity api.Verbosity
	Logger    *log.Logger
}

// Renderer substitutes placeholders against a data context. It holds no
// state between renders.
type Renderer struct {
	store *Store
	opts  Options
}

func NewRenderer(store *Store, opts Options) *Renderer {
	return &Renderer{store: store, opts: opts}
}

func (r *Renderer) logf(level api.Verbosity, format string, args ...any) {
	if r.opts.Logger != nil && r.opts.Verbosity >= level {
		r.opts.Logger.Printf(format, args...)
	}
}

// placeholderRe matches `"{ path }"` at a quoted-string position. A body
// containing a quote character never matches and is left untouched.
var placeholderRe = regexp.MustCompile(`"\{\s*([^{}"\s][^{}"]*?)\s*\}"`)

// Render loads the named template, applies template bindings to the subtrees
// they bind (always before the parent substitution sees them), substitutes
// every placeholder against ctx, and decodes the result into a tree.
func (r *Renderer) Render(name string, ctx any, bindings []schema.TemplateBinding) (*Result, error) {
	tpl, err := r.store.Load(name)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	effCtx := ctx
	if len(bindings) > 0 {
		effCtx = datatree.Clone(ctx)
		for _, binding := range bindings {
			if err := r.applyBinding(effCtx, binding, res); err != nil {
				return nil, err
			}
		}
	}

	text := r.substitute(tpl, effCtx, res)
	tree, err := datatree.DecodeJSON([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, tpl.Name, err)
	}
	res.Tree = tree
	return res, nil
}

// applyBinding reshapes the subtree at binding.Path through its template and
// writes the result back into the context: each array element separately
// when the binding came from an item schema, the value as a whole otherwise.
// Only the reshaped results reach the parent template.
func (r *Renderer) applyBinding(ctx any, binding schema.TemplateBinding, res *Result) error {
	v, err := pathexpr.Resolve(ctx, binding.Path)
	if err != nil {
		return nil // nothing aggregated at this path
	}
	tpl, err := r.store.Load(binding.Template)
	if err != nil {
		return err
	}

	if binding.Each {
		arr, ok := v.([]any)
		if !ok {
			return nil
		}
		r.logf(api.Verbose, "item template %s over %d elements at %s", binding.Template, len(arr), binding.Path)
		reshaped := make([]any, len(arr))
		for i, el := range arr {
			val, err := r.reshape(tpl, el, res)
			if err != nil {
				return err
			}
			reshaped[i] = val
		}
		return datatree.SetPath(ctx, binding.Path, reshaped)
	}

	r.logf(api.Verbose, "node template %s at %s", binding.Template, binding.Path)
	val, err := r.reshape(tpl, v, res)
	if err != nil {
		return err
	}
	return datatree.SetPath(ctx, binding.Path, val)
}

func (r *Renderer) reshape(tpl *Template, el any, res *Result) (any, error) {
	text := r.substitute(tpl, el, res)
	val, err := datatree.DecodeJSON([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateParse, tpl.Name, err)
	}
	return val, nil
}

// substitute replaces every placeholder in the template text. Unresolvable
// placeholders degrade to null with a warning; they never abort the render.
func (r *Renderer) substitute(tpl *Template, ctx any, res *Result) string {
	return placeholderRe.ReplaceAllStringFunc(tpl.Text, func(match string) string {
		body := strings.TrimSpace(match[2 : len(match)-2])
		x, err := pathexpr.ParseString(body)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{
				Placeholder: body,
				Code:        WarnInvalidPath,
				Message:     err.Error(),
			})
			return "null"
		}
		v, err := x.Resolve(ctx)
		if err != nil {
			code := WarnSubstitutionMiss
			if errors.Is(err, pathexpr.ErrArrayExpected) {
				code = WarnArrayExpected
			}
			r.logf(api.Debug, "placeholder %q: %v", body, err)
			res.Warnings = append(res.Warnings, Warning{
				Placeholder: body,
				Code:        code,
				Message:     err.Error(),
			})
			return "null"
		}
		out, err := datatree.EncodeJSON(v)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{
				Placeholder: body,
				Code:        WarnSubstitutionMiss,
				Message:     err.Error(),
			})
			return "null"
		}
		return string(out)
	})
}
