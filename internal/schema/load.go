package schema

import (
	"fmt"
	"io"

	billy "github.com/go-git/go-billy/v5"

	"github.com/tettuan/frontmatter-to-schema/internal/datatree"
)

// Warning records a non-fatal problem discovered at load time, e.g. an
// unrecognized x- key.
type Warning struct {
	Path    string
	Message string
}

// Load reads and parses a schema file.
func Load(fsys billy.Filesystem, path string) (*Schema, []Warning, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open schema %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses schema JSON into a directive-classified tree. Structural
// misuse of a directive is fatal; unknown x- keys only warn.
func Parse(data []byte) (*Schema, []Warning, error) {
	tree, err := datatree.DecodeJSON(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse schema: %w", err)
	}
	root, ok := tree.(*datatree.Map)
	if !ok {
		return nil, nil, fmt.Errorf("%w: schema root must be an object", ErrConfiguration)
	}
	p := &parser{}
	node, err := p.node(root, "")
	if err != nil {
		return nil, p.warnings, err
	}
	return &Schema{Root: node}, p.warnings, nil
}

type parser struct {
	warnings []Warning
}

func (p *parser) warnf(path, format string, args ...any) {
	p.warnings = append(p.warnings, Warning{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) node(m *datatree.Map, path string) (*Node, error) {
	n := &Node{}
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		key, val := pair.Key, pair.Value
		if kind, isDirective := Classify(key); isDirective {
			if err := p.directive(n, kind, key, val, path); err != nil {
				return nil, err
			}
			continue
		}
		switch key {
		case "type":
			if s, ok := val.(string); ok {
				n.Type = s
			}
		case "properties":
			props, ok := val.(*datatree.Map)
			if !ok {
				return nil, fmt.Errorf("%w: %s.properties must be an object", ErrConfiguration, path)
			}
			for pp := props.Oldest(); pp != nil; pp = pp.Next() {
				childMap, ok := pp.Value.(*datatree.Map)
				if !ok {
					return nil, fmt.Errorf("%w: property %s of %s must be an object", ErrConfiguration, pp.Key, path)
				}
				child, err := p.node(childMap, join(path, pp.Key))
				if err != nil {
					return nil, err
				}
				n.Properties = append(n.Properties, Property{Name: pp.Key, Node: child})
			}
		case "items":
			itemMap, ok := val.(*datatree.Map)
			if !ok {
				return nil, fmt.Errorf("%w: %s.items must be an object", ErrConfiguration, path)
			}
			item, err := p.node(itemMap, join(path, "items"))
			if err != nil {
				return nil, err
			}
			p.warnInert(item, join(path, "items"))
			n.Items = item
		default:
			// title, description, required, defaults... irrelevant here.
		}
	}
	return n, p.validate(n, path)
}

func (p *parser) directive(n *Node, kind Kind, key string, val any, path string) error {
	switch kind {
	case KindPart:
		switch v := val.(type) {
		case bool:
			if v {
				n.Part = &PartDirective{}
			}
		case *datatree.Map:
			d := &PartDirective{}
			if s, ok := v.Get("source"); ok {
				d.Source, _ = s.(string)
			}
			if m, ok := v.Get("match"); ok {
				d.Match, _ = m.(string)
			}
			n.Part = d
		default:
			return fmt.Errorf("%w: %s: x-frontmatter-part must be true or an object", ErrConfiguration, path)
		}
	case KindDerived:
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("%w: %s: x-derived-from must be a string", ErrConfiguration, path)
		}
		if n.Derived == nil {
			n.Derived = &DerivedDirective{}
		}
		n.Derived.Expr = s
	case KindDerivedUnique:
		if b, ok := val.(bool); ok && b {
			if n.Derived == nil {
				n.Derived = &DerivedDirective{}
			}
			n.Derived.Unique = true
		}
	case KindFlatten:
		switch v := val.(type) {
		case bool:
			if v {
				n.Flatten = &FlattenDirective{}
			}
		case string:
			n.Flatten = &FlattenDirective{Field: v}
		default:
			return fmt.Errorf("%w: %s: x-flatten-arrays must be a field name or boolean", ErrConfiguration, path)
		}
	case KindFilter:
		switch v := val.(type) {
		case string:
			n.Filter = &FilterDirective{Query: v}
		case *datatree.Map:
			d := &FilterDirective{}
			if q, ok := v.Get("query"); ok {
				d.Query, _ = q.(string)
			}
			if t, ok := v.Get("target"); ok {
				d.Target, _ = t.(string)
			}
			n.Filter = d
		default:
			return fmt.Errorf("%w: %s: x-jmespath-filter must be a query string or object", ErrConfiguration, path)
		}
	case KindTemplate:
		s, ok := val.(string)
		if !ok || s == "" {
			return fmt.Errorf("%w: %s: x-template must be a template name", ErrConfiguration, path)
		}
		n.Template = s
	default:
		p.warnf(path, "unrecognized directive %q ignored", key)
	}
	return nil
}

// warnInert flags aggregation directives found inside an item schema.
// Aggregation walks properties only, never item subtrees, so such a
// directive is never executed; x-template is the exception and stays
// meaningful there.
func (p *parser) warnInert(n *Node, path string) {
	if n == nil {
		return
	}
	inert := []struct {
		key string
		set bool
	}{
		{"x-frontmatter-part", n.Part != nil},
		{"x-derived-from", n.Derived != nil},
		{"x-flatten-arrays", n.Flatten != nil},
		{"x-jmespath-filter", n.Filter != nil},
	}
	for _, d := range inert {
		if d.set {
			p.warnf(path, "%s inside an item schema has no effect", d.key)
		}
	}
	for _, prop := range n.Properties {
		p.warnInert(prop.Node, join(path, prop.Name))
	}
	if n.Items != nil {
		p.warnInert(n.Items, join(path, "items"))
	}
}

func (p *parser) validate(n *Node, path string) error {
	if n.Part != nil && n.Type != "array" {
		return fmt.Errorf("%w: %s: x-frontmatter-part requires an array node, got %q", ErrConfiguration, path, n.Type)
	}
	if n.Part != nil && n.Derived != nil {
		// Unspecified combination; rejecting beats guessing a precedence.
		return fmt.Errorf("%w: %s: x-frontmatter-part and x-derived-from on the same node", ErrConfiguration, path)
	}
	return nil
}

func join(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
