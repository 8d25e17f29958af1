package schema

// Node is one parsed schema fragment. Directives are pre-classified; nil
// means the directive is absent.
type Node struct {
	// Type is the JSON Schema type keyword: "object", "array", "string",
	// "number", "boolean", or "" when unspecified.
	Type string
	// Properties keeps the declaration order of the schema file; aggregation
	// walks it depth-first, left to right.
	Properties []Property
	// Items describes array elements.
	Items *Node

	Part     *PartDirective
	Derived  *DerivedDirective
	Flatten  *FlattenDirective
	Filter   *FilterDirective
	Template string // x-template resource name, "" when absent
}

// Property is one named child of an object node.
type Property struct {
	Name string
	Node *Node
}

// Prop returns the child node for a property name.
func (n *Node) Prop(name string) (*Node, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

// Schema is a parsed schema tree.
type Schema struct {
	Root *Node
}

// TemplateBinding pairs an aggregate path with the template that reshapes
// the value there. Each is true when the template applies per array element
// (x-template on an item schema) rather than to the node's value as a whole.
type TemplateBinding struct {
	Path     string
	Template string
	Each     bool
}

// TemplateBindings lists every x-template binding: array nodes whose item
// schema carries one, and object nodes carrying one directly. Bindings come
// out children-first so a nested binding reshapes its subtree before an
// enclosing one reads it; the renderer applies all of them before parent
// substitution.
func (s *Schema) TemplateBindings() []TemplateBinding {
	var out []TemplateBinding
	var collect func(n *Node, path string)
	collect = func(n *Node, path string) {
		if n == nil {
			return
		}
		for _, p := range n.Properties {
			collect(p.Node, join(path, p.Name))
		}
		if n.Type == "array" && n.Items != nil && n.Items.Template != "" {
			out = append(out, TemplateBinding{Path: path, Template: n.Items.Template, Each: true})
		}
		if n.Type != "array" && n.Template != "" && path != "" {
			out = append(out, TemplateBinding{Path: path, Template: n.Template})
		}
	}
	collect(s.Root, "")
	return out
}

// Walk visits every node depth-first, left to right, with its dotted path
// from the root ("" for the root itself).
func (s *Schema) Walk(fn func(path string, n *Node)) {
	walk(s.Root, "", fn)
}

func walk(n *Node, path string, fn func(string, *Node)) {
	if n == nil {
		return
	}
	fn(path, n)
	for _, p := range n.Properties {
		child := p.Name
		if path != "" {
			child = path + "." + p.Name
		}
		walk(p.Node, child, fn)
	}
	// Items are visited under the parent's path: directives on an item
	// schema apply to the elements of the array at that path.
}
