// Package frontmatter extracts the ----fenced YAML block from the head of a
// markdown document and decodes it into an ordered property map. Key order
// is taken from the source, not from Go map iteration.
package frontmatter

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tettuan/frontmatter-to-schema/internal/datatree"
)

const fence = "---"

// Extract splits a document into its frontmatter block and the remaining
// body. ok is false when the document carries no frontmatter.
func Extract(data []byte) (block []byte, body []byte, ok bool) {
	text := string(data)
	text = strings.TrimPrefix(text, "\uFEFF") // strip BOM
	lines := strings.SplitAfter(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r\n") != fence {
		return nil, data, false
	}
	var b strings.Builder
	for i := 1; i < len(lines); i++ {
		trimmed := strings.TrimRight(lines[i], "\r\n")
		if trimmed == fence || trimmed == "..." {
			rest := strings.Join(lines[i+1:], "")
			return []byte(b.String()), []byte(rest), true
		}
		b.WriteString(lines[i])
	}
	// Unterminated fence: not frontmatter.
	return nil, data, false
}

// Parse decodes a YAML frontmatter block into an ordered tree. The result is
// always an object; scalar or sequence frontmatter is rejected.
func Parse(block []byte) (*datatree.Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return datatree.NewMap(), nil
	}
	v, err := fromNode(doc.Content[0])
	if err != nil {
		return nil, err
	}
	m, ok := v.(*datatree.Map)
	if !ok {
		return nil, fmt.Errorf("frontmatter must be a mapping, got %T", v)
	}
	return m, nil
}

func fromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		m := datatree.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			val, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalar(n)
	case yaml.AliasNode:
		return fromNode(n.Alias)
	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d at line %d", n.Kind, n.Line)
	}
}

func scalar(n *yaml.Node) (any, error) {
	switch n.Tag {
	case "!!null":
		return nil, nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return n.Value, nil
		}
		return b, nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return n.Value, nil
		}
		return i, nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return n.Value, nil
		}
		return f, nil
	default:
		// !!str, !!timestamp and anything unrecognized stay textual.
		return n.Value, nil
	}
}
