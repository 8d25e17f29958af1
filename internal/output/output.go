// Package output serializes a rendered tree to its final textual form.
// Object key order is whatever the tree carries; no sorting happens here.
package output

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tettuan/frontmatter-to-schema/internal/datatree"
)

// Marshal serializes tree as "json" (indented) or "yaml".
func Marshal(tree any, format string) ([]byte, error) {
	switch format {
	case "", "json":
		data, err := datatree.EncodeJSONIndent(tree, "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal json: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		node, err := toYAMLNode(tree)
		if err != nil {
			return nil, err
		}
		data, err := yaml.Marshal(node)
		if err != nil {
			return nil, fmt.Errorf("marshal yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func toYAMLNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}, nil
	case int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(t)}, nil
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(t, 10)}, nil
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(t, 'g', -1, 64)}, nil
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(t.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: t.String()}, nil
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range t {
			c, err := toYAMLNode(el)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, c)
		}
		return node, nil
	case *datatree.Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for p := t.Oldest(); p != nil; p = p.Next() {
			c, err := toYAMLNode(p.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key}, c)
		}
		return node, nil
	default:
		return nil, fmt.Errorf("cannot serialize %T to yaml", v)
	}
}
