package datatree

import (
	"fmt"
	"strings"
)

// SetPath writes a value at a dotted path, creating intermediate ordered
// objects as needed. The tree root must be an object.
func SetPath(tree any, path string, v any) error {
	m, ok := tree.(*Map)
	if !ok {
		return fmt.Errorf("cannot set %q: root is not an object", path)
	}
	if path == "" {
		return fmt.Errorf("cannot set an empty path")
	}
	parts := strings.Split(path, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := m.Get(part)
		if !ok {
			child := NewMap()
			m.Set(part, child)
			m = child
			continue
		}
		child, ok := next.(*Map)
		if !ok {
			return fmt.Errorf("cannot set %q: %q is not an object", path, part)
		}
		m = child
	}
	m.Set(parts[len(parts)-1], v)
	return nil
}
