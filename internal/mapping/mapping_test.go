package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tettuan/frontmatter-to-schema/internal/datatree"
)

func doc(pairs ...any) *datatree.Map {
	m := datatree.NewMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1])
	}
	return m
}

func TestExactWinsOverAlias(t *testing.T) {
	r := NewResolver(map[string]string{"title": "name"})
	d := doc("title", "exact", "name", "aliased")

	field, ok := r.Field("title", "string", d, nil)
	require.True(t, ok)
	assert.Equal(t, "exact", field)
}

func TestAliasStrategy(t *testing.T) {
	r := NewResolver(map[string]string{"title": "headline"})
	d := doc("headline", "from alias")

	field, ok := r.Field("title", "string", d, map[string]bool{})
	require.True(t, ok)
	assert.Equal(t, "headline", field)
}

func TestFoldedStrategy(t *testing.T) {
	r := NewResolver(nil)
	d := doc("created_at", "2024-01-01")

	field, ok := r.Field("createdAt", "string", d, map[string]bool{})
	require.True(t, ok)
	assert.Equal(t, "created_at", field)

	field, ok = r.Field("Created-At", "string", d, map[string]bool{})
	require.True(t, ok)
	assert.Equal(t, "created_at", field)
}

func TestStructuralStrategy(t *testing.T) {
	r := NewResolver(nil)

	// Exactly one unclaimed array-typed field: matched.
	d := doc("whatever", []any{"a"}, "label", "text")
	field, ok := r.Field("tags", "array", d, map[string]bool{})
	require.True(t, ok)
	assert.Equal(t, "whatever", field)

	// Two candidates: ambiguous, no match.
	d = doc("one", []any{}, "two", []any{})
	_, ok = r.Field("tags", "array", d, map[string]bool{})
	assert.False(t, ok)

	// Untyped property never matches structurally.
	d = doc("only", "value")
	_, ok = r.Field("missing", "", d, map[string]bool{})
	assert.False(t, ok)
}

func TestClaimedFieldsAreSkipped(t *testing.T) {
	r := NewResolver(nil)
	d := doc("name", "x")

	claimed := map[string]bool{"name": true}
	_, ok := r.Field("name", "string", d, claimed)
	assert.False(t, ok)
}

func TestNoMatch(t *testing.T) {
	r := NewResolver(nil)
	d := doc("a", "x", "b", "y")
	_, ok := r.Field("unrelated", "", d, map[string]bool{})
	assert.False(t, ok)
}
