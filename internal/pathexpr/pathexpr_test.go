package pathexpr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tettuan/frontmatter-to-schema/internal/datatree"
)

func tree(t *testing.T, src string) any {
	t.Helper()
	v, err := datatree.DecodeJSON([]byte(src))
	require.NoError(t, err)
	return v
}

func TestParseString(t *testing.T) {
	valid := []string{
		"name",
		"tools.commands",
		"a.b[0].c",
		"commands[].c1",
		"a[].b[]",
		"items[2]",
		"a[0][1]",
		"kebab-case.snake_case",
	}
	for _, s := range valid {
		t.Run(s, func(t *testing.T) {
			_, err := ParseString(s)
			assert.NoError(t, err)
		})
	}

	invalid := []string{
		"",
		"   ",
		".",
		"a..b",
		"a.",
		".a",
		"a[",
		"a[x]",
		"a[-1]",
		"a]b",
		"[0]",
		"a b",
		"1abc",
	}
	for _, s := range invalid {
		t.Run("invalid_"+s, func(t *testing.T) {
			_, err := ParseString(s)
			assert.ErrorIs(t, err, ErrInvalidPathSyntax)
		})
	}
}

func TestResolveSimple(t *testing.T) {
	data := tree(t, `{"meta":{"version":"1.0","count":3},"title":"hello"}`)

	v, err := Resolve(data, "title")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = Resolve(data, "meta.version")
	require.NoError(t, err)
	assert.Equal(t, "1.0", v)

	_, err = Resolve(data, "meta.missing")
	assert.ErrorIs(t, err, ErrPathNotFound)

	_, err = Resolve(data, "absent.deep.path")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestResolveIndex(t *testing.T) {
	data := tree(t, `{"items":[{"name":"a"},{"name":"b"}]}`)

	v, err := Resolve(data, "items[1].name")
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	// Out-of-bounds index is PathNotFound, not a distinct fatal case.
	_, err = Resolve(data, "items[5].name")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestResolveExpansion(t *testing.T) {
	data := tree(t, `{"items":[{"name":"a"},{},{"name":"c"}]}`)

	// Elements lacking the continuing property are skipped, not null-padded.
	v, err := Resolve(data, "items[].name")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "c"}, v)

	// A single match still comes back as an array.
	single := tree(t, `{"items":[{"name":"only"}]}`)
	v, err = Resolve(single, "items[].name")
	require.NoError(t, err)
	assert.Equal(t, []any{"only"}, v)

	// Expansion over a non-array is fatal.
	_, err = Resolve(tree(t, `{"items":"scalar"}`), "items[]")
	assert.ErrorIs(t, err, ErrArrayExpected)
}

func TestResolveDoubleExpansion(t *testing.T) {
	data := tree(t, `{"a":[{"b":[1,2]},{"b":[3]}]}`)

	v, err := Resolve(data, "a[].b[]")
	require.NoError(t, err)
	assert.Equal(t, []any{json.Number("1"), json.Number("2"), json.Number("3")}, v)
}

func TestResolveNullHandling(t *testing.T) {
	data := tree(t, `{"a":null,"b":{"c":null}}`)

	// Terminal null is a valid successful result.
	v, err := Resolve(data, "b.c")
	require.NoError(t, err)
	assert.Nil(t, v)

	// Null mid-traversal short-circuits to PathNotFound.
	_, err = Resolve(data, "a.x")
	assert.ErrorIs(t, err, ErrPathNotFound)
	_, err = Resolve(data, "a[]")
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestResolveAsArray(t *testing.T) {
	data := tree(t, `{"one":"x","list":[1,2],"gone":null}`)

	arr, err := ResolveAsArray(data, "one")
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, arr)

	arr, err = ResolveAsArray(data, "list")
	require.NoError(t, err)
	assert.Len(t, arr, 2)

	arr, err = ResolveAsArray(data, "missing")
	require.NoError(t, err)
	assert.Empty(t, arr)

	arr, err = ResolveAsArray(data, "gone")
	require.NoError(t, err)
	assert.Empty(t, arr)
}

func TestResolveIdempotent(t *testing.T) {
	data := tree(t, `{"items":[{"name":"a"},{"name":"b"}]}`)
	x, err := ParseString("items[].name")
	require.NoError(t, err)

	first, err := x.ResolveAsArray(data)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := x.ResolveAsArray(data)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestExists(t *testing.T) {
	data := tree(t, `{"meta":{"version":"1.0"}}`)
	x, err := ParseString("meta.version")
	require.NoError(t, err)
	assert.True(t, x.Exists(data))

	x, err = ParseString("meta.nope")
	require.NoError(t, err)
	assert.False(t, x.Exists(data))
}

func TestResolveOverPlainMaps(t *testing.T) {
	data := map[string]any{"a": map[string]any{"b": "c"}}
	v, err := Resolve(data, "a.b")
	require.NoError(t, err)
	assert.Equal(t, "c", v)
}
