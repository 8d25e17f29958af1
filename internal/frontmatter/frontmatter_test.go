package frontmatter

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tettuan/frontmatter-to-schema/internal/datatree"
)

const sample = `---
c1: git
c2: create
tags:
  - vcs
  - cli
count: 3
draft: false
---

# Git command

Body text here.
`

func TestExtract(t *testing.T) {
	block, body, ok := Extract([]byte(sample))
	require.True(t, ok)
	assert.Contains(t, string(block), "c1: git")
	assert.NotContains(t, string(block), "---")
	assert.Contains(t, string(body), "# Git command")
}

func TestExtractNoFrontmatter(t *testing.T) {
	for _, src := range []string{
		"# Just a heading\n",
		"",
		"text before\n---\nkey: val\n---\n",
		"---\nunterminated: yes\n",
	} {
		_, _, ok := Extract([]byte(src))
		assert.False(t, ok, "input %q", src)
	}
}

func TestExtractDotTerminator(t *testing.T) {
	block, _, ok := Extract([]byte("---\nkey: val\n...\nbody\n"))
	require.True(t, ok)
	assert.Equal(t, "key: val\n", string(block))
}

func TestParsePreservesKeyOrderAndTypes(t *testing.T) {
	block, _, ok := Extract([]byte(sample))
	require.True(t, ok)

	fields, err := Parse(block)
	require.NoError(t, err)

	var keys []string
	for p := fields.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"c1", "c2", "tags", "count", "draft"}, keys)

	v, _ := fields.Get("tags")
	assert.Equal(t, []any{"vcs", "cli"}, v)
	v, _ = fields.Get("count")
	assert.Equal(t, int64(3), v)
	v, _ = fields.Get("draft")
	assert.Equal(t, false, v)
}

func TestParseNestedMapping(t *testing.T) {
	fields, err := Parse([]byte("meta:\n  author: someone\n  year: 2024\n"))
	require.NoError(t, err)

	meta, ok := fields.Get("meta")
	require.True(t, ok)
	m, ok := meta.(*datatree.Map)
	require.True(t, ok)
	author, _ := m.Get("author")
	assert.Equal(t, "someone", author)
}

func TestParseRejectsNonMapping(t *testing.T) {
	_, err := Parse([]byte("- a\n- b\n"))
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "docs/git.md", []byte(sample), 0o644))
	require.NoError(t, util.WriteFile(fsys, "docs/plain.md", []byte("no frontmatter\n"), 0o644))

	doc, ok, err := Read(fsys, "docs/git.md", "git.md")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "git.md", doc.ID)
	assert.Equal(t, "docs/git.md", doc.Source)
	fields := doc.Fields.(*datatree.Map)
	c1, _ := fields.Get("c1")
	assert.Equal(t, "git", c1)

	_, ok, err = Read(fsys, "docs/plain.md", "plain.md")
	require.NoError(t, err)
	assert.False(t, ok)
}
