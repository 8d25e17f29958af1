// Package discovery finds source documents by glob pattern. Results come
// back in lexical order, which downstream aggregation treats as the
// canonical document order.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Entry is one discovered document.
type Entry struct {
	// Path locates the file on the filesystem the walk ran over.
	Path string
	// ID is the slash-separated path relative to the scan root. It doubles
	// as the document identifier during aggregation.
	ID string
}

// Documents walks root and returns every file matching at least one
// doublestar pattern, sorted by ID. Patterns are matched against the
// root-relative slash path.
func Documents(fsys billy.Filesystem, root string, patterns []string) ([]Entry, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	if root == "" {
		root = "."
	}

	var out []Entry
	err := util.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		id := filepath.ToSlash(rel)
		if strings.HasPrefix(id, "../") {
			return nil
		}
		for _, p := range patterns {
			ok, err := doublestar.Match(p, id)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, Entry{Path: path, ID: id})
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
