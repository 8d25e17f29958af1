package frontmatter

import (
	"fmt"
	"io"

	billy "github.com/go-git/go-billy/v5"

	"github.com/tettuan/frontmatter-to-schema/api"
)

// Read loads one document's frontmatter. Documents without a frontmatter
// block report ok=false and are typically skipped by the caller.
func Read(fsys billy.Filesystem, path, id string) (api.Document, bool, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return api.Document{}, false, fmt.Errorf("open document %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		return api.Document{}, false, fmt.Errorf("read document %s: %w", path, err)
	}

	block, _, ok := Extract(data)
	if !ok {
		return api.Document{}, false, nil
	}
	fields, err := Parse(block)
	if err != nil {
		return api.Document{}, false, fmt.Errorf("document %s: %w", path, err)
	}
	return api.Document{ID: id, Source: path, Fields: fields}, true, nil
}
