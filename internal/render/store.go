package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	billy "github.com/go-git/go-billy/v5"
)

var (
	// ErrTemplateNotFound reports a missing template resource. Fatal: a
	// render cannot proceed without its template.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateRead reports a template resource that exists but cannot be
	// read. Fatal.
	ErrTemplateRead = errors.New("template read failure")

	// ErrTemplateParse reports rendered output that is not a well-formed
	// tree, which means the template resource itself is malformed. Fatal.
	ErrTemplateParse = errors.New("template parse failure")
)

// Template is one loaded template resource: literal text with embedded
// `{path}` placeholders.
type Template struct {
	Name string
	Text string
}

// Store loads template resources from a directory on a billy filesystem.
type Store struct {
	fsys billy.Filesystem
	dir  string
}

func NewStore(fsys billy.Filesystem, dir string) *Store {
	return &Store{fsys: fsys, dir: dir}
}

// Load reads a template by name. Missing resources fail with
// ErrTemplateNotFound, unreadable ones with ErrTemplateRead.
func (s *Store) Load(name string) (*Template, error) {
	full := name
	if s.dir != "" {
		full = path.Join(s.dir, name)
	}
	f, err := s.fsys.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, full)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateRead, full, err)
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateRead, full, err)
	}
	return &Template{Name: name, Text: string(data)}, nil
}
