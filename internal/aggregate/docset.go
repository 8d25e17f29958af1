package aggregate

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/ohler55/ojg/jp"

	"github.com/tettuan/frontmatter-to-schema/api"
	"github.com/tettuan/frontmatter-to-schema/internal/datatree"
	"github.com/tettuan/frontmatter-to-schema/internal/schema"
)

// scope computes the bitmap of document indices one x-frontmatter-part
// occurrence covers. Each occurrence evaluates its own source glob and match
// selector; results are never shared between sibling occurrences. Ascending
// bitmap iteration preserves the caller-supplied document order.
func scope(d *schema.PartDirective, docs []api.Document, path string) (*roaring.Bitmap, error) {
	var matcher jp.Expr
	if d.Match != "" {
		x, err := jp.ParseString(d.Match)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: invalid match selector %q: %v", schema.ErrConfiguration, path, d.Match, err)
		}
		matcher = x
	}

	bm := roaring.New()
	for i, doc := range docs {
		if d.Source != "" {
			ok, err := doublestar.Match(d.Source, doc.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: invalid source pattern %q: %v", schema.ErrConfiguration, path, d.Source, err)
			}
			if !ok {
				continue
			}
		}
		if matcher != nil {
			// Wrap the document in a one-element array so selectors like
			// $[?(@.kind == 'command')] read naturally.
			if len(matcher.Get([]any{datatree.Unordered(doc.Fields)})) == 0 {
				continue
			}
		}
		bm.Add(uint32(i))
	}
	return bm, nil
}
