package pathexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseString parses a path expression. The grammar is
//
//	path    := segment ('.' segment)*
//	segment := identifier ('[' (digits | '') ']')*
//
// Malformed input fails with ErrInvalidPathSyntax before any evaluation.
func ParseString(s string) (Expr, error) {
	if strings.TrimSpace(s) == "" {
		return Expr{}, fmt.Errorf("%w: empty expression", ErrInvalidPathSyntax)
	}
	x := Expr{src: s}
	for _, raw := range strings.Split(s, ".") {
		seg := strings.TrimSpace(raw)
		if seg == "" {
			return Expr{}, fmt.Errorf("%w: empty segment in %q", ErrInvalidPathSyntax, s)
		}
		name, suffixes, err := splitSegment(seg)
		if err != nil {
			return Expr{}, fmt.Errorf("%w: %v in %q", ErrInvalidPathSyntax, err, s)
		}
		x.ops = append(x.ops, op{kind: opKey, key: name})
		x.ops = append(x.ops, suffixes...)
	}
	return x, nil
}

func splitSegment(seg string) (string, []op, error) {
	open := strings.IndexByte(seg, '[')
	if open == -1 {
		if err := checkIdent(seg); err != nil {
			return "", nil, err
		}
		return seg, nil, nil
	}
	name := seg[:open]
	if err := checkIdent(name); err != nil {
		return "", nil, err
	}
	var ops []op
	rest := seg[open:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, fmt.Errorf("unexpected %q after suffix", rest)
		}
		close := strings.IndexByte(rest, ']')
		if close == -1 {
			return "", nil, fmt.Errorf("unterminated suffix")
		}
		body := rest[1:close]
		if body == "" {
			ops = append(ops, op{kind: opExpand})
		} else {
			n, err := strconv.Atoi(body)
			if err != nil || n < 0 {
				return "", nil, fmt.Errorf("bad index %q", body)
			}
			ops = append(ops, op{kind: opIndex, index: n})
		}
		rest = rest[close+1:]
	}
	return name, ops, nil
}

func checkIdent(name string) error {
	if name == "" {
		return fmt.Errorf("empty identifier")
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9', r == '-':
			if i == 0 {
				return fmt.Errorf("identifier %q starts with %q", name, r)
			}
		default:
			return fmt.Errorf("bad character %q in identifier %q", r, name)
		}
	}
	return nil
}
