package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// pattern is a compiled rsync-style glob.
//
//   - A leading "/" or any inner "/" anchors the glob at the tree root;
//     otherwise it matches the last segments of a path.
//   - A trailing "/" restricts the glob to directories.
//   - "*" and "?" stop at "/"; "**" crosses it.
type pattern struct {
	re      *regexp.Regexp
	source  string
	dirOnly bool
}

func compile(glob string) (*pattern, error) {
	if strings.TrimSpace(glob) == "" {
		return nil, fmt.Errorf("empty filter pattern")
	}
	p := &pattern{source: glob}

	body := glob
	if strings.HasSuffix(body, "/") {
		p.dirOnly = true
		body = strings.TrimSuffix(body, "/")
	}
	anchored := strings.Contains(body, "/")
	body = strings.TrimPrefix(body, "/")

	prefix := "(^|/)"
	if anchored {
		prefix = "^"
	}
	re, err := regexp.Compile(prefix + translate(body) + "$")
	if err != nil {
		return nil, fmt.Errorf("filter pattern %q: %w", glob, err)
	}
	p.re = re
	return p, nil
}

func (p *pattern) match(relPath string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	return p.re.MatchString(relPath)
}

// translate turns glob syntax into an unanchored regular expression.
//
//nolint:gocyclo,revive // cognitive-complexity: character-by-character glob parser
func translate(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			if !strings.HasPrefix(glob[i:], "**") {
				b.WriteString("[^/]*")
				continue
			}
			if strings.HasPrefix(glob[i:], "**/") {
				b.WriteString("(.*/)?")
				i += 2
			} else {
				b.WriteString(".*")
				i++
			}
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := classEnd(glob, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}

// classEnd returns the index of the "]" closing the class opened at start,
// or -1. A "]" right after "[" or "[!" is a literal member.
func classEnd(glob string, start int) int {
	j := start + 1
	if j < len(glob) && glob[j] == '!' {
		j++
	}
	if j < len(glob) && glob[j] == ']' {
		j++
	}
	if k := strings.IndexByte(glob[j:], ']'); k >= 0 {
		return j + k
	}
	return -1
}
