package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a path: either an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path is a parsed path expression such as "user.name" or "a.b[2].c".
type Path []Segment

func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if s.IsIndex {
			fmt.Fprintf(&b, "[%d]", s.Index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
	}
	return b.String()
}

// ParsePath parses the dotted-key / bracketed-index path language shared by
// [get], [exists], and the [mod] body packets.
func ParsePath(s string) (Path, error) {
	var path Path
	i := 0
	n := len(s)
	expectSegment := true

	for i < n {
		switch {
		case s[i] == '.':
			if expectSegment {
				return nil, formatError(fmt.Sprintf("invalid path %q: unexpected '.'", s))
			}
			i++
			expectSegment = true

		case s[i] == '[':
			j := strings.IndexByte(s[i:], ']')
			if j < 0 {
				return nil, formatError(fmt.Sprintf("invalid path %q: unterminated '['", s))
			}
			idxStr := s[i+1 : i+j]
			idx, err := strconv.Atoi(strings.TrimSpace(idxStr))
			if err != nil {
				return nil, formatError(fmt.Sprintf("invalid path %q: non-integer index %q", s, idxStr))
			}
			path = append(path, Segment{Index: idx, IsIndex: true})
			i += j + 1
			expectSegment = false

		default:
			j := i
			for j < n && s[j] != '.' && s[j] != '[' {
				j++
			}
			key := s[i:j]
			if key == "" {
				return nil, formatError(fmt.Sprintf("invalid path %q: empty key", s))
			}
			path = append(path, Segment{Key: key})
			i = j
			expectSegment = false
		}
	}

	if len(path) == 0 {
		return nil, formatError("empty path")
	}
	if expectSegment {
		return nil, formatError(fmt.Sprintf("invalid path %q: trailing '.'", s))
	}
	return path, nil
}
