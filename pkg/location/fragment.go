package location

import (
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/cpanmeta/pkg/search"
)

// minFragmentLen is the shortest fragment that can carry a delimiter: "#" plus one byte.
const minFragmentLen = 2

// delimiters in priority order. The first kind found anywhere in the
// fragment wins, even if a lower-priority delimiter appears earlier.
var delimiters = []struct {
	b    byte
	mode search.MatchMode
}{
	{'=', search.Exact},
	{'~', search.Prefix},
	{'*', search.Infix},
}

// otherAuthorsFlag precedes the delimiter to mean "include other authors".
const otherAuthorsFlag = '+'

// fragmentOf returns the "#..." part of raw, or "" if raw has no fragment.
func fragmentOf(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[i:]
	}
	return ""
}

// parseFragment splits a fragment into its author and query segments.
// It reports false for fragments that are too short, cannot be
// percent-decoded, or carry no delimiter.
func parseFragment(frag string) (Fields, bool) {
	if len(frag) < minFragmentLen || frag[0] != '#' {
		return Fields{}, false
	}
	// Old clients escaped the whole fragment rather than each segment.
	if strings.Contains(frag[1:], "%") {
		decoded, ok := decodeURI(frag)
		if !ok {
			return Fields{}, false
		}
		frag = decoded
	}
	body := frag[1:]

	idx := -1
	mode := search.DefaultMatchMode
	for _, d := range delimiters {
		if i := strings.IndexByte(body, d.b); i >= 0 {
			idx, mode = i, d.mode
			break
		}
	}
	if idx < 0 {
		return Fields{}, false
	}

	f := Fields{Mode: mode, Query: body[idx+1:]}
	if idx > 0 && body[idx-1] == otherAuthorsFlag {
		f.Author = body[:idx-1]
		f.OtherAuthors = true
	} else {
		f.Author = body[:idx]
	}
	return f, true
}

// uriReserved are the characters whose escapes decodeURI leaves in place, so
// an escaped delimiter or "+" stays literal text.
const uriReserved = ";/?:@&=+$,#"

// decodeURI unescapes s the way a browser's decodeURI does: escapes of
// reserved characters are kept, and malformed escapes or invalid UTF-8 fail.
func decodeURI(s string) (string, bool) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) || !ishex(s[i+1]) || !ishex(s[i+2]) {
			return "", false
		}
		c := unhex(s[i+1])<<4 | unhex(s[i+2])
		if c < utf8.RuneSelf && strings.IndexByte(uriReserved, c) >= 0 {
			b.WriteString(s[i : i+3])
		} else {
			b.WriteByte(c)
		}
		i += 2
	}
	out := b.String()
	if !utf8.ValidString(out) {
		return "", false
	}
	return out, true
}

func ishex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	}
	return c - 'A' + 10
}
