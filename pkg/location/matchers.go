package location

import (
	"net/url"
	"path"
	"strings"

	"github.com/matzehuels/cpanmeta/pkg/search"
)

// Version identifies a location grammar.
type Version int

// Grammar versions, oldest first.
const (
	V1 Version = iota + 1
	V2
	V3
)

// Current is the only version produced by encoding.
const Current = V3

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	case V3:
		return "v3"
	}
	return "unknown"
}

// Legacy reports whether v is older than [Current].
func (v Version) Legacy() bool { return v < Current }

// Fields are the raw values extracted from a location.
//
// For fragment grammars the author segment is whatever preceded the
// delimiter and Query whatever followed it; [Decoded.Params] applies the
// search-type rule that gives those segments meaning.
type Fields struct {
	Type         search.SearchType // only set by V3 locations with a known path
	Author       string
	Query        string
	Mode         search.MatchMode
	OtherAuthors bool
}

// Matcher recognizes one grammar version. Match must be pure.
type Matcher struct {
	Version Version
	Match   func(raw string) (Fields, bool)
}

// Matchers lists every grammar in the order [Decode] tries them.
var Matchers = []Matcher{
	{Version: V3, Match: DecodeV3},
	{Version: V2, Match: DecodeV2},
	{Version: V1, Match: DecodeV1},
}

// Decoded is the result of a successful [Decode].
type Decoded struct {
	Version Version
	Fields  Fields
}

// Decode tries each matcher in priority order. It reports false when raw
// matches no grammar, which callers treat as "no change".
func Decode(raw string) (Decoded, bool) {
	for _, m := range Matchers {
		if f, ok := m.Match(raw); ok {
			return Decoded{Version: m.Version, Fields: f}, true
		}
	}
	return Decoded{}, false
}

// Params converts decoded fields into search parameters for a page of
// search type t. A V3 location naming its own search type overrides t.
//
// Fragment grammars predate per-type author segments: on the authors page
// the text after the delimiter is the author id and the leading segment is
// ignored.
func (d Decoded) Params(t search.SearchType) search.Params {
	f := d.Fields
	if f.Type != "" {
		t = f.Type
	}
	p := search.Params{
		Type:         t,
		Author:       f.Author,
		Query:        f.Query,
		Mode:         f.Mode,
		OtherAuthors: f.OtherAuthors,
	}
	if d.Version.Legacy() && t == search.Authors {
		p.Author, p.Query = f.Query, ""
	}
	return p.Normalize()
}

// DecodeV1 matches "#=query" and "#~query".
func DecodeV1(raw string) (Fields, bool) {
	f, ok := parseFragment(fragmentOf(raw))
	if !ok || f.Author != "" || f.OtherAuthors || f.Mode == search.Infix {
		return Fields{}, false
	}
	return f, true
}

// DecodeV2 matches "#author<=|~|*>query" with an optional "+" before the
// delimiter. Fragments without an author segment are V1 unless they use a
// V2-only feature.
func DecodeV2(raw string) (Fields, bool) {
	f, ok := parseFragment(fragmentOf(raw))
	if !ok {
		return Fields{}, false
	}
	if f.Author == "" && !f.OtherAuthors && f.Mode != search.Infix {
		return Fields{}, false
	}
	return f, true
}

// DecodeV3 matches the query-string form. At least one of the module or
// author parameters must be present; an unknown match_mode falls back to
// prefix.
func DecodeV3(raw string) (Fields, bool) {
	if raw == "" || strings.HasPrefix(raw, "#") {
		return Fields{}, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Fields{}, false
	}
	q := u.Query()
	if !q.Has("module") && !q.Has("author") {
		return Fields{}, false
	}

	f := Fields{
		Author:       q.Get("author"),
		Query:        q.Get("module"),
		Mode:         search.DefaultMatchMode,
		OtherAuthors: q.Get("other_authors") == "1",
	}
	if m, ok := search.ParseMatchMode(q.Get("match_mode")); ok {
		f.Mode = m
	}
	if t, ok := search.ParseSearchType(path.Base(u.Path)); ok {
		f.Type = t
	}
	return f, true
}
