package location

import (
	"net/url"
	"strings"

	"github.com/matzehuels/cpanmeta/pkg/search"
)

// Codec converts between search parameters and a location string.
type Codec interface {
	// Encode returns the location for p.
	Encode(p search.Params) string
	// Decode returns the parameters in raw, or false if raw carries none.
	Decode(raw string) (search.Params, bool)
}

// QueryCodec is the current codec: "/<type>?author=&module=&match_mode=".
//
// The author parameter is always emitted, even when empty, so a current
// location is never mistaken for an older grammar that omitted it.
type QueryCodec struct {
	// Type is used when a decoded location has no recognizable path.
	Type search.SearchType
}

// Encode renders p in the V3 grammar. It is total for every match mode.
func (c QueryCodec) Encode(p search.Params) string {
	p = p.Normalize()
	var b strings.Builder
	b.WriteString("/")
	b.WriteString(string(p.Type))
	b.WriteString("?author=")
	b.WriteString(url.QueryEscape(p.Author))
	b.WriteString("&module=")
	b.WriteString(url.QueryEscape(p.Query))
	b.WriteString("&match_mode=")
	b.WriteString(string(p.Mode))
	if p.OtherAuthors {
		b.WriteString("&other_authors=1")
	}
	return b.String()
}

// Decode accepts only V3 locations; legacy grammars reach the current page
// through [Redirector] instead.
func (c QueryCodec) Decode(raw string) (search.Params, bool) {
	f, ok := DecodeV3(raw)
	if !ok {
		return search.Params{}, false
	}
	return Decoded{Version: V3, Fields: f}.Params(c.Type), true
}

// FragmentCodec encodes the V2 fragment grammar "#<author><=|~><query>".
//
// The fragment grammar has no stable infix form, so infix parameters are
// encoded with the prefix delimiter and come back as prefix searches.
type FragmentCodec struct {
	Type search.SearchType
}

// Encode renders p as a fragment. On the authors page the author id is the
// text after the delimiter.
func (c FragmentCodec) Encode(p search.Params) string {
	delim := "~"
	if p.Mode == search.Exact {
		delim = "="
	}
	lead, text := p.Author, p.Query
	if c.pageType(p) == search.Authors {
		lead, text = "", p.Author
	}
	if p.OtherAuthors {
		lead += string(otherAuthorsFlag)
	}
	return "#" + lead + delim + text
}

// Decode accepts V2 and V1 fragments.
func (c FragmentCodec) Decode(raw string) (search.Params, bool) {
	for _, m := range Matchers {
		if !m.Version.Legacy() {
			continue
		}
		if f, ok := m.Match(raw); ok {
			return Decoded{Version: m.Version, Fields: f}.Params(c.defaultType()), true
		}
	}
	return search.Params{}, false
}

func (c FragmentCodec) pageType(p search.Params) search.SearchType {
	if p.Type != "" {
		return p.Type
	}
	return c.defaultType()
}

func (c FragmentCodec) defaultType() search.SearchType {
	if c.Type == "" {
		return search.Packages
	}
	return c.Type
}

var (
	_ Codec = QueryCodec{}
	_ Codec = FragmentCodec{}
)
