package search

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SearchType selects which lookup kind is active.
type SearchType string

// Search types, named after the page paths of the web client.
const (
	Packages SearchType = "packages"
	Perms    SearchType = "perms"
	Authors  SearchType = "authors"
)

// SearchTypes lists every search type in display order.
var SearchTypes = []SearchType{Packages, Perms, Authors}

// ParseSearchType returns the search type named by s.
// Matching is case-insensitive and ignores surrounding whitespace and slashes,
// so "/packages" and "Packages" both parse.
func ParseSearchType(s string) (SearchType, bool) {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), "/"))
	for _, t := range SearchTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// String returns the search type name.
func (t SearchType) String() string { return string(t) }

// MatchMode controls how query and author text is matched.
type MatchMode string

// Match modes.
const (
	Exact  MatchMode = "exact"
	Prefix MatchMode = "prefix"
	Infix  MatchMode = "infix"
)

// DefaultMatchMode is used when a location carries no usable mode.
const DefaultMatchMode = Prefix

// ParseMatchMode returns the match mode named by s (case-insensitive).
func ParseMatchMode(s string) (MatchMode, bool) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case Exact:
		return Exact, true
	case Prefix:
		return Prefix, true
	case Infix:
		return Infix, true
	}
	return "", false
}

// String returns the match mode name.
func (m MatchMode) String() string { return string(m) }

// Params is the in-memory form of a search.
//
// The zero value is a valid, empty packages search in prefix mode once
// normalized with [Params.Normalize]. Params is a comparable value type; two
// Params are the same search exactly when they are ==.
type Params struct {
	Type         SearchType
	Query        string // module or package text
	Author       string // author id text
	Mode         MatchMode
	OtherAuthors bool // historical "+" modifier: include other authors
}

// Normalize fills defaults for an unset search type and match mode.
func (p Params) Normalize() Params {
	if p.Type == "" {
		p.Type = Packages
	}
	if p.Mode == "" {
		p.Mode = DefaultMatchMode
	}
	return p
}

// Empty reports whether neither query nor author text is set.
func (p Params) Empty() bool {
	return p.Query == "" && p.Author == ""
}

// Searchable reports whether p carries enough input to issue a lookup.
//
// The relevant text depends on the search type: module text for packages,
// author text for authors, and either for perms. Empty text is never
// searchable and a single character is only searchable in exact mode.
func (p Params) Searchable() bool {
	switch p.Type {
	case Authors:
		return longEnough(p.Author, p.Mode)
	case Perms:
		// Author lookups are always exact on the server.
		return longEnough(p.Query, p.Mode) || longEnough(p.Author, Exact)
	default:
		return longEnough(p.Query, p.Mode)
	}
}

func longEnough(s string, mode MatchMode) bool {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return false
	}
	return mode == Exact || n > 1
}

// Text returns the primary search text for the search type.
func (p Params) Text() string {
	if p.Type == Authors {
		return p.Author
	}
	return p.Query
}

// String formats p for logs.
func (p Params) String() string {
	s := fmt.Sprintf("%s author=%q module=%q mode=%s", p.Type, p.Author, p.Query, p.Mode)
	if p.OtherAuthors {
		s += " +others"
	}
	return s
}
