// Package cpanmeta provides a client for the CPAN meta search API.
//
// # Overview
//
// The API answers four kinds of lookups over the CPAN index: packages by
// module name, permissions by module, permissions by author, and author
// profiles. Two API versions are supported:
//
//   - v1 returns a bare JSON array of records
//   - v2 wraps the records in {"data": [...], "last_updated": <epoch>}
//     and adds a combined permissions endpoint filtering by author and module
//
// The client converts both shapes into [search.Results]; Freshness is only
// set for v2.
//
// # Usage
//
//	client := cpanmeta.NewClient(cache.NewNullCache(), time.Hour, cpanmeta.Options{APIVersion: 2})
//	res, err := client.Search(ctx, search.Params{Type: search.Packages, Query: "Moose", Mode: search.Prefix})
//
// # Matching
//
// Exact searches send as_prefix=0 and prefix searches as_prefix=1. The v1
// API has no infix matching, so infix searches are sent as prefix searches;
// v2 additionally receives match_mode=infix.
//
// Identical requests issued concurrently are coalesced into one HTTP call.
//
// [search.Results]: github.com/matzehuels/cpanmeta/pkg/search.Results
package cpanmeta
