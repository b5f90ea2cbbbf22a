// Package pkg provides the core libraries for cpanmeta, a search client for
// the CPAN meta API.
//
// # Overview
//
// cpanmeta looks up CPAN packages, module permissions and authors. A search is
// fully described by its parameters, and every search has an addressable
// location so it can be bookmarked, shared and revisited. The pkg directory is
// organized into four areas:
//
//  1. [search] - Parameters, result records and the owned search state
//  2. [location] - Location grammars, legacy decoding and the one-shot redirect
//  3. [navsync] - The controller that keeps state and location in step
//  4. [integrations] - The HTTP client for the /api/v1 and /api/v2 endpoints
//
// # Architecture
//
// The typical data flow of one edit:
//
//	user edit / history navigation
//	         ↓
//	    [navsync] controller (echo guard, sequence numbers)
//	         ↓                        ↓
//	    [history] location       [lookup] dispatcher
//	                                  ↓
//	                        [integrations/cpanmeta] client
//	                                  ↓
//	                             [cache] backend
//
// Responses flow back through [navsync.Controller.Resolve], which applies the
// configured policy before touching the results.
//
// # Quick Start
//
// Run a single search:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/cpanmeta/pkg/cache"
//	    "github.com/matzehuels/cpanmeta/pkg/integrations/cpanmeta"
//	    "github.com/matzehuels/cpanmeta/pkg/search"
//	)
//
//	client := cpanmeta.NewClient(cache.NewNullCache(), time.Hour, cpanmeta.Options{})
//	res, _ := client.Search(ctx, search.Params{
//	    Type:   search.Perms,
//	    Author: "ETHER",
//	    Query:  "Moose",
//	    Mode:   search.Exact,
//	})
//
// Drive searches from a location history:
//
//	h := history.New("/perms#ETHER~Moose")
//	location.NewRedirector(h, logger).Run(search.Perms)
//
//	async := lookup.NewAsync(client, 16, 30*time.Second)
//	ctrl := navsync.New(search.NewState(search.Perms), h, location.QueryCodec{Type: search.Perms}, async)
//	h.Subscribe(func(ch history.Change) { ctrl.LocationChanged(ctx, ch.Location) })
//	ctrl.Seed(ctx)
//
//	for resp := range async.Responses() {
//	    ctrl.Resolve(ctx, resp)
//	}
//
// # Supporting Packages
//
// [cache] - Response caches: file (CLI default), Redis (shared) and null.
//
// [httputil] - Retry with exponential backoff for transient HTTP failures.
//
// [observability] - Hook registries for sync, cache and HTTP events.
//
// [errors] - Coded errors and input validation shared by the CLI and clients.
//
// [buildinfo] - Version metadata and the User-Agent string.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/navsync/...    # Specific package
//	go test -run Example ./...   # Examples only
//
// [search]: https://pkg.go.dev/github.com/matzehuels/cpanmeta/pkg/search
// [location]: https://pkg.go.dev/github.com/matzehuels/cpanmeta/pkg/location
// [navsync]: https://pkg.go.dev/github.com/matzehuels/cpanmeta/pkg/navsync
// [history]: https://pkg.go.dev/github.com/matzehuels/cpanmeta/pkg/history
// [lookup]: https://pkg.go.dev/github.com/matzehuels/cpanmeta/pkg/lookup
// [integrations]: https://pkg.go.dev/github.com/matzehuels/cpanmeta/pkg/integrations
// [integrations/cpanmeta]: https://pkg.go.dev/github.com/matzehuels/cpanmeta/pkg/integrations/cpanmeta
// [cache]: https://pkg.go.dev/github.com/matzehuels/cpanmeta/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/cpanmeta/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/cpanmeta/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/cpanmeta/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/cpanmeta/pkg/buildinfo
package pkg
