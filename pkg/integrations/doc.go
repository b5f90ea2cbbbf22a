// Package integrations provides HTTP clients for the APIs cpanmeta talks to.
//
// # Overview
//
// The [Client] type is the shared HTTP layer: JSON decoding, status mapping,
// retries for transient failures, request ids, and response caching through
// a [cache.Cache] backend. API-specific clients embed it:
//
//   - [cpanmeta]: the CPAN meta search API (v1 and v2)
//
// # Errors
//
// Clients return [ErrNotFound] for 404 responses and [ErrNetwork] for
// transport failures and other unexpected statuses. Transport errors and 5xx
// responses are additionally wrapped with [httputil.RetryableError], so
// [Client.Cached] retries them with exponential backoff.
//
// [cpanmeta]: github.com/matzehuels/cpanmeta/pkg/integrations/cpanmeta
// [cache.Cache]: github.com/matzehuels/cpanmeta/pkg/cache.Cache
// [httputil.RetryableError]: github.com/matzehuels/cpanmeta/pkg/httputil.RetryableError
package integrations
