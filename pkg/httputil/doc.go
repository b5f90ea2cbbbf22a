// Package httputil provides retry helpers for HTTP API clients.
//
// # Retry
//
// [Retry] runs an operation with exponential backoff. Only failures wrapped
// with [Retryable] are retried; everything else is returned at once:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := http.Get(url)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// Clients mark transport errors and 5xx responses as retryable; 4xx
// responses fail immediately.
//
// # Configuration
//
// [RetryWithBackoff] uses the defaults: 3 attempts, 1 second initial delay
// doubling after each failure.
package httputil
