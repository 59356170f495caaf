// Package httputil holds the outbound HTTP plumbing used for logo fetches.
//
// # Overview
//
//   - [Fetch]: bounded GET with status classification and observability hooks
//   - [Retry]: retry with exponential backoff for errors marked [Retryable]
//
// Network errors, 5xx and 429 responses come back wrapped as retryable;
// other non-2xx statuses are final:
//
//	err := httputil.Retry(ctx, 2, 200*time.Millisecond, func() error {
//	    body, err = httputil.Fetch(ctx, client, url, 2<<20)
//	    return err
//	})
//
// Callers own the overall deadline through ctx.
package httputil
