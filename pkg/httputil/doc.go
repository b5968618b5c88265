// Package httputil provides retry helpers for the photo provider clients.
//
// [Retry] re-runs an operation with exponential backoff, but only when the
// failure is wrapped in [RetryableError]. Clients wrap transient failures
// (connection errors, timeouts, 5xx responses) and leave permanent ones
// (4xx, schema mismatches) unwrapped so they surface immediately:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
package httputil
