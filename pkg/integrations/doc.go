// Package integrations provides HTTP clients for photo search providers.
//
// # Overview
//
// Each provider lives in its own subpackage:
//
//   - [unsplash]: the Unsplash search API
//
// # Client Pattern
//
// Provider clients embed [Client], which handles:
//   - Response caching through [cache.Cache] with a per-client key prefix and TTL
//   - Retry with exponential backoff for transient failures
//   - Default headers (credentials, API version)
//   - Status classification into [ErrNotFound], [ErrNetwork] and coded errors
//     for 401/403 and 429 responses
//
//	c := unsplash.NewClient(backend, unsplash.Config{AccessKey: key})
//	photos, err := c.Search(ctx, "japanese landscape", false) // false = use cache
//
// [unsplash]: github.com/matzehuels/collage/pkg/integrations/unsplash
// [cache.Cache]: github.com/matzehuels/collage/pkg/cache.Cache
package integrations
