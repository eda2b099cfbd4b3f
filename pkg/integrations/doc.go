// Package integrations provides HTTP clients for upstream registry APIs.
//
// Each subpackage wraps one external API behind a typed client:
//   - npm: registry.npmjs.org package documents and search, api.npmjs.org downloads
//   - npms: api.npms.io search, suggestions, and analyzed package scores
//   - sonatype: search.maven.org artifact search and version listings
//   - nuget: NuGet V3 search, registration, and flat-container endpoints
//   - goproxy: proxy.golang.org module metadata and version lists
//   - osv: api.osv.dev vulnerability queries (shared across ecosystems)
//   - bundlephobia: bundlephobia.com bundle size lookups
//   - depsdev: api.deps.dev dependents and requirements
//
// All clients share the [Client] base which handles response caching,
// retry with backoff, and common headers. Clients return API-specific raw
// response structs; mapping to the unified data model happens in the
// source adapters' transformers, not here.
package integrations
