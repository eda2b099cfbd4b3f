// Package pkg provides the core libraries for the pkggallery multi-source
// package browser.
//
// # Overview
//
// pkggallery answers package metadata queries (search, info, versions,
// vulnerabilities, install commands) against several registries through a
// single interface. The pkg directory is organized into four main areas:
//
//  1. [gallery] - Domain logic (adapter contract, capabilities, source
//     selection, project detection)
//  2. [sources] - Registry adapters (npm, npms.io, Maven Central, NuGet,
//     Go module proxy)
//  3. [integrations] - External API clients (registry.npmjs.org, OSV,
//     bundlephobia, deps.dev, search.maven.org, NuGet v3, GOPROXY)
//  4. [services] - Composition (config, cache backend, service facades)
//
// # Architecture
//
// The typical flow of one query:
//
//	Workspace markers (package.json, pom.xml, ...)
//	         ↓
//	gallery.Detector → project type → gallery.ConfigManager → source chain
//	         ↓
//	gallery.Selector.ExecuteWithFallback → sources adapter → integrations client
//	         ↓
//	Cached HTTP response (pkg/cache) → unified gallery types
//
// Supporting packages: [cache] for TTL response caching (file, Redis,
// MongoDB, or disabled), [errors] for the coded error taxonomy,
// [observability] for pluggable progress hooks, and [buildinfo] for
// ldflags version stamping.
package pkg
