// Package gallery implements the multi-source package-metadata resolution
// core: the source adapter protocol, the capability taxonomy, the adapter
// registry, workspace project detection, per-ecosystem source
// configuration, and the selection/fallback engine.
//
// # Architecture
//
// Each package registry backend is an [Adapter]. Adapters declare static
// metadata (source type, display name, owning ecosystem, sort and filter
// options) and a static capability set; optional operations on adapters
// that do not declare the matching capability fail with
// [CapabilityNotSupportedError], never with a runtime probe.
//
// The [Registry] maps source types to adapter instances. The
// [ConfigManager] holds the per-ecosystem source order (primary plus
// fallbacks), which is exactly the retry order used by
// [ExecuteWithFallback]. The [Detector] infers which ecosystems a
// workspace belongs to from marker files. The [Selector] ties the three
// together: it picks an active adapter for read-like operations
// ([Selector.SelectSource]) and drives try-until-success fallback chains
// for fetch operations ([ExecuteWithFallback]).
//
// Concrete adapters live in pkg/sources; this package knows none of them.
package gallery
