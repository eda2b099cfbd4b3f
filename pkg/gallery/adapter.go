package gallery

import (
	"context"
	"slices"
	"strings"
)

// Adapter is the pluggable unit representing one registry backend.
//
// The first block of methods is static metadata; the second is the core
// contract every adapter implements; the rest are optional operations
// guarded by capability declaration. Optional methods on adapters that do
// not declare the matching capability return
// [CapabilityNotSupportedError] (the [Base] embedding provides exactly
// that default).
//
// Adapters are constructed once at container start-up with their upstream
// clients injected and are never mutated afterwards; all methods must be
// safe for concurrent use.
type Adapter interface {
	Source() SourceType
	DisplayName() string
	Project() ProjectType
	SortOptions() []string
	Filters() []string
	Capabilities() []Capability

	// Search queries the backend. An empty or whitespace-only query
	// returns an empty result without calling upstream. When
	// opts.ExactName is set, an exact case-insensitive name match is
	// surfaced first and flagged, fetched separately if necessary.
	Search(ctx context.Context, opts SearchOptions) (*SearchResult, error)

	// PackageInfo retrieves the basic record for a package. Fails with the
	// backend's not-found condition if the name does not exist upstream.
	PackageInfo(ctx context.Context, name string) (*PackageInfo, error)

	// PackageDetails retrieves the extended record. Version may be empty
	// for the latest version.
	PackageDetails(ctx context.Context, name, version string) (*PackageDetails, error)

	// Versions lists released versions, sorted by descending publish date
	// where publish dates are known, stable order otherwise.
	Versions(ctx context.Context, name string) ([]VersionInfo, error)

	// Optional: installation (generate a shell command string, never run it).
	InstallCommand(name, version string) (string, error)
	UpdateCommand(name string) (string, error)
	RemoveCommand(name string) (string, error)

	// Optional: copy (manifest snippet for ecosystems without a CLI installer).
	CopySnippet(name, version, format string) (string, error)

	// Optional: suggestions (autocomplete).
	Suggestions(ctx context.Context, query string, size int) ([]PackageSummary, error)

	// Optional: security.
	SecurityInfo(ctx context.Context, name, version string) (*SecurityInfo, error)
	SecurityInfoBulk(ctx context.Context, pkgs []PackageRequest) (map[string]*SecurityInfo, error)

	// Optional: bundle-size, dependents, requirements, download-stats,
	// quality-score.
	BundleSize(ctx context.Context, name, version string) (*BundleSizeInfo, error)
	Dependents(ctx context.Context, name, version string) (*DependentsInfo, error)
	Requirements(ctx context.Context, name, version string) ([]Requirement, error)
	DownloadStats(ctx context.Context, name string) (int64, error)
	QualityScore(ctx context.Context, name string) (*Score, error)
}

// Metadata is the static description of one adapter, supplied at
// construction.
type Metadata struct {
	Source       SourceType
	DisplayName  string
	Project      ProjectType
	SortOptions  []string
	Filters      []string
	Capabilities []Capability // optional capabilities; core ones are implicit
}

// Base provides metadata accessors and the default bodies for optional
// operations. Concrete adapters embed Base and override the optional
// methods backing the capabilities they declare.
type Base struct {
	meta Metadata
}

// NewBase creates the embeddable adapter base. Core capabilities are added
// to the declared set if absent, so Capabilities() always lists the full
// contract.
func NewBase(meta Metadata) Base {
	caps := slices.Clone(meta.Capabilities)
	for _, c := range CoreCapabilities {
		if !slices.Contains(caps, c) {
			caps = append(caps, c)
		}
	}
	meta.Capabilities = caps
	return Base{meta: meta}
}

func (b *Base) Source() SourceType          { return b.meta.Source }
func (b *Base) DisplayName() string         { return b.meta.DisplayName }
func (b *Base) Project() ProjectType        { return b.meta.Project }
func (b *Base) SortOptions() []string       { return slices.Clone(b.meta.SortOptions) }
func (b *Base) Filters() []string           { return slices.Clone(b.meta.Filters) }
func (b *Base) Capabilities() []Capability  { return slices.Clone(b.meta.Capabilities) }

func (b *Base) notSupported(c Capability) error {
	return &CapabilityNotSupportedError{Capability: c, Source: b.meta.Source}
}

// Default bodies for optional operations.

func (b *Base) InstallCommand(name, version string) (string, error) {
	return "", b.notSupported(CapInstallation)
}

func (b *Base) UpdateCommand(name string) (string, error) {
	return "", b.notSupported(CapInstallation)
}

func (b *Base) RemoveCommand(name string) (string, error) {
	return "", b.notSupported(CapInstallation)
}

func (b *Base) CopySnippet(name, version, format string) (string, error) {
	return "", b.notSupported(CapCopy)
}

func (b *Base) Suggestions(ctx context.Context, query string, size int) ([]PackageSummary, error) {
	return nil, b.notSupported(CapSuggestions)
}

func (b *Base) SecurityInfo(ctx context.Context, name, version string) (*SecurityInfo, error) {
	return nil, b.notSupported(CapSecurity)
}

func (b *Base) SecurityInfoBulk(ctx context.Context, pkgs []PackageRequest) (map[string]*SecurityInfo, error) {
	return nil, b.notSupported(CapSecurity)
}

func (b *Base) BundleSize(ctx context.Context, name, version string) (*BundleSizeInfo, error) {
	return nil, b.notSupported(CapBundleSize)
}

func (b *Base) Dependents(ctx context.Context, name, version string) (*DependentsInfo, error) {
	return nil, b.notSupported(CapDependents)
}

func (b *Base) Requirements(ctx context.Context, name, version string) ([]Requirement, error) {
	return nil, b.notSupported(CapRequirements)
}

func (b *Base) DownloadStats(ctx context.Context, name string) (int64, error) {
	return 0, b.notSupported(CapDownloadStats)
}

func (b *Base) QualityScore(ctx context.Context, name string) (*Score, error) {
	return nil, b.notSupported(CapQualityScore)
}

// EmptyQuery reports whether a search query is empty or whitespace-only.
// Adapters treat such queries as "no results" rather than querying
// upstream.
func EmptyQuery(q string) bool {
	return strings.TrimSpace(q) == ""
}

// EnsureExactMatch surfaces an exact case-insensitive name match first in
// res and flags it. If the name is absent from the results, it is fetched
// via the adapter's PackageInfo and prepended; lookup failures leave res
// unchanged (an absent exact match is not an error).
func EnsureExactMatch(ctx context.Context, a Adapter, res *SearchResult, exactName string) {
	if res == nil || exactName == "" {
		return
	}
	for i := range res.Packages {
		if strings.EqualFold(res.Packages[i].Name, exactName) {
			res.Packages[i].ExactMatch = true
			if i > 0 {
				hit := res.Packages[i]
				res.Packages = append(res.Packages[:i], res.Packages[i+1:]...)
				res.Packages = append([]PackageSummary{hit}, res.Packages...)
			}
			return
		}
	}

	info, err := a.PackageInfo(ctx, exactName)
	if err != nil {
		return
	}
	hit := PackageSummary{
		Name:        info.Name,
		Version:     info.Version,
		Description: info.Description,
		Keywords:    info.Keywords,
		Author:      info.Author,
		Date:        info.PublishedAt,
		ExactMatch:  true,
	}
	res.Packages = append([]PackageSummary{hit}, res.Packages...)
	res.Total++
}
