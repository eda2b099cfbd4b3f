package gallery

import "time"

// SourceType identifies a concrete registry backend.
type SourceType string

// The source types this system ships adapters for.
const (
	SourceNPMRegistry SourceType = "npm-registry"
	SourceNPMS        SourceType = "npms-io"
	SourceSonatype    SourceType = "sonatype"
	SourceNuGet       SourceType = "nuget"
	SourcePkgGoDev    SourceType = "pkg-go-dev"
)

// ProjectType identifies an ecosystem a workspace may belong to. A
// workspace may contain several project types at once; the detector
// reports all of them plus a single primary.
type ProjectType string

// Known project types.
const (
	ProjectNPM     ProjectType = "npm"
	ProjectMaven   ProjectType = "maven"
	ProjectDotnet  ProjectType = "dotnet"
	ProjectGo      ProjectType = "go"
	ProjectUnknown ProjectType = "unknown"
)

// SearchOptions parameterizes one search call.
type SearchOptions struct {
	Query     string
	ExactName string // when set, an exact-name match is surfaced first
	From      int
	Size      int
	SortBy    string
	Filters   map[string]string
}

// PackageSummary is one entry of a search result.
type PackageSummary struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description,omitempty"`
	Keywords    []string          `json:"keywords,omitempty"`
	Author      string            `json:"author,omitempty"`
	Date        time.Time         `json:"date,omitzero"`
	Links       map[string]string `json:"links,omitempty"`
	Score       float64           `json:"score,omitempty"`
	ExactMatch  bool              `json:"exact_match,omitempty"`
}

// SearchResult is the unified search response.
type SearchResult struct {
	Packages []PackageSummary `json:"packages"`
	Total    int              `json:"total"`
	HasMore  bool             `json:"has_more"`
}

// PackageInfo is the unified basic package record.
type PackageInfo struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	Description string    `json:"description,omitempty"`
	License     string    `json:"license,omitempty"`
	Author      string    `json:"author,omitempty"`
	HomePage    string    `json:"homepage,omitempty"`
	Repository  string    `json:"repository,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	Downloads   int64     `json:"downloads,omitempty"`
	PublishedAt time.Time `json:"published_at,omitzero"`
}

// Maintainer is one package maintainer.
type Maintainer struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// PackageDetails is the superset of PackageInfo used by detail views.
type PackageDetails struct {
	PackageInfo
	Readme          string            `json:"readme,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"dev_dependencies,omitempty"`
	Maintainers     []Maintainer      `json:"maintainers,omitempty"`
	DistTags        map[string]string `json:"dist_tags,omitempty"`
	Deprecated      string            `json:"deprecated,omitempty"`
	Security        *SecurityInfo     `json:"security,omitempty"`
}

// VersionInfo is one released version of a package.
type VersionInfo struct {
	Version     string    `json:"version"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	Deprecated  string    `json:"deprecated,omitempty"`
	Downloads   int64     `json:"downloads,omitempty"`
}

// PackageRequest identifies one package version for bulk lookups.
type PackageRequest struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// SecurityInfo is the unified vulnerability report for a package.
type SecurityInfo struct {
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// Vulnerability is one known vulnerability.
type Vulnerability struct {
	ID       string   `json:"id"`
	Summary  string   `json:"summary,omitempty"`
	Severity string   `json:"severity,omitempty"`
	URL      string   `json:"url,omitempty"`
	Aliases  []string `json:"aliases,omitempty"`
}

// BundleSizeInfo is the unified bundle size record.
type BundleSizeInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	Size            int    `json:"size"` // minified bytes
	Gzip            int    `json:"gzip"` // minified+gzipped bytes
	DependencyCount int    `json:"dependency_count"`
}

// DependentsInfo counts packages depending on a package version.
type DependentsInfo struct {
	Total    int `json:"total"`
	Direct   int `json:"direct"`
	Indirect int `json:"indirect"`
}

// Requirement is one declared dependency requirement of a package version.
type Requirement struct {
	Name string `json:"name"`
	Spec string `json:"spec"`
}

// Score is a composite package quality score in [0, 1] per facet.
type Score struct {
	Final       float64 `json:"final"`
	Quality     float64 `json:"quality"`
	Popularity  float64 `json:"popularity"`
	Maintenance float64 `json:"maintenance"`
}

// Snippet formats accepted by Adapter.CopySnippet.
const (
	SnippetMaven            = "maven"  // pom.xml <dependency> block
	SnippetGradle           = "gradle" // Gradle dependency line
	SnippetPackageReference = "packagereference"
	SnippetPaket            = "paket"
)
