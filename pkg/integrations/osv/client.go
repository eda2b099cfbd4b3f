// Package osv provides access to the OSV vulnerability database API
// (api.osv.dev). One OSV client is shared by every source adapter whose
// ecosystem OSV covers (npm, Maven, NuGet, Go).
package osv

import (
	"context"
	"time"

	"github.com/pkggallery/pkggallery/pkg/cache"
	"github.com/pkggallery/pkggallery/pkg/integrations"
)

// Ecosystem names as OSV spells them.
const (
	EcosystemNPM   = "npm"
	EcosystemMaven = "Maven"
	EcosystemNuGet = "NuGet"
	EcosystemGo    = "Go"
)

// Client provides access to the OSV v1 API.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates an OSV client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "osv:", cacheTTL, nil),
		baseURL: "https://api.osv.dev/v1",
	}
}

// Query looks up vulnerabilities affecting one package. Version may be
// empty to match any version.
func (c *Client) Query(ctx context.Context, ecosystem, name, version string, refresh bool) ([]Vulnerability, error) {
	key := "query:" + ecosystem + ":" + name + "@" + version

	var resp queryResponse
	err := c.Cached(ctx, key, refresh, &resp, func() error {
		return c.PostJSON(ctx, c.baseURL+"/query", newQuery(ecosystem, name, version), &resp)
	})
	if err != nil {
		return nil, err
	}
	return resp.Vulns, nil
}

// QueryBatch looks up vulnerabilities for several packages in one request.
// The result slice is index-aligned with pkgs; batch results carry only
// vulnerability IDs per the OSV API contract.
func (c *Client) QueryBatch(ctx context.Context, ecosystem string, pkgs []PackageVersion) ([][]VulnerabilityRef, error) {
	queries := make([]query, len(pkgs))
	for i, p := range pkgs {
		queries[i] = newQuery(ecosystem, p.Name, p.Version)
	}

	var resp batchResponse
	err := integrations.RetryWithBackoff(ctx, func() error {
		return c.PostJSON(ctx, c.baseURL+"/querybatch", batchRequest{Queries: queries}, &resp)
	})
	if err != nil {
		return nil, err
	}

	out := make([][]VulnerabilityRef, len(pkgs))
	for i, r := range resp.Results {
		if i < len(out) {
			out[i] = r.Vulns
		}
	}
	return out, nil
}

// PackageVersion identifies one package version for batch queries.
type PackageVersion struct {
	Name    string
	Version string
}

type query struct {
	Version string       `json:"version,omitempty"`
	Package queryPackage `json:"package"`
}

type queryPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

func newQuery(ecosystem, name, version string) query {
	return query{
		Version: version,
		Package: queryPackage{Name: name, Ecosystem: ecosystem},
	}
}

type batchRequest struct {
	Queries []query `json:"queries"`
}

type queryResponse struct {
	Vulns []Vulnerability `json:"vulns"`
}

type batchResponse struct {
	Results []struct {
		Vulns []VulnerabilityRef `json:"vulns"`
	} `json:"results"`
}

// Vulnerability is a full OSV vulnerability record.
type Vulnerability struct {
	ID        string     `json:"id"`
	Summary   string     `json:"summary"`
	Details   string     `json:"details"`
	Aliases   []string   `json:"aliases"`
	Modified  string     `json:"modified"`
	Published string     `json:"published"`
	Severity  []Severity `json:"severity"`
	Affected  []Affected `json:"affected"`
	References []Reference `json:"references"`
}

// VulnerabilityRef is the ID-only record returned by querybatch.
type VulnerabilityRef struct {
	ID       string `json:"id"`
	Modified string `json:"modified"`
}

// Severity is one severity score entry (typically CVSS).
type Severity struct {
	Type  string `json:"type"`
	Score string `json:"score"`
}

// Affected describes one affected package and its version ranges.
type Affected struct {
	Package struct {
		Name      string `json:"name"`
		Ecosystem string `json:"ecosystem"`
	} `json:"package"`
	Ranges []struct {
		Type   string `json:"type"`
		Events []map[string]string `json:"events"`
	} `json:"ranges"`
	Versions []string `json:"versions"`
}

// Reference is one advisory link.
type Reference struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}
