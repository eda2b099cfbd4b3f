// Package nuget provides access to the NuGet V3 API: the azuresearch query
// endpoint, registration index, and flat-container version list.
package nuget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pkggallery/pkggallery/pkg/cache"
	"github.com/pkggallery/pkggallery/pkg/integrations"
)

// Client provides access to the NuGet V3 API endpoints.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	searchURL       string
	registrationURL string
	flatURL         string
}

// NewClient creates a NuGet client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:          integrations.NewClient(backend, "nuget:", cacheTTL, nil),
		searchURL:       "https://azuresearch-usnc.nuget.org/query",
		registrationURL: "https://api.nuget.org/v3/registration5-gz-semver2",
		flatURL:         "https://api.nuget.org/v3-flatcontainer",
	}
}

// Search queries the NuGet search service.
func (c *Client) Search(ctx context.Context, query string, skip, take int) (*SearchResponse, error) {
	url := fmt.Sprintf("%s?q=%s&skip=%d&take=%d&semVerLevel=2.0.0",
		c.searchURL, integrations.URLEncode(query), skip, take)

	var resp SearchResponse
	if err := c.Get(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchPackage retrieves the search document for an exact package ID. The
// search service with packageid: qualifier returns richer metadata than the
// registration index in a single round trip.
//
// Returns [integrations.ErrNotFound] if the package does not exist.
func (c *Client) FetchPackage(ctx context.Context, id string, refresh bool) (*SearchHit, error) {
	id = integrations.NormalizePkgName(id)

	var hit SearchHit
	err := c.Cached(ctx, id, refresh, &hit, func() error {
		url := fmt.Sprintf("%s?q=packageid:%s&take=1&semVerLevel=2.0.0",
			c.searchURL, integrations.URLEncode(id))

		var resp SearchResponse
		if err := c.Get(ctx, url, &resp); err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("%w: nuget package %s", integrations.ErrNotFound, id)
		}
		hit = resp.Data[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &hit, nil
}

// FetchRegistration retrieves the registration index for a package. The
// index carries per-version metadata including publish dates, dependency
// groups, and deprecation notices.
func (c *Client) FetchRegistration(ctx context.Context, id string, refresh bool) (*RegistrationIndex, error) {
	id = integrations.NormalizePkgName(id)

	var idx RegistrationIndex
	err := c.Cached(ctx, "registration:"+id, refresh, &idx, func() error {
		url := fmt.Sprintf("%s/%s/index.json", c.registrationURL, id)
		if err := c.Get(ctx, url, &idx); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: nuget package %s", err, id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &idx, nil
}

// FetchVersions retrieves the flat-container version list (lowercase
// version strings, oldest first).
func (c *Client) FetchVersions(ctx context.Context, id string, refresh bool) ([]string, error) {
	id = integrations.NormalizePkgName(id)

	var resp flatVersions
	err := c.Cached(ctx, "versions:"+id, refresh, &resp, func() error {
		url := fmt.Sprintf("%s/%s/index.json", c.flatURL, id)
		if err := c.Get(ctx, url, &resp); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: nuget package %s", err, id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp.Versions, nil
}

// SearchResponse is the raw response from the NuGet search service.
type SearchResponse struct {
	TotalHits int         `json:"totalHits"`
	Data      []SearchHit `json:"data"`
}

// SearchHit is one package document from the search service.
type SearchHit struct {
	ID             string        `json:"id"`
	Version        string        `json:"version"`
	Description    string        `json:"description"`
	Summary        string        `json:"summary"`
	Title          string        `json:"title"`
	LicenseURL     string        `json:"licenseUrl"`
	ProjectURL     string        `json:"projectUrl"`
	Tags           []string      `json:"tags"`
	Authors        []string      `json:"authors"`
	Owners         []string      `json:"owners"`
	TotalDownloads int64         `json:"totalDownloads"`
	Verified       bool          `json:"verified"`
	Versions       []HitVersion  `json:"versions"`
	PackageTypes   []PackageType `json:"packageTypes"`
}

// HitVersion is one version entry inside a search hit.
type HitVersion struct {
	Version   string `json:"version"`
	Downloads int64  `json:"downloads"`
}

// PackageType identifies a NuGet package type (Dependency, DotnetTool, ...).
type PackageType struct {
	Name string `json:"name"`
}

// RegistrationIndex is the raw registration index document.
type RegistrationIndex struct {
	Count int                 `json:"count"`
	Items []RegistrationPage  `json:"items"`
}

// RegistrationPage is one page of registration leaves. Pages beyond the
// inline window carry only a URL; those are not followed here because the
// inline pages cover the recent versions the gallery displays.
type RegistrationPage struct {
	Count int                `json:"count"`
	Items []RegistrationLeaf `json:"items"`
}

// RegistrationLeaf wraps the catalog entry for one version.
type RegistrationLeaf struct {
	CatalogEntry CatalogEntry `json:"catalogEntry"`
}

// CatalogEntry is the per-version metadata document.
type CatalogEntry struct {
	ID               string            `json:"id"`
	Version          string            `json:"version"`
	Description      string            `json:"description"`
	Authors          string            `json:"authors"`
	LicenseExpression string           `json:"licenseExpression"`
	ProjectURL       string            `json:"projectUrl"`
	Published        string            `json:"published"`
	Deprecation      *Deprecation      `json:"deprecation"`
	DependencyGroups []DependencyGroup `json:"dependencyGroups"`
}

// Deprecation is a registration deprecation notice.
type Deprecation struct {
	Message string   `json:"message"`
	Reasons []string `json:"reasons"`
}

// DependencyGroup is the per-framework dependency list of a version.
type DependencyGroup struct {
	TargetFramework string       `json:"targetFramework"`
	Dependencies    []Dependency `json:"dependencies"`
}

// Dependency is one package reference inside a dependency group.
type Dependency struct {
	ID    string `json:"id"`
	Range string `json:"range"`
}

type flatVersions struct {
	Versions []string `json:"versions"`
}
