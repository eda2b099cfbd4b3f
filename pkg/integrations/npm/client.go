// Package npm provides access to the npm registry API (registry.npmjs.org)
// and the npm downloads API (api.npmjs.org).
package npm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pkggallery/pkggallery/pkg/cache"
	"github.com/pkggallery/pkggallery/pkg/integrations"
)

// Client provides access to the npm registry API.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL      string
	downloadsURL string
}

// NewClient creates an npm registry client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:       integrations.NewClient(backend, "npm:", cacheTTL, nil),
		baseURL:      "https://registry.npmjs.org",
		downloadsURL: "https://api.npmjs.org",
	}
}

// FetchPackage retrieves the full package document for a package.
// The document includes all versions, dist-tags, publish times, and the
// readme of the latest version.
//
// Returns [integrations.ErrNotFound] if the package does not exist.
func (c *Client) FetchPackage(ctx context.Context, name string, refresh bool) (*PackageDocument, error) {
	name = strings.TrimSpace(name)

	var doc PackageDocument
	err := c.Cached(ctx, name, refresh, &doc, func() error {
		if err := c.Get(ctx, c.baseURL+"/"+escapeName(name), &doc); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: npm package %s", err, name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Search queries the npm search endpoint (/-/v1/search).
//
// The sortBy value maps to npm's score weighting parameters: "popularity",
// "quality", and "maintenance" each boost the corresponding score facet;
// any other value uses the default relevance ranking.
func (c *Client) Search(ctx context.Context, query string, from, size int, sortBy string) (*SearchResponse, error) {
	url := fmt.Sprintf("%s/-/v1/search?text=%s&from=%d&size=%d%s",
		c.baseURL, integrations.URLEncode(query), from, size, sortParams(sortBy))

	var resp SearchResponse
	if err := c.Get(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchDownloads retrieves the last-month download count for a package.
func (c *Client) FetchDownloads(ctx context.Context, name string, refresh bool) (*DownloadsResponse, error) {
	name = strings.TrimSpace(name)

	var resp DownloadsResponse
	err := c.Cached(ctx, "downloads:"+name, refresh, &resp, func() error {
		url := fmt.Sprintf("%s/downloads/point/last-month/%s", c.downloadsURL, escapeName(name))
		return c.Get(ctx, url, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func sortParams(sortBy string) string {
	switch sortBy {
	case "popularity":
		return "&popularity=1.0&quality=0.0&maintenance=0.0"
	case "quality":
		return "&popularity=0.0&quality=1.0&maintenance=0.0"
	case "maintenance":
		return "&popularity=0.0&quality=0.0&maintenance=1.0"
	default:
		return ""
	}
}

// escapeName encodes the slash in scoped package names (@scope/name) as
// required by the registry URL scheme.
func escapeName(name string) string {
	if strings.HasPrefix(name, "@") {
		return strings.Replace(name, "/", "%2F", 1)
	}
	return name
}

// PackageDocument is the raw package document from registry.npmjs.org.
type PackageDocument struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description"`
	DistTags    map[string]string         `json:"dist-tags"`
	Versions    map[string]VersionDetails `json:"versions"`
	Time        map[string]string         `json:"time"`
	Maintainers []Person                  `json:"maintainers"`
	Keywords    []string                  `json:"keywords"`
	License     any                       `json:"license"`
	Author      any                       `json:"author"`
	Repository  any                       `json:"repository"`
	HomePage    string                    `json:"homepage"`
	Readme      string                    `json:"readme"`
}

// VersionDetails is one entry of the versions map in a package document.
type VersionDetails struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Description     string            `json:"description"`
	License         any               `json:"license"`
	Author          any               `json:"author"`
	Repository      any               `json:"repository"`
	HomePage        string            `json:"homepage"`
	Keywords        []string          `json:"keywords"`
	Deprecated      string            `json:"deprecated"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// Person is an npm author/maintainer entry.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SearchResponse is the raw response from /-/v1/search.
type SearchResponse struct {
	Objects []SearchObject `json:"objects"`
	Total   int            `json:"total"`
}

// SearchObject is one search hit with its score breakdown.
type SearchObject struct {
	Package SearchPackage `json:"package"`
	Score   SearchScore   `json:"score"`
}

// SearchPackage is the package summary inside a search hit.
type SearchPackage struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Keywords    []string          `json:"keywords"`
	Date        string            `json:"date"`
	Links       map[string]string `json:"links"`
	Publisher   Person            `json:"publisher"`
}

// SearchScore is npm's composite ranking score.
type SearchScore struct {
	Final  float64 `json:"final"`
	Detail struct {
		Quality     float64 `json:"quality"`
		Popularity  float64 `json:"popularity"`
		Maintenance float64 `json:"maintenance"`
	} `json:"detail"`
}

// DownloadsResponse is the raw response from the downloads point API.
type DownloadsResponse struct {
	Downloads int    `json:"downloads"`
	Package   string `json:"package"`
}
