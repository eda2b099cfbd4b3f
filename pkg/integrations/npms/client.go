// Package npms provides access to the npms.io analysis API (api.npms.io/v2).
package npms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pkggallery/pkggallery/pkg/cache"
	"github.com/pkggallery/pkggallery/pkg/integrations"
)

// Client provides access to the npms.io v2 API.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates an npms.io client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "npms:", cacheTTL, nil),
		baseURL: "https://api.npms.io/v2",
	}
}

// Search queries the npms.io search endpoint. npms.io supports qualifiers
// inside the query string (e.g., "author:sindresorhus keywords:cli").
func (c *Client) Search(ctx context.Context, query string, from, size int) (*SearchResponse, error) {
	url := fmt.Sprintf("%s/search?q=%s&from=%d&size=%d",
		c.baseURL, integrations.URLEncode(query), from, size)

	var resp SearchResponse
	if err := c.Get(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Suggestions queries the npms.io autocomplete endpoint.
func (c *Client) Suggestions(ctx context.Context, query string, size int) ([]SearchResult, error) {
	url := fmt.Sprintf("%s/search/suggestions?q=%s&size=%d",
		c.baseURL, integrations.URLEncode(query), size)

	var resp []SearchResult
	if err := c.Get(ctx, url, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// FetchPackage retrieves the analyzed package document for a package.
//
// Returns [integrations.ErrNotFound] if npms.io has not analyzed the package.
func (c *Client) FetchPackage(ctx context.Context, name string, refresh bool) (*PackageResponse, error) {
	name = strings.TrimSpace(name)

	var doc PackageResponse
	err := c.Cached(ctx, name, refresh, &doc, func() error {
		url := c.baseURL + "/package/" + integrations.URLEncode(name)
		if err := c.Get(ctx, url, &doc); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: npms package %s", err, name)
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

// SearchResponse is the raw response from /v2/search.
type SearchResponse struct {
	Total   int            `json:"total"`
	Results []SearchResult `json:"results"`
}

// SearchResult is one search hit.
type SearchResult struct {
	Package PackageSummary `json:"package"`
	Score   Score          `json:"score"`
}

// PackageSummary is the package metadata inside a search hit.
type PackageSummary struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Keywords    []string          `json:"keywords"`
	Date        string            `json:"date"`
	Links       map[string]string `json:"links"`
	Publisher   Publisher         `json:"publisher"`
}

// Publisher identifies who published a package version.
type Publisher struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Score is npms.io's composite analysis score.
type Score struct {
	Final  float64 `json:"final"`
	Detail struct {
		Quality     float64 `json:"quality"`
		Popularity  float64 `json:"popularity"`
		Maintenance float64 `json:"maintenance"`
	} `json:"detail"`
}

// PackageResponse is the raw response from /v2/package/{name}.
type PackageResponse struct {
	AnalyzedAt string `json:"analyzedAt"`
	Collected  struct {
		Metadata Metadata `json:"metadata"`
		NPM      struct {
			Downloads []DownloadWindow `json:"downloads"`
		} `json:"npm"`
	} `json:"collected"`
	Score Score `json:"score"`
}

// Metadata is the collected registry metadata for an analyzed package.
type Metadata struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Description  string            `json:"description"`
	Keywords     []string          `json:"keywords"`
	Date         string            `json:"date"`
	License      string            `json:"license"`
	Links        map[string]string `json:"links"`
	Publisher    Publisher         `json:"publisher"`
	Maintainers  []Publisher       `json:"maintainers"`
	Dependencies map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	Readme       string            `json:"readme"`
}

// DownloadWindow is one download-count aggregation window.
type DownloadWindow struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Count float64 `json:"count"`
}
