// Package bundlephobia provides access to the Bundlephobia size API
// (bundlephobia.com/api).
package bundlephobia

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pkggallery/pkggallery/pkg/cache"
	"github.com/pkggallery/pkggallery/pkg/integrations"
)

// Client provides access to the Bundlephobia API.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Bundlephobia client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "bundlephobia:", cacheTTL, nil),
		baseURL: "https://bundlephobia.com/api",
	}
}

// FetchSize retrieves bundle size data for a package. Version may be empty
// for the latest version.
//
// Returns [integrations.ErrNotFound] if Bundlephobia cannot build the
// package (it also answers 500 for unbuildable packages, which surfaces as
// a network error after retries).
func (c *Client) FetchSize(ctx context.Context, name, version string, refresh bool) (*SizeResponse, error) {
	spec := name
	if version != "" {
		spec = name + "@" + version
	}

	var resp SizeResponse
	err := c.Cached(ctx, spec, refresh, &resp, func() error {
		url := fmt.Sprintf("%s/size?package=%s", c.baseURL, integrations.URLEncode(spec))
		if err := c.Get(ctx, url, &resp); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: bundlephobia package %s", err, spec)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SizeResponse is the raw response from /api/size.
type SizeResponse struct {
	Name            string  `json:"name"`
	Version         string  `json:"version"`
	Size            int     `json:"size"`     // minified bytes
	Gzip            int     `json:"gzip"`     // minified+gzipped bytes
	DependencyCount int     `json:"dependencyCount"`
	HasJSModule     any     `json:"hasJSModule"` // string path or false
	HasSideEffects  any     `json:"hasSideEffects"`
}
