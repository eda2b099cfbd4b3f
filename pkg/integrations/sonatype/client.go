// Package sonatype provides access to the Maven Central search API
// (search.maven.org solrsearch).
package sonatype

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkggallery/pkggallery/pkg/cache"
	"github.com/pkggallery/pkggallery/pkg/integrations"
)

// Client provides access to the search.maven.org solrsearch API.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Sonatype search client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "sonatype:", cacheTTL, nil),
		baseURL: "https://search.maven.org/solrsearch/select",
	}
}

// Search queries Maven Central by free text. Queries of the form
// "group:artifact" are rewritten into coordinate qualifiers.
func (c *Client) Search(ctx context.Context, query string, start, rows int) (*SearchResponse, error) {
	q := query
	if g, a, ok := strings.Cut(query, ":"); ok && g != "" && a != "" {
		q = fmt.Sprintf("g:%s AND a:%s", g, a)
	}
	url := fmt.Sprintf("%s?q=%s&start=%d&rows=%d&wt=json",
		c.baseURL, integrations.URLEncode(q), start, rows)

	var resp SearchResponse
	if err := c.Get(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchArtifact retrieves the newest coordinate document for group:artifact.
//
// Returns [integrations.ErrNotFound] if no document matches.
func (c *Client) FetchArtifact(ctx context.Context, group, artifact string, refresh bool) (*Doc, error) {
	key := group + ":" + artifact

	var doc Doc
	err := c.Cached(ctx, key, refresh, &doc, func() error {
		q := fmt.Sprintf("g:%s AND a:%s", group, artifact)
		url := fmt.Sprintf("%s?q=%s&rows=1&wt=json", c.baseURL, integrations.URLEncode(q))

		var resp SearchResponse
		if err := c.Get(ctx, url, &resp); err != nil {
			return err
		}
		if len(resp.Response.Docs) == 0 {
			return fmt.Errorf("%w: maven artifact %s", integrations.ErrNotFound, key)
		}
		doc = resp.Response.Docs[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FetchVersions retrieves all released versions for group:artifact, newest
// first (the gav core returns documents in descending timestamp order).
func (c *Client) FetchVersions(ctx context.Context, group, artifact string, refresh bool) ([]Doc, error) {
	key := "versions:" + group + ":" + artifact

	var docs []Doc
	err := c.Cached(ctx, key, refresh, &docs, func() error {
		q := fmt.Sprintf("g:%s AND a:%s", group, artifact)
		url := fmt.Sprintf("%s?q=%s&core=gav&rows=100&wt=json", c.baseURL, integrations.URLEncode(q))

		var resp SearchResponse
		if err := c.Get(ctx, url, &resp); err != nil {
			return err
		}
		if len(resp.Response.Docs) == 0 {
			return fmt.Errorf("%w: maven artifact %s", integrations.ErrNotFound, group+":"+artifact)
		}
		docs = resp.Response.Docs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// SearchResponse is the raw solrsearch response envelope.
type SearchResponse struct {
	Response struct {
		NumFound int   `json:"numFound"`
		Start    int   `json:"start"`
		Docs     []Doc `json:"docs"`
	} `json:"response"`
}

// Doc is one solrsearch document. The coordinate core returns
// LatestVersion; the gav core returns V per released version.
type Doc struct {
	ID            string   `json:"id"`
	Group         string   `json:"g"`
	Artifact      string   `json:"a"`
	Version       string   `json:"v"`
	LatestVersion string   `json:"latestVersion"`
	Packaging     string   `json:"p"`
	Timestamp     int64    `json:"timestamp"` // epoch millis
	VersionCount  int      `json:"versionCount"`
	Text          []string `json:"text"`
}
