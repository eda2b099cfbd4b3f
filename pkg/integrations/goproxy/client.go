// Package goproxy provides access to the Go module proxy API
// (proxy.golang.org).
package goproxy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkggallery/pkggallery/pkg/cache"
	"github.com/pkggallery/pkggallery/pkg/integrations"
)

// Client provides access to the Go module proxy API.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Go module proxy client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "goproxy:", cacheTTL, nil),
		baseURL: "https://proxy.golang.org",
	}
}

// Info is the @latest / .info response for a module version.
type Info struct {
	Version string `json:"Version"`
	Time    string `json:"Time"`
}

// FetchLatest retrieves the latest version info for a module.
//
// Returns [integrations.ErrNotFound] if the module doesn't exist.
func (c *Client) FetchLatest(ctx context.Context, mod string, refresh bool) (*Info, error) {
	mod = strings.TrimSpace(mod)

	var info Info
	err := c.Cached(ctx, "latest:"+mod, refresh, &info, func() error {
		url := fmt.Sprintf("%s/%s/@latest", c.baseURL, escapePath(mod))
		if err := c.Get(ctx, url, &info); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: go module %s", err, mod)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchVersionInfo retrieves the .info document for one version.
func (c *Client) FetchVersionInfo(ctx context.Context, mod, version string, refresh bool) (*Info, error) {
	mod = strings.TrimSpace(mod)

	var info Info
	err := c.Cached(ctx, "info:"+mod+"@"+version, refresh, &info, func() error {
		url := fmt.Sprintf("%s/%s/@v/%s.info", c.baseURL, escapePath(mod), version)
		return c.Get(ctx, url, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchVersions retrieves the version list for a module from the @v/list
// endpoint. The proxy returns versions in no particular order.
func (c *Client) FetchVersions(ctx context.Context, mod string, refresh bool) ([]string, error) {
	mod = strings.TrimSpace(mod)

	var versions []string
	err := c.Cached(ctx, "list:"+mod, refresh, &versions, func() error {
		url := fmt.Sprintf("%s/%s/@v/list", c.baseURL, escapePath(mod))
		body, err := c.GetText(ctx, url)
		if err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: go module %s", err, mod)
			}
			return err
		}
		versions = versions[:0]
		for _, line := range strings.Fields(body) {
			versions = append(versions, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// FetchRequirements retrieves and parses the go.mod of one module version,
// returning direct (non-indirect) requirements as "path version" pairs.
//
// Some modules (pre-modules or minimal modules) have no meaningful go.mod;
// the result is empty in that case, not an error.
func (c *Client) FetchRequirements(ctx context.Context, mod, version string, refresh bool) ([]Requirement, error) {
	mod = strings.TrimSpace(mod)

	var reqs []Requirement
	err := c.Cached(ctx, "mod:"+mod+"@"+version, refresh, &reqs, func() error {
		url := fmt.Sprintf("%s/%s/@v/%s.mod", c.baseURL, escapePath(mod), version)
		body, err := c.GetText(ctx, url)
		if err != nil {
			return err
		}
		parsed, err := parseGoMod(strings.NewReader(body))
		if err != nil {
			return err
		}
		reqs = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reqs, nil
}

// Requirement is one direct dependency from a go.mod require block.
type Requirement struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

func parseGoMod(r io.Reader) ([]Requirement, error) {
	var reqs []Requirement
	seen := make(map[string]bool)
	inRequire := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		// Handle require block
		if strings.HasPrefix(line, "require (") || line == "require(" {
			inRequire = true
			continue
		}
		if inRequire && line == ")" {
			inRequire = false
			continue
		}

		// Single-line require
		if strings.HasPrefix(line, "require ") && !strings.Contains(line, "(") {
			line = strings.TrimPrefix(line, "require ")
		} else if !inRequire {
			continue
		}

		if req, ok := parseRequireLine(line); ok && !seen[req.Path] {
			seen[req.Path] = true
			reqs = append(reqs, req)
		}
	}

	return reqs, scanner.Err()
}

func parseRequireLine(line string) (Requirement, bool) {
	// Skip indirect dependencies
	if strings.Contains(line, "// indirect") {
		return Requirement{}, false
	}

	// Remove inline comments
	if idx := strings.Index(line, "//"); idx != -1 {
		line = line[:idx]
	}

	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) < 2 {
		return Requirement{}, false
	}
	// Strip quotes from old-style go.mod files
	return Requirement{
		Path:    strings.Trim(fields[0], `"`),
		Version: fields[1],
	}, true
}

// escapePath encodes uppercase letters per the module proxy protocol
// (each uppercase letter becomes '!' followed by its lowercase form).
func escapePath(path string) string {
	var b strings.Builder
	for _, r := range path {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('!')
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
