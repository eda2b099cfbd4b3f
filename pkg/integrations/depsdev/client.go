// Package depsdev provides access to the deps.dev API (api.deps.dev/v3),
// used for dependents counts and version requirements.
package depsdev

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pkggallery/pkggallery/pkg/cache"
	"github.com/pkggallery/pkggallery/pkg/integrations"
)

// System names as deps.dev spells them.
const (
	SystemNPM   = "npm"
	SystemMaven = "maven"
	SystemNuGet = "nuget"
	SystemGo    = "go"
)

// Client provides access to the deps.dev v3 API.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a deps.dev client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  integrations.NewClient(backend, "depsdev:", cacheTTL, nil),
		baseURL: "https://api.deps.dev/v3",
	}
}

// FetchDependents retrieves the dependents counts for a package version.
func (c *Client) FetchDependents(ctx context.Context, system, name, version string, refresh bool) (*DependentsResponse, error) {
	key := "dependents:" + system + ":" + name + "@" + version

	var resp DependentsResponse
	err := c.Cached(ctx, key, refresh, &resp, func() error {
		url := fmt.Sprintf("%s/systems/%s/packages/%s/versions/%s:dependents",
			c.baseURL, system, integrations.URLEncode(name), integrations.URLEncode(version))
		if err := c.Get(ctx, url, &resp); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: deps.dev %s package %s", err, system, name)
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

// FetchRequirements retrieves the declared requirements for a package
// version (the dependency list as the ecosystem's manifest states it).
func (c *Client) FetchRequirements(ctx context.Context, system, name, version string, refresh bool) (*RequirementsResponse, error) {
	key := "requirements:" + system + ":" + name + "@" + version

	var resp RequirementsResponse
	err := c.Cached(ctx, key, refresh, &resp, func() error {
		url := fmt.Sprintf("%s/systems/%s/packages/%s/versions/%s:requirements",
			c.baseURL, system, integrations.URLEncode(name), integrations.URLEncode(version))
		if err := c.Get(ctx, url, &resp); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: deps.dev %s package %s", err, system, name)
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

// DependentsResponse is the raw :dependents response.
type DependentsResponse struct {
	DependentCount         int `json:"dependentCount"`
	DirectDependentCount   int `json:"directDependentCount"`
	IndirectDependentCount int `json:"indirectDependentCount"`
}

// RequirementsResponse is the raw :requirements response. Only the npm
// shape carries a nested bundle; other systems use the flat list.
type RequirementsResponse struct {
	NPM *struct {
		Dependencies struct {
			Dependencies []RequirementEntry `json:"dependencies"`
		} `json:"dependencies"`
	} `json:"npm"`
	Maven *struct {
		Dependencies []RequirementEntry `json:"dependencies"`
	} `json:"maven"`
	NuGet *struct {
		DependencyGroups []struct {
			TargetFramework string             `json:"targetFramework"`
			Dependencies    []RequirementEntry `json:"dependencies"`
		} `json:"dependencyGroups"`
	} `json:"nuget"`
}

// RequirementEntry is one declared requirement.
type RequirementEntry struct {
	Name        string `json:"name"`
	Requirement string `json:"requirement"`
}
