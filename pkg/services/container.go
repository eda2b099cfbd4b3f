// Package services wires the adapters, cache, and selection machinery
// into the operations the CLI and HTTP API consume.
package services

import (
	"context"
	"os"

	"github.com/pkggallery/pkggallery/pkg/cache"
	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
	"github.com/pkggallery/pkggallery/pkg/integrations/bundlephobia"
	"github.com/pkggallery/pkggallery/pkg/integrations/depsdev"
	"github.com/pkggallery/pkggallery/pkg/integrations/goproxy"
	npmapi "github.com/pkggallery/pkggallery/pkg/integrations/npm"
	npmsapi "github.com/pkggallery/pkggallery/pkg/integrations/npms"
	nugetapi "github.com/pkggallery/pkggallery/pkg/integrations/nuget"
	"github.com/pkggallery/pkggallery/pkg/integrations/osv"
	sonatypeapi "github.com/pkggallery/pkggallery/pkg/integrations/sonatype"
	"github.com/pkggallery/pkggallery/pkg/sources/gopkg"
	"github.com/pkggallery/pkggallery/pkg/sources/npm"
	"github.com/pkggallery/pkggallery/pkg/sources/npms"
	"github.com/pkggallery/pkggallery/pkg/sources/nuget"
	"github.com/pkggallery/pkggallery/pkg/sources/sonatype"
)

// Container is the composition root. It owns the cache backend, the
// upstream clients, the adapter registry, and the selector, and hands out
// the service facades.
type Container struct {
	cfg      *FileConfig
	backend  cache.Cache
	cacheDir string

	registry *gallery.Registry
	configs  *gallery.ConfigManager
	selector *gallery.Selector

	packages *PackageService
	search   *SearchService
	install  *InstallService
}

// NewContainer builds the full service graph from the user configuration.
// The workspace root seeds project-type detection.
func NewContainer(ctx context.Context, cfg *FileConfig, workspaceRoot string) (*Container, error) {
	if cfg == nil {
		cfg = &FileConfig{}
	}

	c := &Container{cfg: cfg}
	if err := c.buildCache(ctx); err != nil {
		return nil, err
	}

	ttl := cfg.Cache.TTL()
	vulns := osv.NewClient(c.backend, ttl)

	c.registry = gallery.NewRegistry()
	c.registry.Register(npm.New(
		npmapi.NewClient(c.backend, ttl),
		vulns,
		bundlephobia.NewClient(c.backend, ttl),
		depsdev.NewClient(c.backend, ttl),
	))
	c.registry.Register(npms.New(npmsapi.NewClient(c.backend, ttl)))
	c.registry.Register(sonatype.New(sonatypeapi.NewClient(c.backend, ttl), vulns))
	c.registry.Register(nuget.New(nugetapi.NewClient(c.backend, ttl), vulns))
	c.registry.Register(gopkg.New(goproxy.NewClient(c.backend, ttl), vulns))

	c.configs = gallery.NewConfigManager()
	if err := cfg.apply(c.configs); err != nil {
		return nil, err
	}

	c.selector = gallery.NewSelector(c.registry, c.configs, nil)
	c.selector.SetRoot(workspaceRoot)

	c.packages = &PackageService{selector: c.selector}
	c.search = &SearchService{selector: c.selector, configs: c.configs}
	c.install = &InstallService{selector: c.selector}
	return c, nil
}

func (c *Container) buildCache(ctx context.Context) error {
	switch c.cfg.Cache.Backend {
	case "", "file":
		dir := c.cfg.Cache.Dir
		backend, err := cache.NewFileCache(dir)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "cannot initialize file cache")
		}
		if fc, ok := backend.(*cache.FileCache); ok {
			c.cacheDir = fc.Dir()
		}
		c.backend = backend
	case "redis":
		backend, err := cache.NewRedisCache(ctx, c.cfg.Cache.Redis)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "cannot connect to redis cache")
		}
		c.backend = backend
	case "mongo":
		backend, err := cache.NewMongoCache(ctx, c.cfg.Cache.Mongo)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err, "cannot connect to mongo cache")
		}
		c.backend = backend
	case "none":
		c.backend = cache.NewNullCache()
	default:
		return pkgerrors.New(pkgerrors.ErrCodeInvalidConfig,
			"unknown cache backend %q", c.cfg.Cache.Backend)
	}
	return nil
}

// Close releases the cache backend.
func (c *Container) Close() error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Close()
}

// Packages returns the package metadata service.
func (c *Container) Packages() *PackageService { return c.packages }

// Search returns the search service.
func (c *Container) Search() *SearchService { return c.search }

// Install returns the install command service.
func (c *Container) Install() *InstallService { return c.install }

// Selector exposes the source selector for session-state commands.
func (c *Container) Selector() *gallery.Selector { return c.selector }

// CurrentProjectType returns the detected or pinned project type.
func (c *Container) CurrentProjectType() gallery.ProjectType {
	return c.selector.ProjectType()
}

// DetectedProjects returns the full detection snapshot for the
// workspace: every discovered ecosystem with its marker file, plus the
// primary. A pinned project type does not change the snapshot.
func (c *Container) DetectedProjects() gallery.DetectedProjects {
	return c.selector.DetectedProjects()
}

// SetProjectType pins the project type for the session.
func (c *Container) SetProjectType(p gallery.ProjectType) {
	c.selector.SetProjectType(p)
}

// CurrentSourceType returns the source that would serve the next
// operation.
func (c *Container) CurrentSourceType() (gallery.SourceType, error) {
	return c.selector.SelectSource("")
}

// SetSelectedSource pins a source for the session; empty clears the pin.
func (c *Container) SetSelectedSource(source gallery.SourceType) error {
	return c.selector.SetUserSource(source)
}

// SourceInfo describes one registered source for listings.
type SourceInfo struct {
	Type         gallery.SourceType   `json:"type"`
	DisplayName  string               `json:"display_name"`
	Project      gallery.ProjectType  `json:"project"`
	Capabilities []gallery.Capability `json:"capabilities"`
}

// AvailableSources lists every registered source.
func (c *Container) AvailableSources() []SourceInfo {
	types := c.registry.Sources()
	out := make([]SourceInfo, 0, len(types))
	for _, t := range types {
		a, err := c.registry.Get(t)
		if err != nil {
			continue
		}
		out = append(out, SourceInfo{
			Type:         a.Source(),
			DisplayName:  a.DisplayName(),
			Project:      a.Project(),
			Capabilities: a.Capabilities(),
		})
	}
	return out
}

// SupportedSortOptions returns the active source's sort options, falling
// back to the configured sort chain when no adapter is available.
func (c *Container) SupportedSortOptions() []string {
	a, err := c.selector.Adapter("")
	if err != nil {
		return c.selector.Config().SortBy
	}
	return a.SortOptions()
}

// SupportedFilters returns the active source's filter keys, falling
// back to the configured defaults when no adapter is available.
func (c *Container) SupportedFilters() []string {
	a, err := c.selector.Adapter("")
	if err != nil {
		return c.selector.Config().Filters
	}
	return a.Filters()
}

// CacheDir returns the file cache directory, empty for other backends.
func (c *Container) CacheDir() string { return c.cacheDir }

// ClearCache removes the file cache contents. Shared backends (redis,
// mongo) are not cleared from here.
func (c *Container) ClearCache() error {
	if c.cacheDir == "" {
		return pkgerrors.New(pkgerrors.ErrCodeUnsupported,
			"cache clearing is only supported for the file backend")
	}
	return os.RemoveAll(c.cacheDir)
}
