package gallery

import (
	"slices"
	"sync"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
)

// SourceConfig describes which sources serve a project type and in what
// order they are tried.
type SourceConfig struct {
	Primary   SourceType   `json:"primary" toml:"primary"`
	Fallbacks []SourceType `json:"fallbacks" toml:"fallbacks"`
	// SortBy is the default sort chain applied to searches when the
	// caller does not specify one.
	SortBy []string `json:"sort_by" toml:"sort_by"`
	// Filters lists the filter keys searches of this project type
	// accept when no adapter is available to answer.
	Filters []string `json:"filters" toml:"filters"`
}

// AllSources returns the primary followed by the fallbacks. This is the
// retry order for fallback execution; duplicates are preserved as given.
func (c SourceConfig) AllSources() []SourceType {
	out := make([]SourceType, 0, 1+len(c.Fallbacks))
	out = append(out, c.Primary)
	out = append(out, c.Fallbacks...)
	return out
}

func (c SourceConfig) clone() SourceConfig {
	c.Fallbacks = slices.Clone(c.Fallbacks)
	c.SortBy = slices.Clone(c.SortBy)
	c.Filters = slices.Clone(c.Filters)
	return c
}

// Override is a partial update to a project type's source configuration.
// Nil slices and empty strings leave the current value in place; a
// non-nil slice replaces the whole list.
type Override struct {
	Primary   SourceType
	Fallbacks []SourceType
	SortBy    []string
	Filters   []string
}

func defaultConfigs() map[ProjectType]SourceConfig {
	npm := SourceConfig{
		Primary:   SourceNPMRegistry,
		Fallbacks: []SourceType{SourceNPMS},
		SortBy:    []string{"relevance", "popularity", "quality", "maintenance", "name"},
		Filters:   []string{"author", "keywords", "scope"},
	}
	return map[ProjectType]SourceConfig{
		ProjectNPM: npm,
		ProjectMaven: {
			Primary: SourceSonatype,
			SortBy:  []string{"relevance", "name"},
		},
		ProjectDotnet: {
			Primary: SourceNuGet,
			SortBy:  []string{"relevance", "downloads", "name"},
			Filters: []string{"packageType"},
		},
		ProjectGo: {
			Primary: SourcePkgGoDev,
			SortBy:  []string{"relevance"},
		},
		// Unknown projects browse the npm ecosystem, the broadest catalog.
		ProjectUnknown: npm.clone(),
	}
}

// ConfigManager owns the per-project-type source configuration. It starts
// from compiled-in defaults and accepts partial overrides at runtime.
type ConfigManager struct {
	mu      sync.RWMutex
	configs map[ProjectType]SourceConfig
}

// NewConfigManager creates a manager seeded with the compiled-in defaults.
func NewConfigManager() *ConfigManager {
	return &ConfigManager{configs: defaultConfigs()}
}

// Config returns the configuration for a project type. Unrecognized
// project types get the ProjectUnknown configuration.
func (m *ConfigManager) Config(project ProjectType) SourceConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.configs[project]
	if !ok {
		c = m.configs[ProjectUnknown]
	}
	return c.clone()
}

// Update applies a partial override to a project type's configuration.
func (m *ConfigManager) Update(project ProjectType, o Override) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.configs[project]
	if !ok {
		return pkgerrors.New(pkgerrors.ErrCodeInvalidProject,
			"%s", "unknown project type "+string(project))
	}
	if o.Primary != "" {
		c.Primary = o.Primary
	}
	if o.Fallbacks != nil {
		c.Fallbacks = slices.Clone(o.Fallbacks)
	}
	if o.SortBy != nil {
		c.SortBy = slices.Clone(o.SortBy)
	}
	if o.Filters != nil {
		c.Filters = slices.Clone(o.Filters)
	}
	m.configs[project] = c
	return nil
}

// Reset restores the compiled-in defaults for every project type.
func (m *ConfigManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs = defaultConfigs()
}
