package services

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/pkggallery/pkggallery/pkg/cache"
	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
)

// FileConfig is the user configuration file, read from
// ~/.config/pkggallery/config.toml when present.
type FileConfig struct {
	Cache   CacheConfig                 `toml:"cache"`
	Sources map[string]SourceOverrides  `toml:"sources"`
}

// CacheConfig selects and parameterizes the cache backend.
type CacheConfig struct {
	// Backend is one of "file" (default), "redis", "mongo", "none".
	Backend  string             `toml:"backend"`
	Dir      string             `toml:"dir"`
	TTLHours int                `toml:"ttl_hours"`
	Redis    cache.RedisConfig  `toml:"redis"`
	Mongo    cache.MongoConfig  `toml:"mongo"`
}

// SourceOverrides is the per-project-type override block. Omitted fields
// keep the compiled-in defaults.
type SourceOverrides struct {
	Primary   string   `toml:"primary"`
	Fallbacks []string `toml:"fallbacks"`
	SortBy    []string `toml:"sort_by"`
	Filters   []string `toml:"filters"`
}

// TTL returns the configured cache lifetime, defaulting to 24 hours.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TTLHours) * time.Hour
}

// DefaultConfigPath returns ~/.config/pkggallery/config.toml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pkggallery", "config.toml")
}

// LoadConfig reads the configuration file at path. A missing file is not
// an error; the zero config selects all defaults.
func LoadConfig(path string) (*FileConfig, error) {
	var cfg FileConfig
	if path == "" {
		return &cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeInvalidConfig, err,
			"cannot parse config file %s", path)
	}
	return &cfg, nil
}

// apply feeds the source override blocks into the config manager.
// Unknown project-type keys are rejected so typos surface instead of
// silently doing nothing.
func (c *FileConfig) apply(m *gallery.ConfigManager) error {
	for project, o := range c.Sources {
		var fallbacks []gallery.SourceType
		if o.Fallbacks != nil {
			fallbacks = make([]gallery.SourceType, len(o.Fallbacks))
			for i, f := range o.Fallbacks {
				fallbacks[i] = gallery.SourceType(f)
			}
		}
		err := m.Update(gallery.ProjectType(project), gallery.Override{
			Primary:   gallery.SourceType(o.Primary),
			Fallbacks: fallbacks,
			SortBy:    o.SortBy,
			Filters:   o.Filters,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
