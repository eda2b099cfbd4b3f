package services

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[cache]
backend = "none"
ttl_hours = 6

[sources.npm]
primary = "npms-io"
sort_by = ["name"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL().Hours() != 6 {
		t.Errorf("ttl = %v", cfg.Cache.TTL())
	}
	if cfg.Sources["npm"].Primary != "npms-io" {
		t.Errorf("override = %+v", cfg.Sources["npm"])
	}
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Cache.Backend != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("cache = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if pkgerrors.GetCode(err) != pkgerrors.ErrCodeInvalidConfig {
		t.Errorf("code = %s", pkgerrors.GetCode(err))
	}
}

func TestFileConfigApply(t *testing.T) {
	m := gallery.NewConfigManager()
	cfg := &FileConfig{
		Sources: map[string]SourceOverrides{
			"npm": {Primary: "npms-io", Fallbacks: []string{"npm-registry"}, Filters: []string{"scope"}},
		},
	}
	if err := cfg.apply(m); err != nil {
		t.Fatalf("apply: %v", err)
	}
	got := m.Config(gallery.ProjectNPM)
	if got.Primary != gallery.SourceNPMS {
		t.Errorf("primary = %s", got.Primary)
	}
	if len(got.Fallbacks) != 1 || got.Fallbacks[0] != gallery.SourceNPMRegistry {
		t.Errorf("fallbacks = %v", got.Fallbacks)
	}
	if !slices.Equal(got.Filters, []string{"scope"}) {
		t.Errorf("filters = %v", got.Filters)
	}

	bad := &FileConfig{Sources: map[string]SourceOverrides{"cargo": {Primary: "x"}}}
	if err := bad.apply(gallery.NewConfigManager()); err == nil {
		t.Error("unknown project key should be rejected")
	}
}

func TestContainerBuild(t *testing.T) {
	cfg := &FileConfig{Cache: CacheConfig{Backend: "none"}}
	c, err := NewContainer(context.Background(), cfg, "")
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	srcs := c.AvailableSources()
	if len(srcs) != 5 {
		t.Fatalf("got %d sources, want 5", len(srcs))
	}
	for _, s := range srcs {
		if s.DisplayName == "" || len(s.Capabilities) < len(gallery.CoreCapabilities) {
			t.Errorf("incomplete source info: %+v", s)
		}
	}

	c.SetProjectType(gallery.ProjectNPM)
	src, err := c.CurrentSourceType()
	if err != nil || src != gallery.SourceNPMRegistry {
		t.Errorf("current source = %s, err %v", src, err)
	}

	if err := c.SetSelectedSource(gallery.SourceNPMS); err != nil {
		t.Errorf("SetSelectedSource: %v", err)
	}
	src, _ = c.CurrentSourceType()
	if src != gallery.SourceNPMS {
		t.Errorf("pinned source = %s", src)
	}

	if err := c.SetSelectedSource("bogus"); err == nil {
		t.Error("pinning an unknown source should fail")
	}

	sorts := c.SupportedSortOptions()
	if len(sorts) == 0 || sorts[0] != "relevance" {
		t.Errorf("sort options = %v", sorts)
	}
}

func TestSupportedFiltersFallback(t *testing.T) {
	// No adapters registered: both lookups fall back to the configured
	// defaults instead of returning nil.
	sel := gallery.NewSelector(gallery.NewRegistry(), gallery.NewConfigManager(), nil)
	sel.SetProjectType(gallery.ProjectNPM)
	c := &Container{selector: sel}

	if got := c.SupportedFilters(); !slices.Equal(got, []string{"author", "keywords", "scope"}) {
		t.Errorf("filters = %v", got)
	}
	if got := c.SupportedSortOptions(); len(got) == 0 || got[0] != "relevance" {
		t.Errorf("sort options = %v", got)
	}
}

func TestContainerUnknownBackend(t *testing.T) {
	cfg := &FileConfig{Cache: CacheConfig{Backend: "memcached"}}
	_, err := NewContainer(context.Background(), cfg, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.GetCode(err) != pkgerrors.ErrCodeInvalidConfig {
		t.Errorf("code = %s", pkgerrors.GetCode(err))
	}
}

// stubAdapter backs the service tests without network access.
type stubAdapter struct {
	gallery.Base
	suggestions  []gallery.PackageSummary
	searchCalls  int
	lastSort     string
}

func (s *stubAdapter) Search(ctx context.Context, opts gallery.SearchOptions) (*gallery.SearchResult, error) {
	s.searchCalls++
	s.lastSort = opts.SortBy
	return &gallery.SearchResult{Packages: []gallery.PackageSummary{{Name: "from-search"}}, Total: 1}, nil
}

func (s *stubAdapter) PackageInfo(ctx context.Context, name string) (*gallery.PackageInfo, error) {
	return &gallery.PackageInfo{Name: name}, nil
}

func (s *stubAdapter) PackageDetails(ctx context.Context, name, version string) (*gallery.PackageDetails, error) {
	return &gallery.PackageDetails{PackageInfo: gallery.PackageInfo{Name: name, Version: version}}, nil
}

func (s *stubAdapter) Versions(ctx context.Context, name string) ([]gallery.VersionInfo, error) {
	return []gallery.VersionInfo{{Version: "1.0.0"}}, nil
}

func (s *stubAdapter) Suggestions(ctx context.Context, query string, size int) ([]gallery.PackageSummary, error) {
	if s.suggestions == nil {
		return s.Base.Suggestions(ctx, query, size)
	}
	return s.suggestions, nil
}

func newStub(caps ...gallery.Capability) *stubAdapter {
	return &stubAdapter{Base: gallery.NewBase(gallery.Metadata{
		Source:       gallery.SourceNPMRegistry,
		DisplayName:  "stub",
		Project:      gallery.ProjectNPM,
		Capabilities: caps,
	})}
}

func newStubServices(t *testing.T, a gallery.Adapter) (*SearchService, *gallery.Selector) {
	t.Helper()
	reg := gallery.NewRegistry()
	reg.Register(a)
	configs := gallery.NewConfigManager()
	sel := gallery.NewSelector(reg, configs, nil)
	sel.SetProjectType(gallery.ProjectNPM)
	return &SearchService{selector: sel, configs: configs}, sel
}

func TestSearchDefaultSort(t *testing.T) {
	stub := newStub()
	svc, _ := newStubServices(t, stub)

	if _, err := svc.Search(context.Background(), gallery.SearchOptions{Query: "x"}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if stub.lastSort != "relevance" {
		t.Errorf("default sort = %q, want first configured entry", stub.lastSort)
	}

	if _, err := svc.Search(context.Background(), gallery.SearchOptions{Query: "x", SortBy: "name"}); err != nil {
		t.Fatal(err)
	}
	if stub.lastSort != "name" {
		t.Errorf("explicit sort = %q", stub.lastSort)
	}
}

func TestSuggestUsesCapability(t *testing.T) {
	stub := newStub(gallery.CapSuggestions)
	stub.suggestions = []gallery.PackageSummary{{Name: "from-suggestions"}}
	svc, _ := newStubServices(t, stub)

	hits, err := svc.Suggest(context.Background(), "rea")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "from-suggestions" {
		t.Errorf("hits = %+v", hits)
	}
	if stub.searchCalls != 0 {
		t.Error("dedicated suggestions should not fall back to search")
	}
}

func TestSuggestFallsBackToSearch(t *testing.T) {
	stub := newStub()
	svc, _ := newStubServices(t, stub)

	hits, err := svc.Suggest(context.Background(), "rea")
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(hits) != 1 || hits[0].Name != "from-search" {
		t.Errorf("hits = %+v", hits)
	}
	if stub.searchCalls != 1 {
		t.Errorf("searchCalls = %d", stub.searchCalls)
	}
}
