package gallery

import (
	"context"
	"testing"
	"time"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
)

// fakeAdapter is a configurable in-memory adapter used across the package
// tests.
type fakeAdapter struct {
	Base
	searchFn   func(ctx context.Context, opts SearchOptions) (*SearchResult, error)
	infoFn     func(ctx context.Context, name string) (*PackageInfo, error)
	infoCalls  int
	searchErr  error
	packages   []PackageSummary
}

func (f *fakeAdapter) Search(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, opts)
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &SearchResult{Packages: f.packages, Total: len(f.packages)}, nil
}

func (f *fakeAdapter) PackageInfo(ctx context.Context, name string) (*PackageInfo, error) {
	f.infoCalls++
	if f.infoFn != nil {
		return f.infoFn(ctx, name)
	}
	return nil, pkgerrors.New(pkgerrors.ErrCodePackageNotFound, "%s", "package not found: "+name)
}

func (f *fakeAdapter) PackageDetails(ctx context.Context, name, version string) (*PackageDetails, error) {
	info, err := f.PackageInfo(ctx, name)
	if err != nil {
		return nil, err
	}
	return &PackageDetails{PackageInfo: *info}, nil
}

func (f *fakeAdapter) Versions(ctx context.Context, name string) ([]VersionInfo, error) {
	return []VersionInfo{{Version: "1.0.0"}}, nil
}

func newFakeAdapter(source SourceType, project ProjectType) *fakeAdapter {
	return &fakeAdapter{Base: NewBase(Metadata{
		Source:      source,
		DisplayName: string(source),
		Project:     project,
	})}
}

func TestBaseMetadata(t *testing.T) {
	b := NewBase(Metadata{
		Source:       SourceSonatype,
		DisplayName:  "Maven Central",
		Project:      ProjectMaven,
		SortOptions:  []string{"relevance"},
		Capabilities: []Capability{CapCopy},
	})
	if b.Source() != SourceSonatype {
		t.Errorf("Source() = %s", b.Source())
	}
	if b.DisplayName() != "Maven Central" {
		t.Errorf("DisplayName() = %s", b.DisplayName())
	}
	caps := b.Capabilities()
	for _, c := range CoreCapabilities {
		found := false
		for _, got := range caps {
			if got == c {
				found = true
			}
		}
		if !found {
			t.Errorf("Capabilities() missing implicit core %s", c)
		}
	}
}

func TestBaseOptionalDefaults(t *testing.T) {
	b := NewBase(Metadata{Source: SourceNPMS})
	ctx := context.Background()

	checks := []struct {
		name string
		call func() error
		cap  Capability
	}{
		{"InstallCommand", func() error { _, err := b.InstallCommand("x", ""); return err }, CapInstallation},
		{"UpdateCommand", func() error { _, err := b.UpdateCommand("x"); return err }, CapInstallation},
		{"RemoveCommand", func() error { _, err := b.RemoveCommand("x"); return err }, CapInstallation},
		{"CopySnippet", func() error { _, err := b.CopySnippet("x", "1", SnippetMaven); return err }, CapCopy},
		{"Suggestions", func() error { _, err := b.Suggestions(ctx, "x", 5); return err }, CapSuggestions},
		{"SecurityInfo", func() error { _, err := b.SecurityInfo(ctx, "x", "1"); return err }, CapSecurity},
		{"SecurityInfoBulk", func() error { _, err := b.SecurityInfoBulk(ctx, nil); return err }, CapSecurity},
		{"BundleSize", func() error { _, err := b.BundleSize(ctx, "x", "1"); return err }, CapBundleSize},
		{"Dependents", func() error { _, err := b.Dependents(ctx, "x", "1"); return err }, CapDependents},
		{"Requirements", func() error { _, err := b.Requirements(ctx, "x", "1"); return err }, CapRequirements},
		{"DownloadStats", func() error { _, err := b.DownloadStats(ctx, "x"); return err }, CapDownloadStats},
		{"QualityScore", func() error { _, err := b.QualityScore(ctx, "x"); return err }, CapQualityScore},
	}
	for _, c := range checks {
		err := c.call()
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		var cnse *CapabilityNotSupportedError
		if !asCapError(err, &cnse) {
			t.Errorf("%s: expected CapabilityNotSupportedError, got %T", c.name, err)
			continue
		}
		if cnse.Capability != c.cap {
			t.Errorf("%s: capability = %s, want %s", c.name, cnse.Capability, c.cap)
		}
		if cnse.Source != SourceNPMS {
			t.Errorf("%s: source = %s", c.name, cnse.Source)
		}
	}
}

func asCapError(err error, target **CapabilityNotSupportedError) bool {
	e, ok := err.(*CapabilityNotSupportedError)
	if ok {
		*target = e
	}
	return ok
}

func TestEmptyQuery(t *testing.T) {
	tests := []struct {
		q    string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"react", false},
		{" react ", false},
	}
	for _, tt := range tests {
		if got := EmptyQuery(tt.q); got != tt.want {
			t.Errorf("EmptyQuery(%q) = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestEnsureExactMatchPromotes(t *testing.T) {
	a := newFakeAdapter(SourceNPMRegistry, ProjectNPM)
	res := &SearchResult{
		Packages: []PackageSummary{
			{Name: "react-dom"},
			{Name: "React"},
			{Name: "react-router"},
		},
		Total: 3,
	}
	EnsureExactMatch(context.Background(), a, res, "react")

	if res.Packages[0].Name != "React" {
		t.Fatalf("first result = %s, want React", res.Packages[0].Name)
	}
	if !res.Packages[0].ExactMatch {
		t.Error("promoted result should be flagged as exact match")
	}
	if len(res.Packages) != 3 || res.Total != 3 {
		t.Errorf("result size changed: %d packages, total %d", len(res.Packages), res.Total)
	}
	if a.infoCalls != 0 {
		t.Errorf("no lookup expected when match is present, got %d calls", a.infoCalls)
	}
}

func TestEnsureExactMatchFetches(t *testing.T) {
	a := newFakeAdapter(SourceNPMRegistry, ProjectNPM)
	a.infoFn = func(ctx context.Context, name string) (*PackageInfo, error) {
		return &PackageInfo{
			Name: name, Version: "18.2.0",
			Description: "declarative views",
			PublishedAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		}, nil
	}
	res := &SearchResult{
		Packages: []PackageSummary{{Name: "react-dom"}},
		Total:    1,
	}
	EnsureExactMatch(context.Background(), a, res, "react")

	if len(res.Packages) != 2 || res.Total != 2 {
		t.Fatalf("expected fetched match prepended, got %d packages", len(res.Packages))
	}
	first := res.Packages[0]
	if first.Name != "react" || !first.ExactMatch || first.Version != "18.2.0" {
		t.Errorf("unexpected prepended summary: %+v", first)
	}
}

func TestEnsureExactMatchLookupFailure(t *testing.T) {
	a := newFakeAdapter(SourceNPMRegistry, ProjectNPM)
	res := &SearchResult{
		Packages: []PackageSummary{{Name: "leftpad"}},
		Total:    1,
	}
	EnsureExactMatch(context.Background(), a, res, "left-pad")

	if len(res.Packages) != 1 || res.Packages[0].ExactMatch {
		t.Error("lookup failure should leave results unchanged")
	}
}
