// Package gopkg adapts the Go module proxy (proxy.golang.org) to the
// gallery adapter contract, presented as the pkg.go.dev source for Go
// projects. The proxy exposes no free-text search, so searching resolves
// the query as a module path.
package gopkg

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
	"github.com/pkggallery/pkggallery/pkg/integrations"
	"github.com/pkggallery/pkggallery/pkg/integrations/goproxy"
	"github.com/pkggallery/pkggallery/pkg/integrations/osv"
	"github.com/pkggallery/pkggallery/pkg/sources"
	"golang.org/x/mod/semver"
)

// Adapter serves go projects from the module proxy, with security data
// from OSV and module requirements parsed from go.mod files.
type Adapter struct {
	gallery.Base
	proxy *goproxy.Client
	vulns *osv.Client
}

// New creates the Go module adapter.
func New(proxy *goproxy.Client, vulns *osv.Client) *Adapter {
	return &Adapter{
		Base: gallery.NewBase(gallery.Metadata{
			Source:      gallery.SourcePkgGoDev,
			DisplayName: "pkg.go.dev",
			Project:     gallery.ProjectGo,
			SortOptions: []string{"relevance"},
			Capabilities: []gallery.Capability{
				gallery.CapInstallation,
				gallery.CapSecurity,
				gallery.CapRequirements,
			},
		}),
		proxy: proxy,
		vulns: vulns,
	}
}

// Search resolves the query as a module path. An unknown module yields an
// empty result rather than an error, matching how search behaves on the
// other sources.
func (a *Adapter) Search(ctx context.Context, opts gallery.SearchOptions) (*gallery.SearchResult, error) {
	if gallery.EmptyQuery(opts.Query) {
		return &gallery.SearchResult{Packages: []gallery.PackageSummary{}}, nil
	}
	mod := strings.TrimSpace(opts.Query)

	info, err := a.proxy.FetchLatest(ctx, mod, false)
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return &gallery.SearchResult{Packages: []gallery.PackageSummary{}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "module proxy lookup failed")
	}

	hit := gallery.PackageSummary{
		Name:    mod,
		Version: info.Version,
		Date:    sources.ParseTime(info.Time),
		Links:   map[string]string{"pkg.go.dev": "https://pkg.go.dev/" + mod},
	}
	if strings.EqualFold(mod, opts.ExactName) {
		hit.ExactMatch = true
	}
	return &gallery.SearchResult{Packages: []gallery.PackageSummary{hit}, Total: 1}, nil
}

func (a *Adapter) PackageInfo(ctx context.Context, name string) (*gallery.PackageInfo, error) {
	mod, err := validModulePath(name)
	if err != nil {
		return nil, err
	}
	info, err := a.proxy.FetchLatest(ctx, mod, false)
	if err != nil {
		return nil, wrapFetch(err, mod)
	}
	return &gallery.PackageInfo{
		Name:        mod,
		Version:     info.Version,
		HomePage:    "https://pkg.go.dev/" + mod,
		PublishedAt: sources.ParseTime(info.Time),
	}, nil
}

func (a *Adapter) PackageDetails(ctx context.Context, name, version string) (*gallery.PackageDetails, error) {
	mod, err := validModulePath(name)
	if err != nil {
		return nil, err
	}
	var info *goproxy.Info
	if version == "" {
		info, err = a.proxy.FetchLatest(ctx, mod, false)
	} else {
		info, err = a.proxy.FetchVersionInfo(ctx, mod, version, false)
	}
	if err != nil {
		return nil, wrapFetch(err, mod)
	}

	details := &gallery.PackageDetails{
		PackageInfo: gallery.PackageInfo{
			Name:        mod,
			Version:     info.Version,
			HomePage:    "https://pkg.go.dev/" + mod,
			PublishedAt: sources.ParseTime(info.Time),
		},
	}
	// Direct requirements double as the dependency list.
	if reqs, err := a.proxy.FetchRequirements(ctx, mod, info.Version, false); err == nil {
		deps := make(map[string]string, len(reqs))
		for _, r := range reqs {
			deps[r.Path] = r.Version
		}
		details.Dependencies = deps
	}
	return details, nil
}

func (a *Adapter) Versions(ctx context.Context, name string) ([]gallery.VersionInfo, error) {
	mod, err := validModulePath(name)
	if err != nil {
		return nil, err
	}
	versions, err := a.proxy.FetchVersions(ctx, mod, false)
	if err != nil {
		return nil, wrapFetch(err, mod)
	}
	return sortVersions(versions), nil
}

func (a *Adapter) InstallCommand(name, version string) (string, error) {
	if version != "" {
		return "go get " + name + "@" + version, nil
	}
	return "go get " + name, nil
}

func (a *Adapter) UpdateCommand(name string) (string, error) {
	return "go get -u " + name, nil
}

func (a *Adapter) RemoveCommand(name string) (string, error) {
	// Modules are removed by dropping the import and tidying.
	return "go mod tidy", nil
}

func (a *Adapter) SecurityInfo(ctx context.Context, name, version string) (*gallery.SecurityInfo, error) {
	vulns, err := a.vulns.Query(ctx, osv.EcosystemGo, name, strings.TrimPrefix(version, "v"), false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "vulnerability lookup failed")
	}
	return sources.SecurityFromOSV(vulns), nil
}

func (a *Adapter) SecurityInfoBulk(ctx context.Context, pkgs []gallery.PackageRequest) (map[string]*gallery.SecurityInfo, error) {
	reqs := make([]osv.PackageVersion, len(pkgs))
	for i, p := range pkgs {
		reqs[i] = osv.PackageVersion{Name: p.Name, Version: strings.TrimPrefix(p.Version, "v")}
	}
	refs, err := a.vulns.QueryBatch(ctx, osv.EcosystemGo, reqs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "bulk vulnerability lookup failed")
	}
	out := make(map[string]*gallery.SecurityInfo, len(pkgs))
	for i, p := range pkgs {
		out[p.Name] = sources.SecurityFromRefs(refs[i])
	}
	return out, nil
}

func (a *Adapter) Requirements(ctx context.Context, name, version string) ([]gallery.Requirement, error) {
	mod, err := validModulePath(name)
	if err != nil {
		return nil, err
	}
	if version == "" {
		info, err := a.proxy.FetchLatest(ctx, mod, false)
		if err != nil {
			return nil, wrapFetch(err, mod)
		}
		version = info.Version
	}
	reqs, err := a.proxy.FetchRequirements(ctx, mod, version, false)
	if err != nil {
		return nil, wrapFetch(err, mod)
	}
	out := make([]gallery.Requirement, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, gallery.Requirement{Name: r.Path, Spec: r.Version})
	}
	return out, nil
}

func wrapFetch(err error, mod string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.ErrCodePackageNotFound, err, "go module not found: %s", mod)
	}
	return pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "module proxy request failed")
}

// validModulePath rejects names that cannot be module paths. The full
// grammar lives in the toolchain; a domain-like first element is enough
// to catch npm-style names routed to the wrong source.
func validModulePath(name string) (string, error) {
	mod := strings.TrimSpace(name)
	first, _, _ := strings.Cut(mod, "/")
	if mod == "" || !strings.Contains(first, ".") || strings.ContainsAny(mod, " \t@") {
		return "", pkgerrors.New(pkgerrors.ErrCodeInvalidPackage,
			"not a valid go module path: %q", name)
	}
	return mod, nil
}

// sortVersions orders proxy version lists newest first. The proxy
// guarantees no order; semver precedence decides, with pseudo-versions
// and malformed entries sinking to the end.
func sortVersions(versions []string) []gallery.VersionInfo {
	sorted := make([]string, len(versions))
	copy(sorted, versions)
	semver.Sort(sorted)

	out := make([]gallery.VersionInfo, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		out = append(out, gallery.VersionInfo{Version: sorted[i]})
	}
	return out
}
