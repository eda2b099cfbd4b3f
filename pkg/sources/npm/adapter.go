// Package npm adapts the npm registry (registry.npmjs.org) to the gallery
// adapter contract. It is the primary source for npm projects.
package npm

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
	"github.com/pkggallery/pkggallery/pkg/integrations/bundlephobia"
	"github.com/pkggallery/pkggallery/pkg/integrations/depsdev"
	npmapi "github.com/pkggallery/pkggallery/pkg/integrations/npm"
	"github.com/pkggallery/pkggallery/pkg/integrations/osv"
	"github.com/pkggallery/pkggallery/pkg/sources"
)

const defaultPageSize = 25

// Adapter serves npm projects from the npm registry, with security data
// from OSV, bundle sizes from Bundlephobia, and dependents/requirements
// from deps.dev.
type Adapter struct {
	gallery.Base
	registry *npmapi.Client
	vulns    *osv.Client
	sizes    *bundlephobia.Client
	deps     *depsdev.Client
}

// New creates the npm registry adapter.
func New(registry *npmapi.Client, vulns *osv.Client, sizes *bundlephobia.Client, deps *depsdev.Client) *Adapter {
	return &Adapter{
		Base: gallery.NewBase(gallery.Metadata{
			Source:      gallery.SourceNPMRegistry,
			DisplayName: "npm Registry",
			Project:     gallery.ProjectNPM,
			SortOptions: []string{"relevance", "popularity", "quality", "maintenance", "name"},
			Filters:     []string{"author", "keywords", "scope"},
			Capabilities: []gallery.Capability{
				gallery.CapInstallation,
				gallery.CapSecurity,
				gallery.CapSuggestions,
				gallery.CapDownloadStats,
				gallery.CapBundleSize,
				gallery.CapDependents,
				gallery.CapRequirements,
			},
		}),
		registry: registry,
		vulns:    vulns,
		sizes:    sizes,
		deps:     deps,
	}
}

func (a *Adapter) Search(ctx context.Context, opts gallery.SearchOptions) (*gallery.SearchResult, error) {
	if gallery.EmptyQuery(opts.Query) {
		return &gallery.SearchResult{Packages: []gallery.PackageSummary{}}, nil
	}
	size := opts.Size
	if size <= 0 {
		size = defaultPageSize
	}

	resp, err := a.registry.Search(ctx, queryWithFilters(opts.Query, opts.Filters), opts.From, size, opts.SortBy)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "npm search failed")
	}

	res := resultFromSearch(resp, opts.From, size)
	if opts.SortBy == "name" {
		sortByName(res.Packages)
	}
	if opts.ExactName != "" {
		gallery.EnsureExactMatch(ctx, a, res, opts.ExactName)
	}
	return res, nil
}

func (a *Adapter) PackageInfo(ctx context.Context, name string) (*gallery.PackageInfo, error) {
	if err := pkgerrors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	doc, err := a.registry.FetchPackage(ctx, name, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	return infoFromDoc(doc), nil
}

func (a *Adapter) PackageDetails(ctx context.Context, name, version string) (*gallery.PackageDetails, error) {
	if err := pkgerrors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	doc, err := a.registry.FetchPackage(ctx, name, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	if version == "" {
		version = doc.DistTags["latest"]
	}
	if _, ok := doc.Versions[version]; !ok {
		return nil, pkgerrors.New(pkgerrors.ErrCodeVersionNotFound,
			"npm package %s has no version %s", name, version)
	}
	return detailsFromDoc(doc, version), nil
}

func (a *Adapter) Versions(ctx context.Context, name string) ([]gallery.VersionInfo, error) {
	if err := pkgerrors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	doc, err := a.registry.FetchPackage(ctx, name, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	return versionsFromDoc(doc), nil
}

func (a *Adapter) InstallCommand(name, version string) (string, error) {
	if version != "" {
		return fmt.Sprintf("npm install %s@%s", name, version), nil
	}
	return "npm install " + name, nil
}

func (a *Adapter) UpdateCommand(name string) (string, error) {
	return "npm update " + name, nil
}

func (a *Adapter) RemoveCommand(name string) (string, error) {
	return "npm uninstall " + name, nil
}

// Suggestions searches with a small page; the registry has no dedicated
// autocomplete endpoint.
func (a *Adapter) Suggestions(ctx context.Context, query string, size int) ([]gallery.PackageSummary, error) {
	if size <= 0 {
		size = 5
	}
	res, err := a.Search(ctx, gallery.SearchOptions{Query: query, Size: size})
	if err != nil {
		return nil, err
	}
	return res.Packages, nil
}

func (a *Adapter) SecurityInfo(ctx context.Context, name, version string) (*gallery.SecurityInfo, error) {
	vulns, err := a.vulns.Query(ctx, osv.EcosystemNPM, name, version, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "vulnerability lookup failed")
	}
	return sources.SecurityFromOSV(vulns), nil
}

func (a *Adapter) SecurityInfoBulk(ctx context.Context, pkgs []gallery.PackageRequest) (map[string]*gallery.SecurityInfo, error) {
	reqs := make([]osv.PackageVersion, len(pkgs))
	for i, p := range pkgs {
		reqs[i] = osv.PackageVersion{Name: p.Name, Version: p.Version}
	}
	refs, err := a.vulns.QueryBatch(ctx, osv.EcosystemNPM, reqs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "bulk vulnerability lookup failed")
	}
	out := make(map[string]*gallery.SecurityInfo, len(pkgs))
	for i, p := range pkgs {
		out[p.Name] = sources.SecurityFromRefs(refs[i])
	}
	return out, nil
}

func (a *Adapter) BundleSize(ctx context.Context, name, version string) (*gallery.BundleSizeInfo, error) {
	resp, err := a.sizes.FetchSize(ctx, name, version, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "bundle size lookup failed")
	}
	return &gallery.BundleSizeInfo{
		Name:            resp.Name,
		Version:         resp.Version,
		Size:            resp.Size,
		Gzip:            resp.Gzip,
		DependencyCount: resp.DependencyCount,
	}, nil
}

func (a *Adapter) Dependents(ctx context.Context, name, version string) (*gallery.DependentsInfo, error) {
	version, err := a.resolveVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}
	resp, err := a.deps.FetchDependents(ctx, depsdev.SystemNPM, name, version, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "dependents lookup failed")
	}
	return &gallery.DependentsInfo{
		Total:    resp.DependentCount,
		Direct:   resp.DirectDependentCount,
		Indirect: resp.IndirectDependentCount,
	}, nil
}

func (a *Adapter) Requirements(ctx context.Context, name, version string) ([]gallery.Requirement, error) {
	version, err := a.resolveVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}
	resp, err := a.deps.FetchRequirements(ctx, depsdev.SystemNPM, name, version, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "requirements lookup failed")
	}
	var out []gallery.Requirement
	if resp.NPM != nil {
		for _, r := range resp.NPM.Dependencies.Dependencies {
			out = append(out, gallery.Requirement{Name: r.Name, Spec: r.Requirement})
		}
	}
	return out, nil
}

func (a *Adapter) DownloadStats(ctx context.Context, name string) (int64, error) {
	resp, err := a.registry.FetchDownloads(ctx, name, false)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "download stats lookup failed")
	}
	return int64(resp.Downloads), nil
}

// resolveVersion fills an empty version with the latest dist-tag. The
// deps.dev endpoints are version-addressed.
func (a *Adapter) resolveVersion(ctx context.Context, name, version string) (string, error) {
	if version != "" {
		return version, nil
	}
	doc, err := a.registry.FetchPackage(ctx, name, false)
	if err != nil {
		return "", wrapFetch(err, name)
	}
	latest := doc.DistTags["latest"]
	if latest == "" {
		return "", pkgerrors.New(pkgerrors.ErrCodeVersionNotFound,
			"%s", "npm package "+name+" has no latest version")
	}
	return latest, nil
}

// queryWithFilters appends npm text qualifiers (author:, keywords:,
// scope:) to the free-text query.
func queryWithFilters(query string, filters map[string]string) string {
	if len(filters) == 0 {
		return query
	}
	var b strings.Builder
	b.WriteString(query)
	for _, key := range []string{"author", "keywords", "scope"} {
		if v, ok := filters[key]; ok && v != "" {
			fmt.Fprintf(&b, " %s:%s", key, v)
		}
	}
	return b.String()
}
