// Package nuget adapts the NuGet V3 API to the gallery adapter contract.
// It is the source for dotnet projects.
package nuget

import (
	"context"
	"fmt"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
	nugetapi "github.com/pkggallery/pkggallery/pkg/integrations/nuget"
	"github.com/pkggallery/pkggallery/pkg/integrations/osv"
	"github.com/pkggallery/pkggallery/pkg/sources"
)

const defaultPageSize = 25

// Adapter serves dotnet projects from nuget.org, with security data from
// OSV. Both the dotnet CLI command and manifest snippets are offered
// because packages.config and paket projects have no CLI installer.
type Adapter struct {
	gallery.Base
	api   *nugetapi.Client
	vulns *osv.Client
}

// New creates the NuGet adapter.
func New(api *nugetapi.Client, vulns *osv.Client) *Adapter {
	return &Adapter{
		Base: gallery.NewBase(gallery.Metadata{
			Source:      gallery.SourceNuGet,
			DisplayName: "NuGet Gallery",
			Project:     gallery.ProjectDotnet,
			SortOptions: []string{"relevance"},
			Filters:     []string{"packageType"},
			Capabilities: []gallery.Capability{
				gallery.CapInstallation,
				gallery.CapCopy,
				gallery.CapSecurity,
			},
		}),
		api:   api,
		vulns: vulns,
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

	resp, err := a.api.Search(ctx, opts.Query, opts.From, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "nuget search failed")
	}

	res := resultFromSearch(resp, opts.From, size)
	if t := opts.Filters["packageType"]; t != "" {
		res = filterByPackageType(resp, res, t)
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
	hit, err := a.api.FetchPackage(ctx, name, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	return infoFromHit(hit), nil
}

func (a *Adapter) PackageDetails(ctx context.Context, name, version string) (*gallery.PackageDetails, error) {
	if err := pkgerrors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	hit, err := a.api.FetchPackage(ctx, name, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	idx, err := a.api.FetchRegistration(ctx, name, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	if version == "" {
		version = hit.Version
	}
	entry := findCatalogEntry(idx, version)
	if entry == nil {
		return nil, pkgerrors.New(pkgerrors.ErrCodeVersionNotFound,
			"nuget package %s has no version %s", name, version)
	}
	return detailsFromEntry(hit, entry), nil
}

func (a *Adapter) Versions(ctx context.Context, name string) ([]gallery.VersionInfo, error) {
	if err := pkgerrors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	idx, err := a.api.FetchRegistration(ctx, name, false)
	if err == nil {
		if vs := versionsFromRegistration(idx); len(vs) > 0 {
			return vs, nil
		}
	}
	// Registration pages were external-only; the flat container always
	// has the full list, just without publish dates.
	flat, err := a.api.FetchVersions(ctx, name, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	return versionsFromFlat(flat), nil
}

func (a *Adapter) InstallCommand(name, version string) (string, error) {
	if version != "" {
		return fmt.Sprintf("dotnet add package %s --version %s", name, version), nil
	}
	return "dotnet add package " + name, nil
}

func (a *Adapter) UpdateCommand(name string) (string, error) {
	return "dotnet add package " + name, nil
}

func (a *Adapter) RemoveCommand(name string) (string, error) {
	return "dotnet remove package " + name, nil
}

func (a *Adapter) CopySnippet(name, version, format string) (string, error) {
	switch format {
	case gallery.SnippetPackageReference, "":
		return packageReferenceSnippet(name, version), nil
	case gallery.SnippetPaket:
		return paketSnippet(name, version), nil
	}
	return "", pkgerrors.New(pkgerrors.ErrCodeInvalidInput,
		"unsupported snippet format %q for nuget", format)
}

func (a *Adapter) SecurityInfo(ctx context.Context, name, version string) (*gallery.SecurityInfo, error) {
	vulns, err := a.vulns.Query(ctx, osv.EcosystemNuGet, name, version, false)
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
	refs, err := a.vulns.QueryBatch(ctx, osv.EcosystemNuGet, reqs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "bulk vulnerability lookup failed")
	}
	out := make(map[string]*gallery.SecurityInfo, len(pkgs))
	for i, p := range pkgs {
		out[p.Name] = sources.SecurityFromRefs(refs[i])
	}
	return out, nil
}
