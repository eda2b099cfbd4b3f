package nuget

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
	"github.com/pkggallery/pkggallery/pkg/integrations"
	nugetapi "github.com/pkggallery/pkggallery/pkg/integrations/nuget"
	"github.com/pkggallery/pkggallery/pkg/sources"
)

func wrapFetch(err error, name string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.ErrCodePackageNotFound, err, "nuget package not found: %s", name)
	}
	return pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "nuget request failed")
}

func summaryFromHit(h *nugetapi.SearchHit) gallery.PackageSummary {
	return gallery.PackageSummary{
		Name:        h.ID,
		Version:     h.Version,
		Description: h.Description,
		Keywords:    h.Tags,
		Author:      strings.Join(h.Authors, ", "),
		Links:       hitLinks(h),
	}
}

func hitLinks(h *nugetapi.SearchHit) map[string]string {
	links := map[string]string{
		"nuget": "https://www.nuget.org/packages/" + h.ID,
	}
	if h.ProjectURL != "" {
		links["homepage"] = h.ProjectURL
	}
	return links
}

func resultFromSearch(resp *nugetapi.SearchResponse, from, size int) *gallery.SearchResult {
	pkgs := make([]gallery.PackageSummary, 0, len(resp.Data))
	for i := range resp.Data {
		pkgs = append(pkgs, summaryFromHit(&resp.Data[i]))
	}
	return &gallery.SearchResult{
		Packages: pkgs,
		Total:    resp.TotalHits,
		HasMore:  from+size < resp.TotalHits,
	}
}

// filterByPackageType keeps only hits declaring the requested package type
// (Dependency, DotnetTool, Template). The search service accepts the same
// filter server-side but not in combination with semVerLevel on all
// deployments, so it is applied here.
func filterByPackageType(resp *nugetapi.SearchResponse, res *gallery.SearchResult, want string) *gallery.SearchResult {
	kept := make([]gallery.PackageSummary, 0, len(res.Packages))
	for i := range resp.Data {
		for _, pt := range resp.Data[i].PackageTypes {
			if strings.EqualFold(pt.Name, want) {
				kept = append(kept, res.Packages[i])
				break
			}
		}
	}
	res.Packages = kept
	return res
}

func infoFromHit(h *nugetapi.SearchHit) *gallery.PackageInfo {
	return &gallery.PackageInfo{
		Name:        h.ID,
		Version:     h.Version,
		Description: h.Description,
		Author:      strings.Join(h.Authors, ", "),
		HomePage:    h.ProjectURL,
		Keywords:    h.Tags,
		Downloads:   h.TotalDownloads,
	}
}

func detailsFromEntry(h *nugetapi.SearchHit, entry *nugetapi.CatalogEntry) *gallery.PackageDetails {
	info := infoFromHit(h)
	info.Version = entry.Version
	info.License = entry.LicenseExpression
	info.PublishedAt = sources.ParseTime(entry.Published)

	deps := make(map[string]string)
	for _, g := range entry.DependencyGroups {
		for _, d := range g.Dependencies {
			if _, ok := deps[d.ID]; !ok {
				deps[d.ID] = d.Range
			}
		}
	}
	details := &gallery.PackageDetails{
		PackageInfo:  *info,
		Dependencies: deps,
	}
	if entry.Deprecation != nil {
		details.Deprecated = entry.Deprecation.Message
		if details.Deprecated == "" {
			details.Deprecated = strings.Join(entry.Deprecation.Reasons, ", ")
		}
	}
	return details
}

func findCatalogEntry(idx *nugetapi.RegistrationIndex, version string) *nugetapi.CatalogEntry {
	for i := range idx.Items {
		for j := range idx.Items[i].Items {
			e := &idx.Items[i].Items[j].CatalogEntry
			if strings.EqualFold(e.Version, version) {
				return e
			}
		}
	}
	return nil
}

// versionsFromRegistration lists versions newest first from the inline
// registration pages.
func versionsFromRegistration(idx *nugetapi.RegistrationIndex) []gallery.VersionInfo {
	var out []gallery.VersionInfo
	for i := range idx.Items {
		for j := range idx.Items[i].Items {
			e := &idx.Items[i].Items[j].CatalogEntry
			v := gallery.VersionInfo{
				Version:     e.Version,
				PublishedAt: sources.ParseTime(e.Published),
			}
			if e.Deprecation != nil {
				v.Deprecated = e.Deprecation.Message
			}
			out = append(out, v)
		}
	}
	// Registration pages are oldest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// versionsFromFlat lists versions newest first from the flat container,
// which carries no publish dates.
func versionsFromFlat(versions []string) []gallery.VersionInfo {
	out := make([]gallery.VersionInfo, 0, len(versions))
	for i := len(versions) - 1; i >= 0; i-- {
		out = append(out, gallery.VersionInfo{Version: versions[i]})
	}
	return out
}

func packageReferenceSnippet(name, version string) string {
	if version == "" {
		return fmt.Sprintf(`<PackageReference Include="%s" />`, name)
	}
	return fmt.Sprintf(`<PackageReference Include="%s" Version="%s" />`, name, version)
}

func paketSnippet(name, version string) string {
	if version == "" {
		return "nuget " + name
	}
	return fmt.Sprintf("nuget %s %s", name, version)
}
