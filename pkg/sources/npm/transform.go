package npm

import (
	"errors"
	"sort"
	"strings"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
	"github.com/pkggallery/pkggallery/pkg/integrations"
	npmapi "github.com/pkggallery/pkggallery/pkg/integrations/npm"
	"github.com/pkggallery/pkggallery/pkg/sources"
)

func wrapFetch(err error, name string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.ErrCodePackageNotFound, err, "npm package not found: %s", name)
	}
	return pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "npm registry request failed")
}

func resultFromSearch(resp *npmapi.SearchResponse, from, size int) *gallery.SearchResult {
	pkgs := make([]gallery.PackageSummary, 0, len(resp.Objects))
	for _, obj := range resp.Objects {
		p := obj.Package
		pkgs = append(pkgs, gallery.PackageSummary{
			Name:        p.Name,
			Version:     p.Version,
			Description: p.Description,
			Keywords:    p.Keywords,
			Author:      p.Publisher.Name,
			Date:        sources.ParseTime(p.Date),
			Links:       p.Links,
			Score:       obj.Score.Final,
		})
	}
	return &gallery.SearchResult{
		Packages: pkgs,
		Total:    resp.Total,
		HasMore:  from+size < resp.Total,
	}
}

func sortByName(pkgs []gallery.PackageSummary) {
	sort.Slice(pkgs, func(i, j int) bool {
		return pkgs[i].Name < pkgs[j].Name
	})
}

func infoFromDoc(doc *npmapi.PackageDocument) *gallery.PackageInfo {
	latest := doc.DistTags["latest"]
	info := &gallery.PackageInfo{
		Name:        doc.Name,
		Version:     latest,
		Description: doc.Description,
		License:     licenseString(doc.License),
		Author:      personName(doc.Author),
		HomePage:    doc.HomePage,
		Repository:  repositoryURL(doc.Repository),
		Keywords:    doc.Keywords,
		PublishedAt: sources.ParseTime(doc.Time[latest]),
	}
	if v, ok := doc.Versions[latest]; ok {
		if info.Description == "" {
			info.Description = v.Description
		}
		if info.HomePage == "" {
			info.HomePage = v.HomePage
		}
		if info.License == "" {
			info.License = licenseString(v.License)
		}
	}
	return info
}

func detailsFromDoc(doc *npmapi.PackageDocument, version string) *gallery.PackageDetails {
	info := infoFromDoc(doc)
	info.Version = version
	info.PublishedAt = sources.ParseTime(doc.Time[version])

	v := doc.Versions[version]
	maintainers := make([]gallery.Maintainer, 0, len(doc.Maintainers))
	for _, m := range doc.Maintainers {
		maintainers = append(maintainers, gallery.Maintainer{Name: m.Name, Email: m.Email})
	}
	return &gallery.PackageDetails{
		PackageInfo:     *info,
		Readme:          doc.Readme,
		Dependencies:    v.Dependencies,
		DevDependencies: v.DevDependencies,
		Maintainers:     maintainers,
		DistTags:        doc.DistTags,
		Deprecated:      v.Deprecated,
	}
}

func versionsFromDoc(doc *npmapi.PackageDocument) []gallery.VersionInfo {
	out := make([]gallery.VersionInfo, 0, len(doc.Versions))
	for ver, details := range doc.Versions {
		out = append(out, gallery.VersionInfo{
			Version:     ver,
			PublishedAt: sources.ParseTime(doc.Time[ver]),
			Deprecated:  details.Deprecated,
		})
	}
	// Newest first; ties (missing publish times) fall back to the
	// version string for a stable order.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].Version > out[j].Version
	})
	return out
}

// licenseString handles the two shapes npm documents use: a plain SPDX
// string or an object with a "type" field.
func licenseString(v any) string {
	switch l := v.(type) {
	case string:
		return l
	case map[string]any:
		if t, ok := l["type"].(string); ok {
			return t
		}
	}
	return ""
}

// personName handles string and {"name": ...} author shapes.
func personName(v any) string {
	switch p := v.(type) {
	case string:
		// "Name <email> (url)" form; keep the name part.
		if i := strings.IndexAny(p, "<("); i > 0 {
			return strings.TrimSpace(p[:i])
		}
		return p
	case map[string]any:
		if n, ok := p["name"].(string); ok {
			return n
		}
	}
	return ""
}

// repositoryURL handles string and {"url": ...} repository shapes and
// normalizes VCS prefixes.
func repositoryURL(v any) string {
	var raw string
	switch r := v.(type) {
	case string:
		raw = r
	case map[string]any:
		raw, _ = r["url"].(string)
	}
	return integrations.NormalizeRepoURL(raw)
}
