package npms

import (
	"errors"
	"fmt"
	"strings"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
	"github.com/pkggallery/pkggallery/pkg/integrations"
	npmsapi "github.com/pkggallery/pkggallery/pkg/integrations/npms"
	"github.com/pkggallery/pkggallery/pkg/sources"
)

func wrapFetch(err error, name string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.ErrCodePackageNotFound, err, "npms.io has no analysis for %s", name)
	}
	return pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "npms.io request failed")
}

// queryWithFilters appends npms.io qualifiers (author:, keywords:,
// not:deprecated and friends) to the free-text query.
func queryWithFilters(query string, filters map[string]string) string {
	if len(filters) == 0 {
		return query
	}
	var b strings.Builder
	b.WriteString(query)
	for _, key := range []string{"author", "keywords", "not"} {
		if v, ok := filters[key]; ok && v != "" {
			fmt.Fprintf(&b, " %s:%s", key, v)
		}
	}
	return b.String()
}

func summaryFromHit(hit npmsapi.SearchResult) gallery.PackageSummary {
	p := hit.Package
	return gallery.PackageSummary{
		Name:        p.Name,
		Version:     p.Version,
		Description: p.Description,
		Keywords:    p.Keywords,
		Author:      p.Publisher.Username,
		Date:        sources.ParseTime(p.Date),
		Links:       p.Links,
		Score:       hit.Score.Final,
	}
}

func resultFromSearch(resp *npmsapi.SearchResponse, from, size int) *gallery.SearchResult {
	pkgs := make([]gallery.PackageSummary, 0, len(resp.Results))
	for _, hit := range resp.Results {
		pkgs = append(pkgs, summaryFromHit(hit))
	}
	return &gallery.SearchResult{
		Packages: pkgs,
		Total:    resp.Total,
		HasMore:  from+size < resp.Total,
	}
}

func infoFromPackage(doc *npmsapi.PackageResponse) *gallery.PackageInfo {
	m := doc.Collected.Metadata
	info := &gallery.PackageInfo{
		Name:        m.Name,
		Version:     m.Version,
		Description: m.Description,
		License:     m.License,
		Author:      m.Publisher.Username,
		HomePage:    m.Links["homepage"],
		Repository:  integrations.NormalizeRepoURL(m.Links["repository"]),
		Keywords:    m.Keywords,
		PublishedAt: sources.ParseTime(m.Date),
	}
	// Sum the collected download windows for a rough recent-count figure.
	var downloads float64
	for _, w := range doc.Collected.NPM.Downloads {
		downloads += w.Count
	}
	info.Downloads = int64(downloads)
	return info
}

func detailsFromPackage(doc *npmsapi.PackageResponse) *gallery.PackageDetails {
	m := doc.Collected.Metadata
	maintainers := make([]gallery.Maintainer, 0, len(m.Maintainers))
	for _, p := range m.Maintainers {
		maintainers = append(maintainers, gallery.Maintainer{Name: p.Username, Email: p.Email})
	}
	return &gallery.PackageDetails{
		PackageInfo:     *infoFromPackage(doc),
		Readme:          m.Readme,
		Dependencies:    m.Dependencies,
		DevDependencies: m.DevDependencies,
		Maintainers:     maintainers,
	}
}
