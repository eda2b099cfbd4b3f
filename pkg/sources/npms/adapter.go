// Package npms adapts the npms.io analysis API to the gallery adapter
// contract. It is the fallback source for npm projects and additionally
// exposes npms.io's quality scoring.
package npms

import (
	"context"
	"fmt"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
	npmsapi "github.com/pkggallery/pkggallery/pkg/integrations/npms"
)

const defaultPageSize = 25

// Adapter serves npm projects from api.npms.io.
//
// npms.io analyzes the latest release of each package; Versions therefore
// lists only the analyzed version. The npm registry adapter stays the
// primary source for full version history.
type Adapter struct {
	gallery.Base
	api *npmsapi.Client
}

// New creates the npms.io adapter.
func New(api *npmsapi.Client) *Adapter {
	return &Adapter{
		Base: gallery.NewBase(gallery.Metadata{
			Source:      gallery.SourceNPMS,
			DisplayName: "npms.io",
			Project:     gallery.ProjectNPM,
			SortOptions: []string{"relevance"},
			Filters:     []string{"author", "keywords", "not"},
			Capabilities: []gallery.Capability{
				gallery.CapInstallation,
				gallery.CapSuggestions,
				gallery.CapQualityScore,
			},
		}),
		api: api,
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

	resp, err := a.api.Search(ctx, queryWithFilters(opts.Query, opts.Filters), opts.From, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "npms.io search failed")
	}

	res := resultFromSearch(resp, opts.From, size)
	if opts.ExactName != "" {
		gallery.EnsureExactMatch(ctx, a, res, opts.ExactName)
	}
	return res, nil
}

func (a *Adapter) PackageInfo(ctx context.Context, name string) (*gallery.PackageInfo, error) {
	if err := pkgerrors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	doc, err := a.api.FetchPackage(ctx, name, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	return infoFromPackage(doc), nil
}

func (a *Adapter) PackageDetails(ctx context.Context, name, version string) (*gallery.PackageDetails, error) {
	if err := pkgerrors.ValidatePackageName(name); err != nil {
		return nil, err
	}
	doc, err := a.api.FetchPackage(ctx, name, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	if version != "" && version != doc.Collected.Metadata.Version {
		return nil, pkgerrors.New(pkgerrors.ErrCodeVersionNotFound,
			"npms.io has only the analyzed version %s of %s", doc.Collected.Metadata.Version, name)
	}
	return detailsFromPackage(doc), nil
}

func (a *Adapter) Versions(ctx context.Context, name string) ([]gallery.VersionInfo, error) {
	info, err := a.PackageInfo(ctx, name)
	if err != nil {
		return nil, err
	}
	return []gallery.VersionInfo{{
		Version:     info.Version,
		PublishedAt: info.PublishedAt,
	}}, nil
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

func (a *Adapter) Suggestions(ctx context.Context, query string, size int) ([]gallery.PackageSummary, error) {
	if size <= 0 {
		size = 5
	}
	hits, err := a.api.Suggestions(ctx, query, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "npms.io suggestions failed")
	}
	out := make([]gallery.PackageSummary, 0, len(hits))
	for _, h := range hits {
		out = append(out, summaryFromHit(h))
	}
	return out, nil
}

func (a *Adapter) QualityScore(ctx context.Context, name string) (*gallery.Score, error) {
	doc, err := a.api.FetchPackage(ctx, name, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	return &gallery.Score{
		Final:       doc.Score.Final,
		Quality:     doc.Score.Detail.Quality,
		Popularity:  doc.Score.Detail.Popularity,
		Maintenance: doc.Score.Detail.Maintenance,
	}, nil
}
