// Package sonatype adapts the Maven Central search API (search.maven.org)
// to the gallery adapter contract. Package names use Maven coordinates in
// "group:artifact" form.
package sonatype

import (
	"context"
	"strings"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
	"github.com/pkggallery/pkggallery/pkg/integrations/osv"
	sonatypeapi "github.com/pkggallery/pkggallery/pkg/integrations/sonatype"
	"github.com/pkggallery/pkggallery/pkg/sources"
)

const defaultPageSize = 25

// Adapter serves maven projects from Maven Central, with security data
// from OSV. Maven has no CLI installer, so installation is replaced by
// copyable manifest snippets (pom.xml and Gradle).
type Adapter struct {
	gallery.Base
	search *sonatypeapi.Client
	vulns  *osv.Client
}

// New creates the Maven Central adapter.
func New(search *sonatypeapi.Client, vulns *osv.Client) *Adapter {
	return &Adapter{
		Base: gallery.NewBase(gallery.Metadata{
			Source:      gallery.SourceSonatype,
			DisplayName: "Maven Central",
			Project:     gallery.ProjectMaven,
			SortOptions: []string{"relevance"},
			Capabilities: []gallery.Capability{
				gallery.CapCopy,
				gallery.CapSecurity,
			},
		}),
		search: search,
		vulns:  vulns,
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

	resp, err := a.search.Search(ctx, opts.Query, opts.From, size)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "maven central search failed")
	}

	res := resultFromSearch(resp, opts.From, size)
	if opts.ExactName != "" {
		gallery.EnsureExactMatch(ctx, a, res, opts.ExactName)
	}
	return res, nil
}

func (a *Adapter) PackageInfo(ctx context.Context, name string) (*gallery.PackageInfo, error) {
	group, artifact, err := splitCoordinate(name)
	if err != nil {
		return nil, err
	}
	doc, err := a.search.FetchArtifact(ctx, group, artifact, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	return infoFromDoc(doc), nil
}

func (a *Adapter) PackageDetails(ctx context.Context, name, version string) (*gallery.PackageDetails, error) {
	group, artifact, err := splitCoordinate(name)
	if err != nil {
		return nil, err
	}
	docs, err := a.search.FetchVersions(ctx, group, artifact, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	if version == "" {
		version = docs[0].Version
	}
	for _, d := range docs {
		if d.Version == version {
			return detailsFromVersionDoc(&d), nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.ErrCodeVersionNotFound,
		"maven artifact %s has no version %s", name, version)
}

func (a *Adapter) Versions(ctx context.Context, name string) ([]gallery.VersionInfo, error) {
	group, artifact, err := splitCoordinate(name)
	if err != nil {
		return nil, err
	}
	docs, err := a.search.FetchVersions(ctx, group, artifact, false)
	if err != nil {
		return nil, wrapFetch(err, name)
	}
	return versionsFromDocs(docs), nil
}

func (a *Adapter) CopySnippet(name, version, format string) (string, error) {
	group, artifact, err := splitCoordinate(name)
	if err != nil {
		return "", err
	}
	switch format {
	case gallery.SnippetMaven, "":
		return mavenSnippet(group, artifact, version), nil
	case gallery.SnippetGradle:
		return gradleSnippet(group, artifact, version), nil
	}
	return "", pkgerrors.New(pkgerrors.ErrCodeInvalidInput,
		"unsupported snippet format %q for maven", format)
}

func (a *Adapter) SecurityInfo(ctx context.Context, name, version string) (*gallery.SecurityInfo, error) {
	if _, _, err := splitCoordinate(name); err != nil {
		return nil, err
	}
	vulns, err := a.vulns.Query(ctx, osv.EcosystemMaven, name, version, false)
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
	refs, err := a.vulns.QueryBatch(ctx, osv.EcosystemMaven, reqs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "bulk vulnerability lookup failed")
	}
	out := make(map[string]*gallery.SecurityInfo, len(pkgs))
	for i, p := range pkgs {
		out[p.Name] = sources.SecurityFromRefs(refs[i])
	}
	return out, nil
}

// splitCoordinate parses "group:artifact" coordinates.
func splitCoordinate(name string) (group, artifact string, err error) {
	group, artifact, ok := strings.Cut(strings.TrimSpace(name), ":")
	if !ok || group == "" || artifact == "" {
		return "", "", pkgerrors.New(pkgerrors.ErrCodeInvalidPackage,
			"maven coordinates must be group:artifact, got %q", name)
	}
	return group, artifact, nil
}
