package sonatype

import (
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
	"github.com/pkggallery/pkggallery/pkg/gallery"
	"github.com/pkggallery/pkggallery/pkg/integrations"
	sonatypeapi "github.com/pkggallery/pkggallery/pkg/integrations/sonatype"
)

func wrapFetch(err error, name string) error {
	if errors.Is(err, integrations.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.ErrCodePackageNotFound, err, "maven artifact not found: %s", name)
	}
	return pkgerrors.Wrap(pkgerrors.ErrCodeNetwork, err, "maven central request failed")
}

func coordinate(d *sonatypeapi.Doc) string {
	return d.Group + ":" + d.Artifact
}

func resultFromSearch(resp *sonatypeapi.SearchResponse, from, size int) *gallery.SearchResult {
	pkgs := make([]gallery.PackageSummary, 0, len(resp.Response.Docs))
	for i := range resp.Response.Docs {
		d := &resp.Response.Docs[i]
		pkgs = append(pkgs, gallery.PackageSummary{
			Name:        coordinate(d),
			Version:     d.LatestVersion,
			Description: fmt.Sprintf("%s (%s, %d versions)", d.Artifact, d.Packaging, d.VersionCount),
			Date:        time.UnixMilli(d.Timestamp).UTC(),
		})
	}
	return &gallery.SearchResult{
		Packages: pkgs,
		Total:    resp.Response.NumFound,
		HasMore:  from+size < resp.Response.NumFound,
	}
}

func infoFromDoc(d *sonatypeapi.Doc) *gallery.PackageInfo {
	return &gallery.PackageInfo{
		Name:        coordinate(d),
		Version:     d.LatestVersion,
		PublishedAt: time.UnixMilli(d.Timestamp).UTC(),
	}
}

func detailsFromVersionDoc(d *sonatypeapi.Doc) *gallery.PackageDetails {
	return &gallery.PackageDetails{
		PackageInfo: gallery.PackageInfo{
			Name:        coordinate(d),
			Version:     d.Version,
			PublishedAt: time.UnixMilli(d.Timestamp).UTC(),
		},
	}
}

func versionsFromDocs(docs []sonatypeapi.Doc) []gallery.VersionInfo {
	out := make([]gallery.VersionInfo, 0, len(docs))
	for i := range docs {
		out = append(out, gallery.VersionInfo{
			Version:     docs[i].Version,
			PublishedAt: time.UnixMilli(docs[i].Timestamp).UTC(),
		})
	}
	return out
}

func mavenSnippet(group, artifact, version string) string {
	if version == "" {
		return fmt.Sprintf("<dependency>\n    <groupId>%s</groupId>\n    <artifactId>%s</artifactId>\n</dependency>", group, artifact)
	}
	return fmt.Sprintf("<dependency>\n    <groupId>%s</groupId>\n    <artifactId>%s</artifactId>\n    <version>%s</version>\n</dependency>", group, artifact, version)
}

func gradleSnippet(group, artifact, version string) string {
	if version == "" {
		return fmt.Sprintf("implementation '%s:%s'", group, artifact)
	}
	return fmt.Sprintf("implementation '%s:%s:%s'", group, artifact, version)
}
