package npms

import (
	"testing"

	npmsapi "github.com/pkggallery/pkggallery/pkg/integrations/npms"
)

func samplePackageResponse() *npmsapi.PackageResponse {
	var doc npmsapi.PackageResponse
	doc.Collected.Metadata = npmsapi.Metadata{
		Name:        "chalk",
		Version:     "5.3.0",
		Description: "Terminal string styling",
		Keywords:    []string{"color", "terminal"},
		Date:        "2023-06-30T10:00:00.000Z",
		License:     "MIT",
		Links: map[string]string{
			"homepage":   "https://github.com/chalk/chalk#readme",
			"repository": "git+https://github.com/chalk/chalk.git",
		},
		Publisher:    npmsapi.Publisher{Username: "sindresorhus"},
		Maintainers:  []npmsapi.Publisher{{Username: "sindresorhus", Email: "s@example.com"}},
		Dependencies: map[string]string{},
		Readme:       "# chalk",
	}
	doc.Collected.NPM.Downloads = []npmsapi.DownloadWindow{
		{Count: 1000.0},
		{Count: 2500.0},
	}
	doc.Score = npmsapi.Score{Final: 0.95}
	doc.Score.Detail.Quality = 0.98
	doc.Score.Detail.Popularity = 0.91
	doc.Score.Detail.Maintenance = 0.96
	return &doc
}

func TestInfoFromPackage(t *testing.T) {
	info := infoFromPackage(samplePackageResponse())
	if info.Name != "chalk" || info.Version != "5.3.0" {
		t.Errorf("info = %s@%s", info.Name, info.Version)
	}
	if info.Author != "sindresorhus" {
		t.Errorf("author = %q", info.Author)
	}
	if info.Repository != "https://github.com/chalk/chalk" {
		t.Errorf("repository = %q", info.Repository)
	}
	if info.Downloads != 3500 {
		t.Errorf("downloads = %d, want summed windows", info.Downloads)
	}
	if info.PublishedAt.IsZero() {
		t.Error("date not parsed")
	}
}

func TestDetailsFromPackage(t *testing.T) {
	d := detailsFromPackage(samplePackageResponse())
	if d.Readme != "# chalk" {
		t.Errorf("readme = %q", d.Readme)
	}
	if len(d.Maintainers) != 1 || d.Maintainers[0].Name != "sindresorhus" {
		t.Errorf("maintainers = %v", d.Maintainers)
	}
}

func TestResultFromSearch(t *testing.T) {
	resp := &npmsapi.SearchResponse{
		Total: 42,
		Results: []npmsapi.SearchResult{
			{
				Package: npmsapi.PackageSummary{
					Name:      "chalk",
					Version:   "5.3.0",
					Date:      "2023-06-30T10:00:00.000Z",
					Publisher: npmsapi.Publisher{Username: "sindresorhus"},
				},
				Score: npmsapi.Score{Final: 0.95},
			},
		},
	}
	res := resultFromSearch(resp, 0, 25)
	if res.Total != 42 || !res.HasMore {
		t.Errorf("total = %d, hasMore = %v", res.Total, res.HasMore)
	}
	if res.Packages[0].Score != 0.95 || res.Packages[0].Author != "sindresorhus" {
		t.Errorf("summary = %+v", res.Packages[0])
	}
	res = resultFromSearch(resp, 25, 25)
	if res.HasMore {
		t.Error("from 25 size 25 of 42 should be the last page")
	}
}

func TestQueryWithFilters(t *testing.T) {
	got := queryWithFilters("cli", map[string]string{"not": "deprecated", "author": "x"})
	if got != "cli author:x not:deprecated" {
		t.Errorf("query = %q", got)
	}
}

func TestAdapterMetadata(t *testing.T) {
	a := New(nil)
	if a.Source() != "npms-io" {
		t.Errorf("source = %s", a.Source())
	}
	if a.Project() != "npm" {
		t.Errorf("project = %s", a.Project())
	}
}
