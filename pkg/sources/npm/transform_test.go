package npm

import (
	"testing"
	"time"

	npmapi "github.com/pkggallery/pkggallery/pkg/integrations/npm"
)

func samplePackageDoc() *npmapi.PackageDocument {
	return &npmapi.PackageDocument{
		Name:        "left-pad",
		Description: "String left pad",
		DistTags:    map[string]string{"latest": "1.3.0"},
		Versions: map[string]npmapi.VersionDetails{
			"1.0.0": {Version: "1.0.0"},
			"1.3.0": {
				Version:      "1.3.0",
				Dependencies: map[string]string{"wcwidth": "^1.0.0"},
				Deprecated:   "use String.prototype.padStart()",
			},
		},
		Time: map[string]string{
			"1.0.0": "2016-03-22T20:04:31.000Z",
			"1.3.0": "2018-04-10T18:03:48.000Z",
		},
		Maintainers: []npmapi.Person{{Name: "stevemao", Email: "x@example.com"}},
		Keywords:    []string{"leftpad", "pad"},
		License:     "WTFPL",
		Author:      map[string]any{"name": "azer"},
		Repository:  map[string]any{"type": "git", "url": "git+https://github.com/left-pad/left-pad.git"},
		HomePage:    "https://github.com/left-pad/left-pad",
		Readme:      "# left-pad",
	}
}

func TestInfoFromDoc(t *testing.T) {
	info := infoFromDoc(samplePackageDoc())
	if info.Name != "left-pad" || info.Version != "1.3.0" {
		t.Errorf("info = %s@%s", info.Name, info.Version)
	}
	if info.License != "WTFPL" {
		t.Errorf("license = %q", info.License)
	}
	if info.Author != "azer" {
		t.Errorf("author = %q", info.Author)
	}
	if info.Repository != "https://github.com/left-pad/left-pad" {
		t.Errorf("repository = %q", info.Repository)
	}
	want := time.Date(2018, 4, 10, 18, 3, 48, 0, time.UTC)
	if !info.PublishedAt.Equal(want) {
		t.Errorf("published = %v", info.PublishedAt)
	}
}

func TestDetailsFromDoc(t *testing.T) {
	d := detailsFromDoc(samplePackageDoc(), "1.3.0")
	if d.Version != "1.3.0" {
		t.Errorf("version = %s", d.Version)
	}
	if d.Dependencies["wcwidth"] != "^1.0.0" {
		t.Errorf("dependencies = %v", d.Dependencies)
	}
	if d.Deprecated == "" {
		t.Error("deprecation notice lost")
	}
	if d.Readme != "# left-pad" {
		t.Errorf("readme = %q", d.Readme)
	}
	if len(d.Maintainers) != 1 || d.Maintainers[0].Name != "stevemao" {
		t.Errorf("maintainers = %v", d.Maintainers)
	}
	if d.DistTags["latest"] != "1.3.0" {
		t.Errorf("dist tags = %v", d.DistTags)
	}
}

func TestVersionsFromDocOrder(t *testing.T) {
	vs := versionsFromDoc(samplePackageDoc())
	if len(vs) != 2 {
		t.Fatalf("got %d versions", len(vs))
	}
	if vs[0].Version != "1.3.0" || vs[1].Version != "1.0.0" {
		t.Errorf("order = [%s %s], want newest first", vs[0].Version, vs[1].Version)
	}
	if vs[0].Deprecated == "" {
		t.Error("deprecation notice lost on 1.3.0")
	}
}

func TestResultFromSearch(t *testing.T) {
	resp := &npmapi.SearchResponse{
		Total: 120,
		Objects: []npmapi.SearchObject{
			{
				Package: npmapi.SearchPackage{
					Name:        "react",
					Version:     "18.2.0",
					Description: "declarative views",
					Date:        "2023-06-01T00:00:00.000Z",
					Publisher:   npmapi.Person{Name: "fb"},
					Links:       map[string]string{"npm": "https://www.npmjs.com/package/react"},
				},
				Score: npmapi.SearchScore{Final: 0.93},
			},
		},
	}
	res := resultFromSearch(resp, 0, 25)
	if res.Total != 120 || !res.HasMore {
		t.Errorf("total = %d, hasMore = %v", res.Total, res.HasMore)
	}
	p := res.Packages[0]
	if p.Name != "react" || p.Author != "fb" || p.Score != 0.93 {
		t.Errorf("summary = %+v", p)
	}
	if p.Date.IsZero() {
		t.Error("date not parsed")
	}

	// Last page.
	res = resultFromSearch(resp, 100, 25)
	if res.HasMore {
		t.Error("from 100 size 25 of 120 should be the last page")
	}
}

func TestLicenseString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"MIT", "MIT"},
		{map[string]any{"type": "BSD-3-Clause", "url": "x"}, "BSD-3-Clause"},
		{nil, ""},
		{42.0, ""},
	}
	for _, tt := range tests {
		if got := licenseString(tt.in); got != tt.want {
			t.Errorf("licenseString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPersonName(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"Jane Doe <jane@example.com>", "Jane Doe"},
		{"Jane Doe (https://example.com)", "Jane Doe"},
		{"Jane Doe", "Jane Doe"},
		{map[string]any{"name": "azer"}, "azer"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := personName(tt.in); got != tt.want {
			t.Errorf("personName(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQueryWithFilters(t *testing.T) {
	got := queryWithFilters("http client", map[string]string{
		"author":   "sindresorhus",
		"keywords": "cli",
		"ignored":  "x",
	})
	want := "http client author:sindresorhus keywords:cli"
	if got != want {
		t.Errorf("query = %q, want %q", got, want)
	}
	if got := queryWithFilters("react", nil); got != "react" {
		t.Errorf("no filters: %q", got)
	}
}

func TestInstallCommands(t *testing.T) {
	a := New(nil, nil, nil, nil)
	tests := []struct {
		got  func() (string, error)
		want string
	}{
		{func() (string, error) { return a.InstallCommand("react", "18.2.0") }, "npm install react@18.2.0"},
		{func() (string, error) { return a.InstallCommand("react", "") }, "npm install react"},
		{func() (string, error) { return a.UpdateCommand("react") }, "npm update react"},
		{func() (string, error) { return a.RemoveCommand("react") }, "npm uninstall react"},
	}
	for _, tt := range tests {
		got, err := tt.got()
		if err != nil {
			t.Errorf("unexpected error: %v", err)
			continue
		}
		if got != tt.want {
			t.Errorf("command = %q, want %q", got, tt.want)
		}
	}
}
