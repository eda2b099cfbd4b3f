package nuget

import (
	"testing"

	"github.com/pkggallery/pkggallery/pkg/gallery"
	nugetapi "github.com/pkggallery/pkggallery/pkg/integrations/nuget"
)

func TestResultFromSearch(t *testing.T) {
	resp := &nugetapi.SearchResponse{
		TotalHits: 80,
		Data: []nugetapi.SearchHit{
			{
				ID:             "Newtonsoft.Json",
				Version:        "13.0.3",
				Description:    "Json.NET",
				Authors:        []string{"James Newton-King"},
				Tags:           []string{"json"},
				ProjectURL:     "https://www.newtonsoft.com/json",
				TotalDownloads: 4000000000,
			},
		},
	}
	res := resultFromSearch(resp, 0, 25)
	if res.Total != 80 || !res.HasMore {
		t.Errorf("total = %d, hasMore = %v", res.Total, res.HasMore)
	}
	p := res.Packages[0]
	if p.Name != "Newtonsoft.Json" || p.Author != "James Newton-King" {
		t.Errorf("summary = %+v", p)
	}
	if p.Links["homepage"] != "https://www.newtonsoft.com/json" {
		t.Errorf("links = %v", p.Links)
	}
}

func TestFilterByPackageType(t *testing.T) {
	resp := &nugetapi.SearchResponse{
		TotalHits: 2,
		Data: []nugetapi.SearchHit{
			{ID: "Some.Library", PackageTypes: []nugetapi.PackageType{{Name: "Dependency"}}},
			{ID: "Some.Tool", PackageTypes: []nugetapi.PackageType{{Name: "DotnetTool"}}},
		},
	}
	res := filterByPackageType(resp, resultFromSearch(resp, 0, 25), "dotnettool")
	if len(res.Packages) != 1 || res.Packages[0].Name != "Some.Tool" {
		t.Errorf("filtered = %+v", res.Packages)
	}
}

func TestDetailsFromEntry(t *testing.T) {
	hit := &nugetapi.SearchHit{
		ID:          "Serilog",
		Version:     "3.1.1",
		Description: "Structured logging",
		Authors:     []string{"Serilog Contributors"},
	}
	entry := &nugetapi.CatalogEntry{
		ID:                "Serilog",
		Version:           "3.1.0",
		LicenseExpression: "Apache-2.0",
		Published:         "2023-11-10T12:00:00Z",
		DependencyGroups: []nugetapi.DependencyGroup{
			{
				TargetFramework: "net6.0",
				Dependencies:    []nugetapi.Dependency{{ID: "System.Text.Json", Range: "[6.0.0, )"}},
			},
			{
				TargetFramework: "netstandard2.0",
				Dependencies:    []nugetapi.Dependency{{ID: "System.Text.Json", Range: "[4.7.0, )"}},
			},
		},
	}
	d := detailsFromEntry(hit, entry)
	if d.Version != "3.1.0" || d.License != "Apache-2.0" {
		t.Errorf("details = %+v", d.PackageInfo)
	}
	// First group wins on duplicate dependency IDs.
	if d.Dependencies["System.Text.Json"] != "[6.0.0, )" {
		t.Errorf("dependencies = %v", d.Dependencies)
	}
	if d.PublishedAt.IsZero() {
		t.Error("published date not parsed")
	}
}

func TestVersionsOrder(t *testing.T) {
	idx := &nugetapi.RegistrationIndex{
		Items: []nugetapi.RegistrationPage{
			{Items: []nugetapi.RegistrationLeaf{
				{CatalogEntry: nugetapi.CatalogEntry{Version: "1.0.0"}},
				{CatalogEntry: nugetapi.CatalogEntry{Version: "2.0.0"}},
			}},
		},
	}
	vs := versionsFromRegistration(idx)
	if vs[0].Version != "2.0.0" || vs[1].Version != "1.0.0" {
		t.Errorf("registration order = %v", vs)
	}

	flat := versionsFromFlat([]string{"1.0.0", "1.1.0", "2.0.0"})
	if flat[0].Version != "2.0.0" || flat[2].Version != "1.0.0" {
		t.Errorf("flat order = %v", flat)
	}
}

func TestCommandsAndSnippets(t *testing.T) {
	a := New(nil, nil)

	got, _ := a.InstallCommand("Serilog", "3.1.1")
	if got != "dotnet add package Serilog --version 3.1.1" {
		t.Errorf("install = %q", got)
	}
	got, _ = a.RemoveCommand("Serilog")
	if got != "dotnet remove package Serilog" {
		t.Errorf("remove = %q", got)
	}

	got, _ = a.CopySnippet("Serilog", "3.1.1", gallery.SnippetPackageReference)
	if got != `<PackageReference Include="Serilog" Version="3.1.1" />` {
		t.Errorf("packagereference = %q", got)
	}
	got, _ = a.CopySnippet("Serilog", "", "")
	if got != `<PackageReference Include="Serilog" />` {
		t.Errorf("versionless packagereference = %q", got)
	}
	got, _ = a.CopySnippet("Serilog", "3.1.1", gallery.SnippetPaket)
	if got != "nuget Serilog 3.1.1" {
		t.Errorf("paket = %q", got)
	}
	if _, err := a.CopySnippet("Serilog", "", "gradle"); err == nil {
		t.Error("gradle is not a nuget format")
	}
}
