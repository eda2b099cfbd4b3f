package gallery

import (
	"os"
	"path/filepath"
	"testing"
)

// mapFinder answers from a fixed set of file names present in the root.
type mapFinder struct {
	files []string
	calls int
}

func (f *mapFinder) FindFile(root, pattern string) (string, bool) {
	f.calls++
	for _, name := range f.files {
		if ok, _ := filepath.Match(pattern, name); ok {
			return filepath.Join(root, name), true
		}
	}
	return "", false
}

func TestDetectorPriority(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  ProjectType
	}{
		{"npm", []string{"package.json", "index.js"}, ProjectNPM},
		{"maven", []string{"pom.xml"}, ProjectMaven},
		{"dotnet csproj", []string{"App.csproj"}, ProjectDotnet},
		{"dotnet fsproj", []string{"Lib.fsproj"}, ProjectDotnet},
		{"dotnet packages.config", []string{"packages.config"}, ProjectDotnet},
		{"dotnet central packages", []string{"Directory.Packages.props"}, ProjectDotnet},
		{"dotnet paket", []string{"paket.dependencies"}, ProjectDotnet},
		{"go", []string{"go.mod", "main.go"}, ProjectGo},
		{"none", []string{"README.md"}, ProjectUnknown},
		// npm leads the priority order when both markers exist.
		{"npm before go", []string{"go.mod", "package.json"}, ProjectNPM},
		{"maven before dotnet", []string{"App.csproj", "pom.xml"}, ProjectMaven},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(&mapFinder{files: tt.files})
			if got := d.Detect("/work").Primary; got != tt.want {
				t.Errorf("Primary = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectorMultipleEcosystems(t *testing.T) {
	d := NewDetector(&mapFinder{files: []string{"go.mod", "package.json", "App.csproj"}})

	got := d.Detect("/work")
	want := []ProjectType{ProjectNPM, ProjectDotnet, ProjectGo}
	if len(got.Types) != len(want) {
		t.Fatalf("Types = %v, want %v", got.Types, want)
	}
	for i := range want {
		if got.Types[i] != want[i] {
			t.Errorf("Types[%d] = %s, want %s", i, got.Types[i], want[i])
		}
	}
	if got.Primary != ProjectNPM {
		t.Errorf("Primary = %s, want npm", got.Primary)
	}
	if len(got.Projects) != 3 {
		t.Fatalf("Projects = %d entries, want 3", len(got.Projects))
	}
	// One entry per ecosystem, each naming the marker that revealed it.
	if got.Projects[0].Marker != filepath.Join("/work", "package.json") {
		t.Errorf("npm marker = %s", got.Projects[0].Marker)
	}
	if got.Projects[1].Project != ProjectDotnet || got.Projects[2].Project != ProjectGo {
		t.Errorf("project order = [%s %s %s]", got.Projects[0].Project, got.Projects[1].Project, got.Projects[2].Project)
	}
	for _, info := range got.Projects {
		if info.Root != "/work" {
			t.Errorf("Root = %s, want /work", info.Root)
		}
	}
}

func TestDetectorEmptyWorkspace(t *testing.T) {
	d := NewDetector(&mapFinder{})

	got := d.Detect("/work")
	if got.Primary != ProjectUnknown {
		t.Errorf("Primary = %s, want unknown", got.Primary)
	}
	if len(got.Types) != 0 || len(got.Projects) != 0 {
		t.Errorf("empty workspace should detect nothing, got %v", got)
	}
}

func TestDetectorEmptyRoot(t *testing.T) {
	f := &mapFinder{files: []string{"package.json"}}
	d := NewDetector(f)
	if got := d.Detect("").Primary; got != ProjectUnknown {
		t.Errorf("Detect(\"\") = %s, want unknown", got)
	}
	if f.calls != 0 {
		t.Error("empty root should not touch the finder")
	}
}

func TestProjectTypeForFile(t *testing.T) {
	tests := []struct {
		path string
		want ProjectType
	}{
		{"/w/package.json", ProjectNPM},
		{"/w/sub/pom.xml", ProjectMaven},
		{"/w/go.mod", ProjectGo},
		{"/w/App.csproj", ProjectDotnet},
		{"/w/App.CSPROJ", ProjectDotnet},
		{"/w/Lib.vbproj", ProjectDotnet},
		{"/w/packages.config", ProjectDotnet},
		{"/w/Directory.Packages.props", ProjectDotnet},
		{"/w/paket.dependencies", ProjectDotnet},
		{"/w/Cargo.toml", ProjectUnknown},
		{"/w/readme.txt", ProjectUnknown},
	}
	for _, tt := range tests {
		if got := ProjectTypeForFile(tt.path); got != tt.want {
			t.Errorf("ProjectTypeForFile(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestFSFinder(t *testing.T) {
	root := t.TempDir()
	mustWrite := func(parts ...string) {
		path := filepath.Join(parts...)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite(root, "sub", "pom.xml")
	mustWrite(root, "node_modules", "dep", "package.json")

	d := NewDetector(nil)
	// pom.xml in a subdirectory is found; package.json exists only under
	// node_modules and must be ignored, so maven is the only detected
	// ecosystem despite npm's higher priority.
	got := d.Detect(root)
	if got.Primary != ProjectMaven {
		t.Errorf("Primary = %s, want maven", got.Primary)
	}
	if len(got.Types) != 1 {
		t.Errorf("Types = %v, want [maven]", got.Types)
	}
	if len(got.Projects) != 1 || got.Projects[0].Marker != filepath.Join(root, "sub", "pom.xml") {
		t.Errorf("Projects = %v, want the pom.xml marker", got.Projects)
	}
}
