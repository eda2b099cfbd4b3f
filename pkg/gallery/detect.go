package gallery

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FileFinder locates a workspace file matching a glob pattern.
// Implementations search recursively but skip dependency and
// build-output directories.
type FileFinder interface {
	// FindFile returns the path of the first file under root matching
	// pattern, or ok=false when no such file exists.
	FindFile(root, pattern string) (path string, ok bool)
}

// markerOrder fixes detection priority: project types are reported in
// this order, and the first one present becomes the primary.
var markerOrder = []struct {
	project  ProjectType
	patterns []string
}{
	{ProjectNPM, []string{"package.json"}},
	{ProjectMaven, []string{"pom.xml"}},
	{ProjectDotnet, []string{
		"*.csproj", "*.vbproj", "*.fsproj",
		"packages.config", "Directory.Packages.props", "paket.dependencies",
	}},
	{ProjectGo, []string{"go.mod"}},
}

// skipDirs are directory names never descended into during detection.
var skipDirs = map[string]bool{
	"node_modules": true,
	"bin":          true,
	"obj":          true,
	".git":         true,
}

// ProjectInfo records one discovered ecosystem in a workspace: which
// project type it is and the marker file that revealed it.
type ProjectInfo struct {
	Project ProjectType `json:"project"`
	Root    string      `json:"root"`
	Marker  string      `json:"marker"`
}

// DetectedProjects is the snapshot result of one detection pass. A
// workspace may hold several ecosystems at once; Types lists all of
// them in priority order and Primary is its head, or ProjectUnknown
// when the workspace holds none.
type DetectedProjects struct {
	Projects []ProjectInfo `json:"projects"`
	Types    []ProjectType `json:"types"`
	Primary  ProjectType   `json:"primary"`
}

// Detector resolves a workspace root to its project types by looking
// for ecosystem marker files.
type Detector struct {
	finder FileFinder
}

// NewDetector creates a detector. A nil finder uses the local filesystem.
func NewDetector(finder FileFinder) *Detector {
	if finder == nil {
		finder = fsFinder{}
	}
	return &Detector{finder: finder}
}

// Detect scans the workspace rooted at root for every recognized
// ecosystem. At most one ProjectInfo is recorded per ecosystem (the
// first matching marker wins). Lookup failures are treated as "marker
// not present"; a workspace with no recognized markers reports
// ProjectUnknown as primary and empty lists.
func (d *Detector) Detect(root string) DetectedProjects {
	result := DetectedProjects{Primary: ProjectUnknown}
	if root == "" {
		return result
	}
	for _, m := range markerOrder {
		for _, pat := range m.patterns {
			path, ok := d.finder.FindFile(root, pat)
			if !ok {
				continue
			}
			result.Projects = append(result.Projects, ProjectInfo{
				Project: m.project,
				Root:    root,
				Marker:  path,
			})
			result.Types = append(result.Types, m.project)
			break
		}
	}
	if len(result.Types) > 0 {
		result.Primary = result.Types[0]
	}
	return result
}

// ProjectTypeForFile classifies a single manifest path by its base name.
// It is the pure counterpart of Detect, used when the caller already
// knows which file triggered the lookup.
func ProjectTypeForFile(path string) ProjectType {
	base := filepath.Base(path)
	switch base {
	case "package.json":
		return ProjectNPM
	case "pom.xml":
		return ProjectMaven
	case "go.mod":
		return ProjectGo
	case "packages.config", "Directory.Packages.props", "paket.dependencies":
		return ProjectDotnet
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".csproj", ".vbproj", ".fsproj":
		return ProjectDotnet
	}
	return ProjectUnknown
}

// fsFinder walks the real filesystem. Traversal errors are absorbed: a
// directory that cannot be read simply contributes no markers.
type fsFinder struct{}

func (fsFinder) FindFile(root, pattern string) (string, bool) {
	found := ""
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		ok, _ := filepath.Match(pattern, d.Name())
		if ok {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found, found != ""
}
