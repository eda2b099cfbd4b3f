package gopkg

import (
	"testing"

	pkgerrors "github.com/pkggallery/pkggallery/pkg/errors"
)

func TestValidModulePath(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"github.com/spf13/cobra", false},
		{"golang.org/x/sync", false},
		{"gopkg.in/yaml.v3", false},
		{" github.com/spf13/cobra ", false},
		{"react", true},
		{"@scope/pkg", true},
		{"github.com/a b", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := validModulePath(tt.in)
		if tt.wantErr && err == nil {
			t.Errorf("validModulePath(%q): expected error", tt.in)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("validModulePath(%q): %v", tt.in, err)
		}
		if tt.wantErr && err != nil && pkgerrors.GetCode(err) != pkgerrors.ErrCodeInvalidPackage {
			t.Errorf("validModulePath(%q): code = %s", tt.in, pkgerrors.GetCode(err))
		}
	}
}

func TestSortVersions(t *testing.T) {
	got := sortVersions([]string{"v1.2.0", "v0.9.0", "v1.10.0", "v1.10.0-rc.1"})
	want := []string{"v1.10.0", "v1.10.0-rc.1", "v1.2.0", "v0.9.0"}
	for i, w := range want {
		if got[i].Version != w {
			t.Errorf("sortVersions[%d] = %s, want %s", i, got[i].Version, w)
		}
	}
}

func TestCommands(t *testing.T) {
	a := New(nil, nil)
	got, _ := a.InstallCommand("github.com/spf13/cobra", "v1.10.1")
	if got != "go get github.com/spf13/cobra@v1.10.1" {
		t.Errorf("install = %q", got)
	}
	got, _ = a.UpdateCommand("github.com/spf13/cobra")
	if got != "go get -u github.com/spf13/cobra" {
		t.Errorf("update = %q", got)
	}
	got, _ = a.RemoveCommand("github.com/spf13/cobra")
	if got != "go mod tidy" {
		t.Errorf("remove = %q", got)
	}
}
