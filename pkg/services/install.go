package services

import (
	"github.com/pkggallery/pkggallery/pkg/gallery"
)

// InstallService generates installation commands and manifest snippets.
// All results are strings for the user to run or paste; nothing is
// executed.
type InstallService struct {
	selector *gallery.Selector
}

func (s *InstallService) adapter(source gallery.SourceType) (gallery.Adapter, error) {
	return s.selector.Adapter(source)
}

// InstallCommand returns the shell command that installs a package.
func (s *InstallService) InstallCommand(source gallery.SourceType, name, version string) (string, error) {
	a, err := s.adapter(source)
	if err != nil {
		return "", err
	}
	return a.InstallCommand(name, version)
}

// UpdateCommand returns the shell command that updates a package.
func (s *InstallService) UpdateCommand(source gallery.SourceType, name string) (string, error) {
	a, err := s.adapter(source)
	if err != nil {
		return "", err
	}
	return a.UpdateCommand(name)
}

// RemoveCommand returns the shell command that removes a package.
func (s *InstallService) RemoveCommand(source gallery.SourceType, name string) (string, error) {
	a, err := s.adapter(source)
	if err != nil {
		return "", err
	}
	return a.RemoveCommand(name)
}

// CopySnippet returns a manifest snippet in the requested format. An
// empty format picks the source's default format.
func (s *InstallService) CopySnippet(source gallery.SourceType, name, version, format string) (string, error) {
	a, err := s.adapter(source)
	if err != nil {
		return "", err
	}
	return a.CopySnippet(name, version, format)
}
