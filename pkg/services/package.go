package services

import (
	"context"

	"github.com/pkggallery/pkggallery/pkg/gallery"
)

// PackageService answers package metadata queries. Core lookups walk the
// configured fallback chain; capability-gated lookups go to the single
// selected source so an unsupported capability surfaces as the typed
// CapabilityNotSupportedError instead of being retried elsewhere.
type PackageService struct {
	selector *gallery.Selector
}

// Info retrieves the basic package record.
func (s *PackageService) Info(ctx context.Context, name string) (*gallery.PackageInfo, error) {
	info, _, err := gallery.ExecuteWithFallback(ctx, s.selector, "package-info",
		func(ctx context.Context, a gallery.Adapter) (*gallery.PackageInfo, error) {
			return a.PackageInfo(ctx, name)
		})
	return info, err
}

// Details retrieves the extended package record. Version may be empty for
// the latest version.
func (s *PackageService) Details(ctx context.Context, name, version string) (*gallery.PackageDetails, error) {
	details, _, err := gallery.ExecuteWithFallback(ctx, s.selector, "package-details",
		func(ctx context.Context, a gallery.Adapter) (*gallery.PackageDetails, error) {
			return a.PackageDetails(ctx, name, version)
		})
	return details, err
}

// Versions lists the released versions of a package, newest first.
func (s *PackageService) Versions(ctx context.Context, name string) ([]gallery.VersionInfo, error) {
	versions, _, err := gallery.ExecuteWithFallback(ctx, s.selector, "versions",
		func(ctx context.Context, a gallery.Adapter) ([]gallery.VersionInfo, error) {
			return a.Versions(ctx, name)
		})
	return versions, err
}

// Security retrieves known vulnerabilities for a package version.
func (s *PackageService) Security(ctx context.Context, name, version string) (*gallery.SecurityInfo, error) {
	a, err := s.selector.Adapter("")
	if err != nil {
		return nil, err
	}
	return a.SecurityInfo(ctx, name, version)
}

// SecurityBulk retrieves vulnerabilities for several packages at once,
// keyed by package name.
func (s *PackageService) SecurityBulk(ctx context.Context, pkgs []gallery.PackageRequest) (map[string]*gallery.SecurityInfo, error) {
	a, err := s.selector.Adapter("")
	if err != nil {
		return nil, err
	}
	return a.SecurityInfoBulk(ctx, pkgs)
}

// BundleSize retrieves bundle size data for a package version.
func (s *PackageService) BundleSize(ctx context.Context, name, version string) (*gallery.BundleSizeInfo, error) {
	a, err := s.selector.Adapter("")
	if err != nil {
		return nil, err
	}
	return a.BundleSize(ctx, name, version)
}

// Dependents retrieves reverse-dependency counts for a package version.
func (s *PackageService) Dependents(ctx context.Context, name, version string) (*gallery.DependentsInfo, error) {
	a, err := s.selector.Adapter("")
	if err != nil {
		return nil, err
	}
	return a.Dependents(ctx, name, version)
}

// Requirements retrieves the declared dependencies of a package version.
func (s *PackageService) Requirements(ctx context.Context, name, version string) ([]gallery.Requirement, error) {
	a, err := s.selector.Adapter("")
	if err != nil {
		return nil, err
	}
	return a.Requirements(ctx, name, version)
}

// DownloadStats retrieves the recent download count for a package.
func (s *PackageService) DownloadStats(ctx context.Context, name string) (int64, error) {
	a, err := s.selector.Adapter("")
	if err != nil {
		return 0, err
	}
	return a.DownloadStats(ctx, name)
}

// QualityScore retrieves the analysis score for a package.
func (s *PackageService) QualityScore(ctx context.Context, name string) (*gallery.Score, error) {
	a, err := s.selector.Adapter("")
	if err != nil {
		return nil, err
	}
	return a.QualityScore(ctx, name)
}
