package gallery

import (
	"errors"
	"fmt"
	"slices"
)

// Capability names one optional adapter behavior. Capabilities are declared
// statically per adapter; there is no runtime feature probing because the
// upstream registry APIs expose no self-describing capability metadata.
type Capability string

// The capability taxonomy. Search, PackageInfo, PackageDetails, and
// Versions are core: every adapter must implement them and they are
// implicitly supported. All others are optional and must be explicitly
// declared.
const (
	CapSearch         Capability = "search"
	CapPackageInfo    Capability = "package-info"
	CapPackageDetails Capability = "package-details"
	CapVersions       Capability = "versions"

	CapInstallation  Capability = "installation"
	CapCopy          Capability = "copy"
	CapSecurity      Capability = "security"
	CapBundleSize    Capability = "bundle-size"
	CapDependents    Capability = "dependents"
	CapRequirements  Capability = "requirements"
	CapSuggestions   Capability = "suggestions"
	CapDownloadStats Capability = "download-stats"
	CapQualityScore  Capability = "quality-score"
)

// CoreCapabilities is the set every adapter supports by contract.
var CoreCapabilities = []Capability{CapSearch, CapPackageInfo, CapPackageDetails, CapVersions}

// IsCore reports whether c is a mandatory capability.
func IsCore(c Capability) bool {
	return slices.Contains(CoreCapabilities, c)
}

// CapabilitySupport describes whether and why an adapter supports a
// capability. Derived on demand, never stored.
type CapabilitySupport struct {
	Capability Capability
	Supported  bool
	Reason     string // populated only when unsupported
}

// Supports reports whether the adapter declares the capability. Core
// capabilities are always supported.
func Supports(a Adapter, c Capability) bool {
	if IsCore(c) {
		return true
	}
	return slices.Contains(a.Capabilities(), c)
}

// Support returns a CapabilitySupport descriptor. It never fails; when the
// capability is unsupported, Reason names the source and capability.
func Support(a Adapter, c Capability) CapabilitySupport {
	if Supports(a, c) {
		return CapabilitySupport{Capability: c, Supported: true}
	}
	return CapabilitySupport{
		Capability: c,
		Reason:     fmt.Sprintf("%s does not support %s", a.Source(), c),
	}
}

// CapabilityNotSupportedError signals that an optional operation was
// invoked on an adapter that does not declare the matching capability.
// It means "feature absent," not "operation failed": callers should fall
// back to an empty state or try another source, never surface it as a
// generic error.
type CapabilityNotSupportedError struct {
	Capability Capability
	Source     SourceType
}

func (e *CapabilityNotSupportedError) Error() string {
	return fmt.Sprintf("source %s does not support capability %s", e.Source, e.Capability)
}

// IsCapabilityNotSupported reports whether err is (or wraps) a
// CapabilityNotSupportedError.
func IsCapabilityNotSupported(err error) bool {
	var e *CapabilityNotSupportedError
	return errors.As(err, &e)
}
