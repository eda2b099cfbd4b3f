// Package sources contains the concrete source adapters and the transform
// helpers they share. Each subdirectory adapts one upstream registry to
// the gallery adapter contract.
package sources

import (
	"time"

	"github.com/pkggallery/pkggallery/pkg/gallery"
	"github.com/pkggallery/pkggallery/pkg/integrations/osv"
)

// SecurityFromOSV maps full OSV records to the unified security model.
// A package with no known vulnerabilities yields an empty (non-nil) list.
func SecurityFromOSV(vulns []osv.Vulnerability) *gallery.SecurityInfo {
	out := make([]gallery.Vulnerability, 0, len(vulns))
	for _, v := range vulns {
		out = append(out, gallery.Vulnerability{
			ID:       v.ID,
			Summary:  v.Summary,
			Severity: severityOf(v.Severity),
			URL:      advisoryURL(v.References),
			Aliases:  v.Aliases,
		})
	}
	return &gallery.SecurityInfo{Vulnerabilities: out}
}

// SecurityFromRefs maps ID-only batch results to the unified model.
func SecurityFromRefs(refs []osv.VulnerabilityRef) *gallery.SecurityInfo {
	out := make([]gallery.Vulnerability, 0, len(refs))
	for _, r := range refs {
		out = append(out, gallery.Vulnerability{ID: r.ID})
	}
	return &gallery.SecurityInfo{Vulnerabilities: out}
}

func severityOf(sevs []osv.Severity) string {
	for _, s := range sevs {
		if s.Score != "" {
			return s.Score
		}
	}
	return ""
}

func advisoryURL(refs []osv.Reference) string {
	for _, r := range refs {
		if r.Type == "ADVISORY" {
			return r.URL
		}
	}
	if len(refs) > 0 {
		return refs[0].URL
	}
	return ""
}

// ParseTime parses the RFC 3339 timestamps the upstream APIs emit. An
// unparseable or empty value yields the zero time rather than an error;
// displays treat zero as "unknown".
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
