// Package document owns the canonical civil documents and their lifecycle.
// Documents are only created or re-issued through an approved issue request;
// the sole direct mutation a citizen may perform is flagging one as lost.
package document

import (
	"sort"
	"time"

	id "mobywatel/pkg/domain"
)

// Kind discriminates the document union.
type Kind string

const (
	KindIdentityCard  Kind = "IDENTITY_CARD"
	KindDriverLicense Kind = "DRIVER_LICENSE"
)

// LicenseCategory is a driver-license entitlement class.
type LicenseCategory string

const (
	CategoryAM LicenseCategory = "AM"
	CategoryA1 LicenseCategory = "A1"
	CategoryA2 LicenseCategory = "A2"
	CategoryA  LicenseCategory = "A"
	CategoryB1 LicenseCategory = "B1"
	CategoryB  LicenseCategory = "B"
	CategoryC1 LicenseCategory = "C1"
	CategoryC  LicenseCategory = "C"
	CategoryD1 LicenseCategory = "D1"
	CategoryD  LicenseCategory = "D"
	CategoryBE LicenseCategory = "B+E"
	CategoryCE LicenseCategory = "C+E"
	CategoryDE LicenseCategory = "D+E"
	CategoryT  LicenseCategory = "T"
)

// Document is the tagged union over identity cards and driver licenses.
// Citizenship is set only for identity cards; Categories only for driver
// licenses.
type Document struct {
	ID             id.DocumentID
	CitizenID      id.CitizenID
	Kind           Kind
	PhotoRef       string
	IssueDate      time.Time
	ExpirationDate time.Time
	IssuedBy       id.OfficialID
	Lost           bool

	Citizenship string
	Categories  []LicenseCategory
}

// MergeCategories unions extra categories into existing ones and returns the
// result sorted. Re-issuing a license adds entitlements, it never erases
// previously granted ones.
func MergeCategories(existing, extra []LicenseCategory) []LicenseCategory {
	seen := make(map[LicenseCategory]bool, len(existing)+len(extra))
	merged := make([]LicenseCategory, 0, len(existing)+len(extra))
	for _, c := range existing {
		if !seen[c] {
			seen[c] = true
			merged = append(merged, c)
		}
	}
	for _, c := range extra {
		if !seen[c] {
			seen[c] = true
			merged = append(merged, c)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
	return merged
}
