// Package workflow owns the citizen request lifecycle: submit, then a single
// terminal process step that approves or rejects. Approval mutates the
// document registry or the citizen record inside the same transaction that
// flips the processed flag, so a request is acted on at most once.
package workflow

import (
	"time"

	"mobywatel/internal/document"
	"mobywatel/internal/identity"
	id "mobywatel/pkg/domain"
)

// IssueRequest asks for a document to be issued or re-issued. Citizenship is
// set only for identity-card requests, Categories only for driver-license
// requests.
type IssueRequest struct {
	ID          id.RequestID
	CitizenID   id.CitizenID
	Kind        document.Kind
	PhotoRef    string
	Citizenship string
	Categories  []document.LicenseCategory
	Processed   bool
	Approved    bool
	RequestDate time.Time
}

// DataUpdateRequest asks for a change to the citizen's personal data. Nil
// fields mean "leave unchanged" when the request is approved.
type DataUpdateRequest struct {
	ID                 id.RequestID
	CitizenID          id.CitizenID
	RequestedFirstName *string
	RequestedLastName  *string
	RequestedGender    *identity.Gender
	Processed          bool
	Approved           bool
	RequestDate        time.Time
}
