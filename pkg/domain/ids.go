// Package domain holds the typed identifiers shared across services. Wrapping
// uuid.UUID keeps an account ID from being passed where a citizen ID belongs.
package domain

import "github.com/google/uuid"

type UserID uuid.UUID

type CitizenID uuid.UUID

type OfficialID uuid.UUID

type DocumentID uuid.UUID

type RequestID uuid.UUID

func NewUserID() UserID         { return UserID(uuid.New()) }
func NewCitizenID() CitizenID   { return CitizenID(uuid.New()) }
func NewOfficialID() OfficialID { return OfficialID(uuid.New()) }
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }
func NewRequestID() RequestID   { return RequestID(uuid.New()) }

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id CitizenID) String() string  { return uuid.UUID(id).String() }
func (id OfficialID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id RequestID) String() string  { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id CitizenID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id OfficialID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// Parse helpers for path/query parameters. They return the zero ID on failure
// so callers can map the error to a validation response.

func ParseUserID(s string) (UserID, error) {
	u, err := uuid.Parse(s)
	return UserID(u), err
}

func ParseCitizenID(s string) (CitizenID, error) {
	u, err := uuid.Parse(s)
	return CitizenID(u), err
}

func ParseOfficialID(s string) (OfficialID, error) {
	u, err := uuid.Parse(s)
	return OfficialID(u), err
}

func ParseDocumentID(s string) (DocumentID, error) {
	u, err := uuid.Parse(s)
	return DocumentID(u), err
}

func ParseRequestID(s string) (RequestID, error) {
	u, err := uuid.Parse(s)
	return RequestID(u), err
}
