// Package sentinel defines sentinel errors for infrastructure facts. Stores
// return these (optionally wrapped) so services can translate them into domain
// errors without depending on store internals.
//
// These represent factual states about resources, not validation failures:
//   - ErrNotFound: entity does not exist in the store
//   - ErrConflict: uniqueness constraint violated (email, PESEL)
//   - ErrAlreadyProcessed: request is terminal and cannot transition again
//
// For validation errors (bad input, missing fields), use pkg/apperrors directly.
package sentinel

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrAlreadyProcessed = errors.New("already processed")
)
