// Package blob stores request and document photos behind an opaque string
// reference. The workflow passes references through without inspecting them.
package blob

import (
	"context"

	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
)

// Store persists photo bytes and hands back a reference that can later be
// resolved to the original content. References embed the citizen ID, so
// DeleteByCitizen can drop every photo a citizen ever uploaded when the
// citizen is removed.
type Store interface {
	Store(ctx context.Context, citizenID id.CitizenID, requestID id.RequestID, data []byte, contentType string) (string, error)
	Resolve(ctx context.Context, ref string) (data []byte, contentType string, err error)
	DeleteByCitizen(ctx context.Context, citizenID id.CitizenID) error
}

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// validatePhoto rejects empty uploads and anything that is not a photo.
func validatePhoto(data []byte, contentType string) error {
	if len(data) == 0 {
		return apperrors.New(apperrors.CodeValidation, "photo file is empty")
	}
	if !allowedContentTypes[contentType] {
		return apperrors.Newf(apperrors.CodeValidation, "unsupported photo content type %q", contentType)
	}
	return nil
}
