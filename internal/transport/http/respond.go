// Package httptransport is the thin HTTP layer over the domain services.
// Handlers decode input, resolve the principal, delegate and encode output;
// business rules live in the services.
package httptransport

import (
	"encoding/json"
	"net/http"

	"mobywatel/internal/authz"
	"mobywatel/internal/platform/middleware"
	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError translates a coded error into the stable JSON error envelope.
// Only the caller-safe message is exposed.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	writeJSON(w, apperrors.ToHTTPStatus(code), map[string]string{
		"error":   string(code),
		"message": apperrors.MessageOf(err),
	})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.New(apperrors.CodeValidation, "invalid request body")
	}
	return nil
}

// principalFrom rebuilds the authz principal from the context the auth
// middleware populated.
func principalFrom(r *http.Request) (authz.Principal, error) {
	accountID, err := id.ParseUserID(middleware.GetAccountID(r.Context()))
	if err != nil {
		return authz.Principal{}, apperrors.New(apperrors.CodeUnauthorized, "authentication context missing")
	}
	return authz.Principal{
		AccountID: accountID,
		Role:      authz.Role(middleware.GetRole(r.Context())),
	}, nil
}
