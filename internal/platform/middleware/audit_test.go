package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobywatel/internal/audit"
	"mobywatel/internal/platform/logger"
	id "mobywatel/pkg/domain"
)

type staticValidator struct {
	claims *JWTClaims
}

func (v staticValidator) ValidateToken(_ context.Context, _ string) (*JWTClaims, error) {
	if v.claims == nil {
		return nil, errors.New("invalid token")
	}
	return v.claims, nil
}

// Audit wraps RequireAuth in the router, so the actor established by the auth
// layer must surface on the recorded entry even though the auth context never
// flows back to the outer request.
func TestAuditAttributesAuthenticatedActor(t *testing.T) {
	log := logger.Discard()
	recorder := audit.NewRecorder(log)
	accountID := id.NewUserID()

	validator := staticValidator{claims: &JWTClaims{
		AccountID: accountID.String(),
		Role:      "CITIZEN",
		TokenID:   "jti-1",
	}}

	handler := Audit(recorder)(RequireAuth(validator, log)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	req := httptest.NewRequest(http.MethodGet, "/api/citizen/docs", nil)
	req.Header.Set("Authorization", "Bearer token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	select {
	case entry := <-recorder.Inbox():
		require.NotNil(t, entry.ActorID)
		assert.Equal(t, accountID, *entry.ActorID)
		assert.Equal(t, http.StatusOK, entry.Status)
		assert.Equal(t, "/api/citizen/docs", entry.Path)
	default:
		t.Fatal("no audit entry recorded")
	}
}

func TestAuditRecordsUnauthenticatedAccessWithoutActor(t *testing.T) {
	log := logger.Discard()
	recorder := audit.NewRecorder(log)

	handler := Audit(recorder)(RequireAuth(staticValidator{}, log)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	req := httptest.NewRequest(http.MethodGet, "/api/citizen/docs", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	select {
	case entry := <-recorder.Inbox():
		assert.Nil(t, entry.ActorID)
		assert.Equal(t, http.StatusUnauthorized, entry.Status)
	default:
		t.Fatal("no audit entry recorded")
	}
}
