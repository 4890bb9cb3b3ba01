package httptransport

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobywatel/internal/authz"
	"mobywatel/internal/blob"
	"mobywatel/internal/document"
	"mobywatel/internal/identity"
	"mobywatel/internal/jwttoken"
	"mobywatel/internal/platform/config"
	"mobywatel/internal/platform/logger"
	"mobywatel/internal/workflow"
	id "mobywatel/pkg/domain"
	"mobywatel/pkg/testutil"
)

// newTestRouter wires the whole stack on in-memory backends, the way main
// does when no external services are configured.
func newTestRouter(t *testing.T) (http.Handler, *identity.Service) {
	t.Helper()
	return newTestRouterWithOfficials(t, identity.NewInMemoryOfficialStore())
}

func newTestRouterWithOfficials(t *testing.T, officials identity.OfficialStore) (http.Handler, *identity.Service) {
	t.Helper()

	log := logger.Discard()
	gate := authz.NewGate()

	accounts := identity.NewInMemoryAccountStore()
	citizens := identity.NewInMemoryCitizenStore()
	documents := document.NewInMemoryStore()
	issues := workflow.NewInMemoryIssueRequestStore()
	updates := workflow.NewInMemoryDataUpdateStore()
	blobs := blob.NewInMemoryStore()
	tx := workflow.NewInMemoryTx(issues, updates, documents, citizens)

	tokens := jwttoken.NewManager(config.JWT{
		SigningKey: "router-test-key",
		Issuer:     "mobywatel-test",
		TTL:        time.Hour,
	}, jwttoken.NewInMemoryRevocationList())

	identitySvc := identity.NewService(accounts, citizens, officials, tokens, gate,
		[]identity.Purger{documents, issues, updates, blobs}, nil, log)
	registry := document.NewRegistry(documents, blobs, gate)
	engine := workflow.NewEngine(tx, issues, updates, blobs, gate, nil, log)

	router := NewRouter(Deps{
		Auth:     NewAuthHandler(identitySvc, tokens, log),
		Citizen:  NewCitizenHandler(identitySvc, registry, engine, tokens, log),
		Official: NewOfficialHandler(identitySvc, engine, tokens, log),
		Admin:    NewAdminHandler(identitySvc, tokens, log),
		Photo:    NewPhotoHandler(identitySvc, registry, engine, tokens, log),
		Logger:   log,
	})
	return router, identitySvc
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func login(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}))
	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[map[string]string](t, rr)
	return (*resp)["token"]
}

func registerCitizen(t *testing.T, router http.Handler) string {
	t.Helper()
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":     "jan.kowalski@example.com",
		"password":  "Passw0rd!",
		"firstName": "Jan",
		"lastName":  "Kowalski",
		"birthDate": "1990-05-15",
		"pesel":     "90051512333",
		"gender":    "MALE",
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	testutil.AssertJSONHasKey(t, rr, "citizenId")
	return (*testutil.UnmarshalResponse[map[string]string](t, rr))["citizenId"]
}

func multipartIssueRequest(t *testing.T, kind string, fields map[string][]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	require.NoError(t, mw.WriteField("kind", kind))
	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, mw.WriteField(name, v))
		}
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="photo"; filename="photo.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/citizen/docs/request", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDocumentIssueFlow(t *testing.T) {
	router, identitySvc := newTestRouter(t)
	ctx := context.Background()

	_, err := identitySvc.RegisterAdmin(ctx, "admin@gov.pl", "Adm1nPass!")
	require.NoError(t, err)
	adminToken := login(t, router, "admin@gov.pl", "Adm1nPass!")

	// Admin provisions the official who will process the request.
	rr := testutil.DoRequest(router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/api/admin/official", map[string]string{
		"email":     "clerk@gov.pl",
		"password":  "Passw0rd!",
		"firstName": "Anna",
		"lastName":  "Wojcik",
		"position":  "clerk",
	}), adminToken))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	officialToken := login(t, router, "clerk@gov.pl", "Passw0rd!")

	registerCitizen(t, router)
	citizenToken := login(t, router, "jan.kowalski@example.com", "Passw0rd!")

	// Citizen applies for a driver license.
	rr = testutil.DoRequest(router, authed(multipartIssueRequest(t, "DRIVER_LICENSE", map[string][]string{
		"categories": {"B"},
	}), citizenToken))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	requestID := (*testutil.UnmarshalResponse[map[string]string](t, rr))["requestId"]
	require.NotEmpty(t, requestID)

	// The official sees it pending and can fetch the photo.
	rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/official/citizen/docs/requests"), officialToken))
	testutil.AssertStatus(t, rr, http.StatusOK)
	pending := testutil.UnmarshalResponse[[]map[string]any](t, rr)
	require.Len(t, *pending, 1)
	assert.Equal(t, requestID, (*pending)[0]["id"])

	rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/photo/request/"+requestID), officialToken))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))

	// Approve.
	rr = testutil.DoRequest(router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/api/official/citizen/docs/request", map[string]any{
		"requestId":      requestID,
		"approve":        true,
		"expirationDate": "2035-06-01",
	}), officialToken))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	// A second decision on the same request is rejected.
	rr = testutil.DoRequest(router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/api/official/citizen/docs/request", map[string]any{
		"requestId": requestID,
		"approve":   false,
	}), officialToken))
	testutil.AssertStatus(t, rr, http.StatusConflict)
	testutil.AssertErrorCode(t, rr, "conflict")

	// The citizen now holds the license.
	rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/citizen/docs"), citizenToken))
	testutil.AssertStatus(t, rr, http.StatusOK)
	docs := testutil.UnmarshalResponse[[]map[string]any](t, rr)
	require.Len(t, *docs, 1)
	doc := (*docs)[0]
	assert.Equal(t, "DRIVER_LICENSE", doc["kind"])
	assert.Equal(t, []any{"B"}, doc["categories"])
	assert.Equal(t, false, doc["lost"])

	// Report it lost.
	rr = testutil.DoRequest(router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/api/citizen/docs/lost", map[string]string{
		"documentId": doc["id"].(string),
	}), citizenToken))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/citizen/docs"), citizenToken))
	docs = testutil.UnmarshalResponse[[]map[string]any](t, rr)
	assert.Equal(t, true, (*docs)[0]["lost"])

	// The owning citizen can fetch the document photo.
	rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/photo/doc/"+doc["id"].(string)), citizenToken))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestPersonalDataChangeFlow(t *testing.T) {
	router, identitySvc := newTestRouter(t)
	ctx := context.Background()

	_, err := identitySvc.RegisterAdmin(ctx, "admin@gov.pl", "Adm1nPass!")
	require.NoError(t, err)
	adminToken := login(t, router, "admin@gov.pl", "Adm1nPass!")

	registerCitizen(t, router)
	citizenToken := login(t, router, "jan.kowalski@example.com", "Passw0rd!")

	rr := testutil.DoRequest(router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/api/citizen/personalData/request", map[string]string{
		"lastName": "Nowak",
	}), citizenToken))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	requestID := (*testutil.UnmarshalResponse[map[string]string](t, rr))["requestId"]

	// Admins may process requests too.
	rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/official/citizen/personalData/requests"), adminToken))
	testutil.AssertStatus(t, rr, http.StatusOK)
	pending := testutil.UnmarshalResponse[[]map[string]any](t, rr)
	require.Len(t, *pending, 1)
	assert.Equal(t, "Nowak", (*pending)[0]["requestedLastName"])

	rr = testutil.DoRequest(router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/api/official/citizen/personalData/request", map[string]any{
		"requestId": requestID,
		"approve":   true,
	}), adminToken))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/citizen/personalData"), citizenToken))
	testutil.AssertStatus(t, rr, http.StatusOK)
	data := testutil.UnmarshalResponse[map[string]any](t, rr)
	assert.Equal(t, "Jan", (*data)["firstName"])
	assert.Equal(t, "Nowak", (*data)["lastName"])
}

func TestAuthBoundaries(t *testing.T) {
	router, identitySvc := newTestRouter(t)
	ctx := context.Background()

	_, err := identitySvc.RegisterAdmin(ctx, "admin@gov.pl", "Adm1nPass!")
	require.NoError(t, err)

	registerCitizen(t, router)
	citizenToken := login(t, router, "jan.kowalski@example.com", "Passw0rd!")

	t.Run("missing token", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/citizen/docs"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("citizen may not reach official endpoints", func(t *testing.T) {
		rr := testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/official/citizens"), citizenToken))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("citizen may not reach admin endpoints", func(t *testing.T) {
		rr := testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/admin/officials"), citizenToken))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email":     "jan.kowalski@example.com",
			"password":  "Passw0rd!",
			"firstName": "Jan",
			"lastName":  "Kowalski",
			"birthDate": "1990-05-15",
			"pesel":     "90051512333",
			"gender":    "MALE",
		}))
		testutil.AssertStatus(t, rr, http.StatusConflict)
	})

	t.Run("bad birth date format", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email":     "second@example.com",
			"password":  "Passw0rd!",
			"firstName": "Anna",
			"lastName":  "Kowalska",
			"birthDate": "15.05.1990",
			"pesel":     "90051512340",
			"gender":    "FEMALE",
		}))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rr, "validation")
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		rr := testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodPost, "/api/auth/logout"), citizenToken))
		testutil.AssertStatus(t, rr, http.StatusNoContent)

		rr = testutil.DoRequest(router, authed(testutil.NewRequest(t, http.MethodGet, "/api/citizen/docs"), citizenToken))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

type failingOfficialStore struct {
	*identity.InMemoryOfficialStore
}

func (failingOfficialStore) FindByAccount(context.Context, id.UserID) (identity.Official, error) {
	return identity.Official{}, errors.New("officials table unavailable")
}

// A broken official lookup must surface as an error, not be mistaken for the
// admin's legitimately absent profile.
func TestProcessIssueRequestOfficialLookupFailure(t *testing.T) {
	router, identitySvc := newTestRouterWithOfficials(t, failingOfficialStore{identity.NewInMemoryOfficialStore()})
	ctx := context.Background()

	_, err := identitySvc.RegisterAdmin(ctx, "admin@gov.pl", "Adm1nPass!")
	require.NoError(t, err)
	adminToken := login(t, router, "admin@gov.pl", "Adm1nPass!")

	rr := testutil.DoRequest(router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/api/official/citizen/docs/request", map[string]any{
		"requestId": id.NewRequestID().String(),
		"approve":   false,
	}), adminToken))
	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	testutil.AssertErrorCode(t, rr, "internal")
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}
