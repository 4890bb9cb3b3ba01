package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mobywatel/internal/authz"
	"mobywatel/internal/identity"
	"mobywatel/internal/platform/middleware"
	"mobywatel/internal/workflow"
	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
)

// OfficialHandler serves the citizen-administration and request-processing
// endpoints used by officials and admins.
type OfficialHandler struct {
	identity     *identity.Service
	workflow     *workflow.Engine
	jwtValidator middleware.JWTValidator
	logger       *slog.Logger
}

func NewOfficialHandler(identitySvc *identity.Service, engine *workflow.Engine, jwtValidator middleware.JWTValidator, logger *slog.Logger) *OfficialHandler {
	return &OfficialHandler{
		identity:     identitySvc,
		workflow:     engine,
		jwtValidator: jwtValidator,
		logger:       logger,
	}
}

func (h *OfficialHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/api/official/citizens", h.handleListCitizens)
		r.Get("/api/official/citizen", h.handleGetCitizen)
		r.Put("/api/official/citizen", h.handleUpdateCitizen)
		r.Delete("/api/official/citizen", h.handleDeleteCitizen)
		r.Get("/api/official/citizen/docs/requests", h.handleListIssueRequests)
		r.Post("/api/official/citizen/docs/request", h.handleProcessIssueRequest)
		r.Get("/api/official/citizen/personalData/requests", h.handleListDataUpdateRequests)
		r.Post("/api/official/citizen/personalData/request", h.handleProcessDataUpdateRequest)
	})
}

func (h *OfficialHandler) handleListCitizens(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	citizens, err := h.identity.ListCitizens(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCitizenResponses(citizens))
}

// handleGetCitizen looks up by "id" or by "pesel"; exactly one is required.
func (h *OfficialHandler) handleGetCitizen(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var citizen identity.Citizen
	switch {
	case r.URL.Query().Get("id") != "":
		citizenID, parseErr := id.ParseCitizenID(r.URL.Query().Get("id"))
		if parseErr != nil {
			writeError(w, apperrors.New(apperrors.CodeValidation, "id is not a valid UUID"))
			return
		}
		citizen, err = h.identity.GetCitizen(r.Context(), p, citizenID)
	case r.URL.Query().Get("pesel") != "":
		citizen, err = h.identity.GetCitizenByPESEL(r.Context(), p, r.URL.Query().Get("pesel"))
	default:
		writeError(w, apperrors.New(apperrors.CodeValidation, "id or pesel query parameter is required"))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCitizenResponse(citizen))
}

type updateCitizenRequest struct {
	ID        string  `json:"id"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	PESEL     *string `json:"pesel"`
	BirthDate *string `json:"birthDate"`
	Gender    *string `json:"gender"`
}

func (h *OfficialHandler) handleUpdateCitizen(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateCitizenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	citizenID, err := id.ParseCitizenID(req.ID)
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodeValidation, "id is not a valid UUID"))
		return
	}

	in := identity.UpdateCitizenInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		PESEL:     req.PESEL,
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		birthDate, parseErr := time.Parse(dateLayout, *req.BirthDate)
		if parseErr != nil {
			writeError(w, apperrors.New(apperrors.CodeValidation, "birthDate must be YYYY-MM-DD"))
			return
		}
		in.BirthDate = &birthDate
	}
	if req.Gender != nil {
		g := identity.Gender(*req.Gender)
		in.Gender = &g
	}

	citizen, err := h.identity.UpdateCitizen(r.Context(), p, citizenID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCitizenResponse(citizen))
}

func (h *OfficialHandler) handleDeleteCitizen(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	citizenID, err := id.ParseCitizenID(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodeValidation, "id is not a valid UUID"))
		return
	}
	if err := h.identity.DeleteCitizen(r.Context(), p, citizenID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OfficialHandler) handleListIssueRequests(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	reqs, err := h.workflow.ListPendingIssueRequests(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]issueRequestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, toIssueRequestResponse(req))
	}
	writeJSON(w, http.StatusOK, out)
}

type processIssueRequest struct {
	RequestID      string `json:"requestId"`
	Approve        bool   `json:"approve"`
	ExpirationDate string `json:"expirationDate"`
}

func (h *OfficialHandler) handleProcessIssueRequest(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req processIssueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	reqID, err := id.ParseRequestID(req.RequestID)
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodeValidation, "requestId is not a valid UUID"))
		return
	}

	var expirationDate time.Time
	if req.Approve {
		expirationDate, err = time.Parse(dateLayout, req.ExpirationDate)
		if err != nil {
			writeError(w, apperrors.New(apperrors.CodeValidation, "expirationDate must be YYYY-MM-DD"))
			return
		}
	}

	// Admins have no official profile; attribution stays empty for them.
	// Anything other than a missing profile is a real failure either way.
	official, err := h.identity.OfficialByAccount(r.Context(), p.AccountID)
	if err != nil && (p.Role == authz.RoleOfficial || !apperrors.Is(err, apperrors.CodeNotFound)) {
		writeError(w, err)
		return
	}

	if err := h.workflow.ProcessIssueRequest(r.Context(), p, reqID, req.Approve, expirationDate, official.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OfficialHandler) handleListDataUpdateRequests(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	reqs, err := h.workflow.ListPendingDataUpdateRequests(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]dataUpdateRequestResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, toDataUpdateRequestResponse(req))
	}
	writeJSON(w, http.StatusOK, out)
}

type processDataUpdateRequest struct {
	RequestID string `json:"requestId"`
	Approve   bool   `json:"approve"`
}

func (h *OfficialHandler) handleProcessDataUpdateRequest(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req processDataUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	reqID, err := id.ParseRequestID(req.RequestID)
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodeValidation, "requestId is not a valid UUID"))
		return
	}
	if err := h.workflow.ProcessDataUpdateRequest(r.Context(), p, reqID, req.Approve); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
