package httptransport

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mobywatel/internal/document"
	"mobywatel/internal/identity"
	"mobywatel/internal/platform/middleware"
	"mobywatel/internal/workflow"
	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
)

const maxPhotoBytes = 5 << 20

// CitizenHandler serves the endpoints a citizen calls about their own data.
type CitizenHandler struct {
	identity     *identity.Service
	registry     *document.Registry
	workflow     *workflow.Engine
	jwtValidator middleware.JWTValidator
	logger       *slog.Logger
}

func NewCitizenHandler(identitySvc *identity.Service, registry *document.Registry, engine *workflow.Engine, jwtValidator middleware.JWTValidator, logger *slog.Logger) *CitizenHandler {
	return &CitizenHandler{
		identity:     identitySvc,
		registry:     registry,
		workflow:     engine,
		jwtValidator: jwtValidator,
		logger:       logger,
	}
}

func (h *CitizenHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/api/citizen/personalData", h.handlePersonalData)
		r.Post("/api/citizen/personalData/request", h.handleSubmitDataUpdate)
		r.Get("/api/citizen/docs", h.handleListDocuments)
		r.Post("/api/citizen/docs/lost", h.handleReportLost)
		r.Post("/api/citizen/docs/request", h.handleSubmitIssueRequest)
	})
}

// ownCitizen resolves the caller's citizen profile; non-citizen principals
// have none and get a not-found.
func (h *CitizenHandler) ownCitizen(r *http.Request) (identity.Citizen, error) {
	p, err := principalFrom(r)
	if err != nil {
		return identity.Citizen{}, err
	}
	return h.identity.CitizenByAccount(r.Context(), p.AccountID)
}

func (h *CitizenHandler) handlePersonalData(w http.ResponseWriter, r *http.Request) {
	citizen, err := h.ownCitizen(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCitizenResponse(citizen))
}

func (h *CitizenHandler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	citizen, err := h.identity.CitizenByAccount(r.Context(), p.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	docs, err := h.registry.List(r.Context(), p, citizen.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDocumentResponse(doc))
	}
	writeJSON(w, http.StatusOK, out)
}

type reportLostRequest struct {
	DocumentID string `json:"documentId"`
}

func (h *CitizenHandler) handleReportLost(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req reportLostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	docID, err := id.ParseDocumentID(req.DocumentID)
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodeValidation, "documentId is not a valid UUID"))
		return
	}
	citizen, err := h.identity.CitizenByAccount(r.Context(), p.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.registry.MarkLost(r.Context(), p, docID, citizen.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmitIssueRequest takes a multipart form: "kind", "citizenship" or
// "categories" depending on the kind, and the photo under "photo".
func (h *CitizenHandler) handleSubmitIssueRequest(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	citizen, err := h.identity.CitizenByAccount(r.Context(), p.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		writeError(w, apperrors.New(apperrors.CodeValidation, "expected multipart form with a photo"))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodeValidation, "photo file is required"))
		return
	}
	defer file.Close()
	photo, err := io.ReadAll(io.LimitReader(file, maxPhotoBytes+1))
	if err != nil {
		writeError(w, apperrors.Wrap(err, apperrors.CodeInternal, "failed to read photo"))
		return
	}
	if len(photo) > maxPhotoBytes {
		writeError(w, apperrors.New(apperrors.CodeValidation, "photo file is too large"))
		return
	}

	in := workflow.IssueRequestInput{
		Kind:             document.Kind(r.FormValue("kind")),
		Citizenship:      r.FormValue("citizenship"),
		Categories:       toCategories(r.Form["categories"]),
		Photo:            photo,
		PhotoContentType: header.Header.Get("Content-Type"),
	}
	req, err := h.workflow.SubmitIssueRequest(r.Context(), p, citizen.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"requestId": req.ID.String()})
}

type dataUpdateSubmitRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Gender    *string `json:"gender"`
}

func (h *CitizenHandler) handleSubmitDataUpdate(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	citizen, err := h.identity.CitizenByAccount(r.Context(), p.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	var req dataUpdateSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var gender *identity.Gender
	if req.Gender != nil {
		g := identity.Gender(*req.Gender)
		gender = &g
	}
	created, err := h.workflow.SubmitDataUpdateRequest(r.Context(), p, citizen.ID, req.FirstName, req.LastName, gender)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"requestId": created.ID.String()})
}
