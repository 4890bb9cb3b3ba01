package httptransport

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mobywatel/internal/document"
	"mobywatel/internal/identity"
	"mobywatel/internal/platform/middleware"
	"mobywatel/internal/workflow"
	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
)

// PhotoHandler serves raw photo bytes: request photos for officials
// reviewing a submission, document photos for the owning citizen.
type PhotoHandler struct {
	identity     *identity.Service
	registry     *document.Registry
	workflow     *workflow.Engine
	jwtValidator middleware.JWTValidator
	logger       *slog.Logger
}

func NewPhotoHandler(identitySvc *identity.Service, registry *document.Registry, engine *workflow.Engine, jwtValidator middleware.JWTValidator, logger *slog.Logger) *PhotoHandler {
	return &PhotoHandler{
		identity:     identitySvc,
		registry:     registry,
		workflow:     engine,
		jwtValidator: jwtValidator,
		logger:       logger,
	}
}

func (h *PhotoHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/api/photo/request/{requestID}", h.handleRequestPhoto)
		r.Get("/api/photo/doc/{documentID}", h.handleDocumentPhoto)
	})
}

func (h *PhotoHandler) handleRequestPhoto(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	reqID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodeValidation, "requestID is not a valid UUID"))
		return
	}
	data, contentType, err := h.workflow.ResolveRequestPhoto(r.Context(), p, reqID)
	if err != nil {
		writeError(w, err)
		return
	}
	writePhoto(w, data, contentType)
}

func (h *PhotoHandler) handleDocumentPhoto(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	docID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodeValidation, "documentID is not a valid UUID"))
		return
	}
	citizen, err := h.identity.CitizenByAccount(r.Context(), p.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}
	data, contentType, err := h.registry.ResolvePhoto(r.Context(), p, docID, citizen.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writePhoto(w, data, contentType)
}

func writePhoto(w http.ResponseWriter, data []byte, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
