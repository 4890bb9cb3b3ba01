package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mobywatel/internal/identity"
	"mobywatel/internal/platform/middleware"
	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
)

// AdminHandler serves the officials roster, available to admins only.
type AdminHandler struct {
	identity     *identity.Service
	jwtValidator middleware.JWTValidator
	logger       *slog.Logger
}

func NewAdminHandler(identitySvc *identity.Service, jwtValidator middleware.JWTValidator, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{identity: identitySvc, jwtValidator: jwtValidator, logger: logger}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/api/admin/officials", h.handleListOfficials)
		r.Post("/api/admin/official", h.handleCreateOfficial)
		r.Put("/api/admin/official", h.handleUpdateOfficial)
		r.Delete("/api/admin/official", h.handleDeleteOfficial)
	})
}

func (h *AdminHandler) handleListOfficials(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	officials, err := h.identity.ListOfficials(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]officialResponse, 0, len(officials))
	for _, official := range officials {
		out = append(out, toOfficialResponse(official))
	}
	writeJSON(w, http.StatusOK, out)
}

type createOfficialRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Position  string `json:"position"`
}

func (h *AdminHandler) handleCreateOfficial(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req createOfficialRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	official, err := h.identity.CreateOfficial(r.Context(), p, identity.CreateOfficialInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Position:  req.Position,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"officialId": official.ID.String()})
}

type updateOfficialRequest struct {
	ID        string  `json:"id"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Position  *string `json:"position"`
}

func (h *AdminHandler) handleUpdateOfficial(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateOfficialRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	officialID, err := id.ParseOfficialID(req.ID)
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodeValidation, "id is not a valid UUID"))
		return
	}
	official, err := h.identity.UpdateOfficial(r.Context(), p, officialID, identity.UpdateOfficialInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Position:  req.Position,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOfficialResponse(official))
}

func (h *AdminHandler) handleDeleteOfficial(w http.ResponseWriter, r *http.Request) {
	p, err := principalFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	officialID, err := id.ParseOfficialID(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodeValidation, "id is not a valid UUID"))
		return
	}
	if err := h.identity.DeleteOfficial(r.Context(), p, officialID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
