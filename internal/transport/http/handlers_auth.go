package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mobywatel/internal/identity"
	"mobywatel/internal/platform/middleware"
	"mobywatel/pkg/apperrors"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	identity     *identity.Service
	jwtValidator middleware.JWTValidator
	logger       *slog.Logger
}

func NewAuthHandler(identitySvc *identity.Service, jwtValidator middleware.JWTValidator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{identity: identitySvc, jwtValidator: jwtValidator, logger: logger}
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/api/auth/register", h.handleRegister)
	r.Post("/api/auth/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/api/auth/logout", h.handleLogout)
	})
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BirthDate string `json:"birthDate"`
	PESEL     string `json:"pesel"`
	Gender    string `json:"gender"`
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	birthDate, err := time.Parse(dateLayout, req.BirthDate)
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodeValidation, "birthDate must be YYYY-MM-DD"))
		return
	}

	citizen, err := h.identity.RegisterCitizen(r.Context(), identity.RegisterCitizenInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: birthDate,
		PESEL:     req.PESEL,
		Gender:    identity.Gender(req.Gender),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"citizenId": citizen.ID.String()})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token, role, err := h.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"role":  string(role),
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.Logout(r.Context(), middleware.GetTokenID(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
