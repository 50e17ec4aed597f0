package handler

import (
	"log/slog"
	"net/http"

	"github.com/tahmid/habit-tracker/internal/auth"
	"github.com/tahmid/habit-tracker/internal/model"
	"github.com/tahmid/habit-tracker/internal/service"
)

// AuthHandler exposes the identity endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// authResponse is the envelope returned by register, login, and guest
// creation: the profile plus a fresh token pair.
type authResponse struct {
	User    model.Profile `json:"user"`
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
}

func (h *AuthHandler) newAuthResponse(result *service.AuthResult) authResponse {
	return authResponse{
		User:    result.User.Profile(h.auth.Today()),
		Access:  result.Tokens.Access,
		Refresh: result.Tokens.Refresh,
	}
}

// HandleRegister creates a new account and returns it with its first token
// pair.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.newAuthResponse(result))
}

// HandleLogin authenticates by username or email plus password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.newAuthResponse(result))
}

// HandleGuest provisions a throwaway guest account. The request body is
// ignored.
func (h *AuthHandler) HandleGuest(w http.ResponseWriter, r *http.Request) {
	result, err := h.auth.CreateGuest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.newAuthResponse(result))
}

// HandleLogout revokes the supplied refresh token.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRefresh exchanges a refresh token for a new access token.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	access, err := h.auth.Refresh(r.Context(), req.Refresh)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

// HandleMe returns the authenticated caller's profile.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, detailResponse{Detail: "Authentication credentials were not provided."})
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Profile(h.auth.Today()))
}
