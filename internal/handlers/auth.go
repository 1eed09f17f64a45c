package handlers

import (
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/middleware"
)

// AuthHandler handles registration, login, and session lifecycle.
type AuthHandler struct {
	service       *auth.Service
	sessionMaxAge int
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *auth.Service, sessionMaxAge int) *AuthHandler {
	return &AuthHandler{service: service, sessionMaxAge: sessionMaxAge}
}

// Register creates an account and logs the new user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, session, err := h.service.Register(req.Email, req.Password, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}

	middleware.SetSessionCookie(w, session.ID, h.sessionMaxAge)
	respondJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and opens a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, session, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	middleware.SetSessionCookie(w, session.ID, h.sessionMaxAge)
	respondJSON(w, http.StatusOK, user)
}

// Logout deletes the current session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		h.service.Sessions().Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// ChangePassword verifies the current password, stores the new one, and
// rotates the caller's session.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	session, err := h.service.ChangePassword(user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondError(w, err)
		return
	}

	middleware.SetSessionCookie(w, session.ID, h.sessionMaxAge)
	respondJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}
