// Package middleware provides HTTP middleware for the finance tracker API.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/models"
	"fintrack/internal/repository"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey ContextKey = "user"

	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session_id"
)

// AuthMiddleware handles authentication for protected routes.
type AuthMiddleware struct {
	sessionManager *auth.SessionManager
	userRepo       *repository.UserRepository
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(sm *auth.SessionManager, userRepo *repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		sessionManager: sm,
		userRepo:       userRepo,
	}
}

// LoadUser loads the current user from the session cookie when present. It
// does not require authentication; routes that do stack RequireAuth on top.
func (m *AuthMiddleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.sessionManager.Validate(cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.userRepo.GetByID(userID)
		if err != nil || user == nil {
			clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects unauthenticated requests with a JSON 401.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUser retrieves the authenticated user from the request context.
// Returns nil if no user is authenticated.
func GetUser(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// SetSessionCookie sets the session cookie.
func SetSessionCookie(w http.ResponseWriter, sessionID string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// ClearSessionCookie is the exported version for use in handlers.
func ClearSessionCookie(w http.ResponseWriter) {
	clearSessionCookie(w)
}
