package handlers

import (
	"net/http"
	"strings"

	"fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/repository"
)

// UserHandler handles the current user's profile and settings.
type UserHandler struct {
	userRepo *repository.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// Me returns the authenticated user.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, middleware.GetUser(r))
}

// UpdateSettings edits profile settings: name, email, currency, date format.
func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Currency   string `json:"currency"`
		DateFormat string `json:"date_format"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if req.Name != "" {
		user.Name = middleware.SanitizeString(req.Name)
	}
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" && email != user.Email {
		if !middleware.ValidateEmail(email) {
			respondError(w, errors.Validation("Invalid email address"))
			return
		}
		exists, err := h.userRepo.EmailExists(email)
		if err != nil {
			respondError(w, errors.Internal(err))
			return
		}
		if exists {
			respondError(w, errors.Conflict("Email is already in use"))
			return
		}
		user.Email = email
	}
	if req.Currency != "" {
		if !middleware.ValidateCurrency(req.Currency) {
			respondError(w, errors.Validation("Currency must be a 3-letter code"))
			return
		}
		user.Currency = req.Currency
	}
	if req.DateFormat != "" {
		switch req.DateFormat {
		case "dd/MM/yyyy", "MM/dd/yyyy", "yyyy-MM-dd":
			user.DateFormat = req.DateFormat
		default:
			respondError(w, errors.Validation("Unsupported date format"))
			return
		}
	}

	if err := h.userRepo.Update(user); err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, user)
}
