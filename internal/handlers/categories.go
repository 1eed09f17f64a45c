package handlers

import (
	"net/http"

	"fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/repository"
)

// CategoryHandler handles category routes.
type CategoryHandler struct {
	categoryRepo *repository.CategoryRepository
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryRepo *repository.CategoryRepository) *CategoryHandler {
	return &CategoryHandler{categoryRepo: categoryRepo}
}

// List returns the user's categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	categories, err := h.categoryRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (req *categoryRequest) validate() error {
	req.Name = middleware.SanitizeString(req.Name)
	if req.Name == "" {
		return errors.Validation("Category name is required")
	}
	if req.Type != models.TransactionIncome && req.Type != models.TransactionExpense {
		return errors.Validation("Type must be income or expense")
	}
	if req.Color != "" && !middleware.ValidateColor(req.Color) {
		return errors.Validation("Color must be a hex code like #22C55E")
	}
	return nil
}

// Create creates a new category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, err)
		return
	}

	category := &models.Category{
		UserID: user.ID,
		Name:   req.Name,
		Type:   req.Type,
		Icon:   req.Icon,
		Color:  req.Color,
	}
	id, err := h.categoryRepo.Create(category)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	category.ID = id

	respondJSON(w, http.StatusCreated, category)
}

// Update edits a category.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, err)
		return
	}

	category, err := h.getOwned(user.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}

	category.Name = req.Name
	category.Type = req.Type
	category.Icon = req.Icon
	category.Color = req.Color
	if err := h.categoryRepo.Update(category); err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// Delete removes a category. Transactions that used it are detached, not
// deleted, so no account balance moves.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if _, err := h.getOwned(user.ID, id); err != nil {
		respondError(w, err)
		return
	}

	if err := h.categoryRepo.Delete(id); err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *CategoryHandler) getOwned(userID, id int64) (*models.Category, error) {
	category, err := h.categoryRepo.GetByID(id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if category == nil {
		return nil, errors.NotFound("Category")
	}
	if category.UserID != userID {
		return nil, errors.Forbidden("")
	}
	return category, nil
}
