package handlers

import (
	"net/http"

	"fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/repository"
)

// SubscriptionHandler handles subscription routes. Marking a subscription
// paid goes through the ledger engine because it books a real expense.
type SubscriptionHandler struct {
	subscriptionRepo *repository.SubscriptionRepository
	ledger           *ledger.Engine
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionRepo *repository.SubscriptionRepository, engine *ledger.Engine) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionRepo: subscriptionRepo, ledger: engine}
}

// List returns the user's subscriptions.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	subscriptions, err := h.subscriptionRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, subscriptions)
}

type subscriptionRequest struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Frequency  string  `json:"frequency"`
	DueDay     *int    `json:"due_day"`
	AccountID  *int64  `json:"account_id"`
	CategoryID *int64  `json:"category_id"`
}

func (req *subscriptionRequest) validate() error {
	req.Name = middleware.SanitizeString(req.Name)
	if req.Name == "" {
		return errors.Validation("Subscription name is required")
	}
	if req.Amount <= 0 {
		return errors.Validation("Amount must be greater than 0")
	}
	switch req.Frequency {
	case "weekly", "monthly", "yearly":
	default:
		return errors.Validation("Frequency must be weekly, monthly, or yearly")
	}
	if req.DueDay != nil && !middleware.ValidateDueDay(*req.DueDay) {
		return errors.Validation("Due day must be between 1 and 31")
	}
	return nil
}

// Create creates a new subscription.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, err)
		return
	}

	sub := &models.Subscription{
		UserID:     user.ID,
		Name:       req.Name,
		Amount:     req.Amount,
		Frequency:  req.Frequency,
		DueDay:     req.DueDay,
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		IsActive:   true,
	}
	id, err := h.subscriptionRepo.Create(sub)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	sub.ID = id

	respondJSON(w, http.StatusCreated, sub)
}

// Update edits a subscription.
func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, err)
		return
	}

	sub, err := h.getOwned(user.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}

	sub.Name = req.Name
	sub.Amount = req.Amount
	sub.Frequency = req.Frequency
	sub.DueDay = req.DueDay
	sub.AccountID = req.AccountID
	sub.CategoryID = req.CategoryID
	if err := h.subscriptionRepo.Update(sub); err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

// Toggle flips a subscription between active and paused.
func (h *SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	sub, err := h.getOwned(user.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}

	sub.IsActive = !sub.IsActive
	if err := h.subscriptionRepo.SetActive(id, sub.IsActive); err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

// Duplicate clones a subscription under a "(Copy)" name.
func (h *SubscriptionHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	sub, err := h.getOwned(user.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}

	clone := &models.Subscription{
		UserID:     user.ID,
		Name:       sub.Name + " (Copy)",
		Amount:     sub.Amount,
		Frequency:  sub.Frequency,
		DueDay:     sub.DueDay,
		AccountID:  sub.AccountID,
		CategoryID: sub.CategoryID,
		IsActive:   sub.IsActive,
	}
	cloneID, err := h.subscriptionRepo.Create(clone)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	clone.ID = cloneID

	respondJSON(w, http.StatusCreated, clone)
}

// Delete removes a subscription and its payment history. Booked transactions
// stay untouched.
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.subscriptionRepo.Delete(id); err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Pay marks the subscription paid for the current period. Passing an
// existing payment_id makes the call a state flip with no new expense.
func (h *SubscriptionHandler) Pay(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		PaymentID *int64 `json:"payment_id"`
		AccountID *int64 `json:"account_id"`
	}
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, err)
			return
		}
	}

	payment, err := h.ledger.MarkSubscriptionPaid(user.ID, id, ledger.PaymentOptions{
		PaymentID: req.PaymentID,
		AccountID: req.AccountID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payment)
}

// Payments returns a subscription's payment history.
func (h *SubscriptionHandler) Payments(w http.ResponseWriter, r *http.Request) {
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

	payments, err := h.subscriptionRepo.GetPayments(id)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

func (h *SubscriptionHandler) getOwned(userID, id int64) (*models.Subscription, error) {
	sub, err := h.subscriptionRepo.GetByID(id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if sub == nil {
		return nil, errors.NotFound("Subscription")
	}
	if sub.UserID != userID {
		return nil, errors.Forbidden("")
	}
	return sub, nil
}
