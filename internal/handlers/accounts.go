package handlers

import (
	"net/http"

	"fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/repository"
)

// AccountHandler handles account routes.
type AccountHandler struct {
	accountRepo      *repository.AccountRepository
	subscriptionRepo *repository.SubscriptionRepository
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(
	accountRepo *repository.AccountRepository,
	subscriptionRepo *repository.SubscriptionRepository,
) *AccountHandler {
	return &AccountHandler{
		accountRepo:      accountRepo,
		subscriptionRepo: subscriptionRepo,
	}
}

// List returns the user's accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	accounts, err := h.accountRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

// Get returns a single account.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	account, err := h.getOwned(user.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

type accountRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

func (req *accountRequest) validate() error {
	req.Name = middleware.SanitizeString(req.Name)
	if req.Name == "" {
		return errors.Validation("Account name is required")
	}
	if !models.IsValidAccountType(req.Type) {
		return errors.Validation("Invalid account type")
	}
	if req.Currency != "" && !middleware.ValidateCurrency(req.Currency) {
		return errors.Validation("Currency must be a 3-letter code")
	}
	return nil
}

// Create creates a new account. The supplied balance is the initial balance;
// every later change goes through transactions.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, err)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = user.Currency
	}

	account := &models.Account{
		UserID:   user.ID,
		Name:     req.Name,
		Type:     req.Type,
		Balance:  req.Balance,
		Currency: currency,
	}
	id, err := h.accountRepo.Create(account)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	account.ID = id

	respondJSON(w, http.StatusCreated, account)
}

// Update renames or retypes an account. Balance is not editable here.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, err)
		return
	}

	account, err := h.getOwned(user.ID, id)
	if err != nil {
		respondError(w, err)
		return
	}

	account.Name = req.Name
	account.Type = req.Type
	if req.Currency != "" {
		account.Currency = req.Currency
	}
	if err := h.accountRepo.Update(account); err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, account)
}

// Delete removes an account and, via cascade, its transactions. Accounts
// still referenced by a subscription cannot be deleted.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	count, err := h.subscriptionRepo.CountByAccountID(id)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	if count > 0 {
		respondError(w, errors.Conflict("Account is linked to subscriptions; unlink them first"))
		return
	}

	if err := h.accountRepo.Delete(id); err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// getOwned fetches an account and verifies ownership.
func (h *AccountHandler) getOwned(userID, id int64) (*models.Account, error) {
	account, err := h.accountRepo.GetByID(id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if account == nil {
		return nil, errors.NotFound("Account")
	}
	if account.UserID != userID {
		return nil, errors.Forbidden("")
	}
	return account, nil
}
