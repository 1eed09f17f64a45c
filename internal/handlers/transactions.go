package handlers

import (
	"net/http"
	"strconv"

	"fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/middleware"
	"fintrack/internal/repository"
)

// TransactionHandler handles transaction routes. All mutations go through
// the ledger engine so account balances stay consistent.
type TransactionHandler struct {
	ledger          *ledger.Engine
	transactionRepo *repository.TransactionRepository
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(engine *ledger.Engine, transactionRepo *repository.TransactionRepository) *TransactionHandler {
	return &TransactionHandler{ledger: engine, transactionRepo: transactionRepo}
}

// List returns the user's transactions, newest first. Supports account_id,
// limit, and offset query parameters.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	limit := queryInt(r, "limit", 100)
	if limit > 1000 {
		limit = 1000
	}
	offset := queryInt(r, "offset", 0)

	if accountStr := r.URL.Query().Get("account_id"); accountStr != "" {
		accountID, err := strconv.ParseInt(accountStr, 10, 64)
		if err != nil {
			respondError(w, errors.Validation("Invalid account_id"))
			return
		}
		transactions, err := h.transactionRepo.GetByAccountID(accountID, limit, offset)
		if err != nil {
			respondError(w, errors.Internal(err))
			return
		}
		// Hide other users' accounts completely
		for _, txn := range transactions {
			if txn.UserID != user.ID {
				respondError(w, errors.Forbidden(""))
				return
			}
		}
		respondJSON(w, http.StatusOK, transactions)
		return
	}

	transactions, err := h.transactionRepo.GetByUserID(user.ID, limit, offset)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	respondJSON(w, http.StatusOK, transactions)
}

// Get returns a single transaction.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	txn, err := h.transactionRepo.GetByID(id)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	if txn == nil {
		respondError(w, errors.NotFound("Transaction"))
		return
	}
	if txn.UserID != user.ID {
		respondError(w, errors.Forbidden(""))
		return
	}
	respondJSON(w, http.StatusOK, txn)
}

type transactionRequest struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Payee       string  `json:"payee"`
	Date        string  `json:"date"`
	AccountID   int64   `json:"account_id"`
	CategoryID  *int64  `json:"category_id"`
}

func (req *transactionRequest) toParams() (ledger.TransactionParams, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return ledger.TransactionParams{}, err
	}
	return ledger.TransactionParams{
		Type:        req.Type,
		Amount:      req.Amount,
		Description: middleware.SanitizeString(req.Description),
		Payee:       middleware.SanitizeString(req.Payee),
		Date:        date,
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
	}, nil
}

// Create books a new transaction and moves the account balance with it.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	params, err := req.toParams()
	if err != nil {
		respondError(w, err)
		return
	}

	txn, err := h.ledger.CreateTransaction(user.ID, params)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, txn)
}

// Update rewrites a transaction; the engine reconciles the balances of the
// old and new accounts.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	params, err := req.toParams()
	if err != nil {
		respondError(w, err)
		return
	}

	txn, err := h.ledger.UpdateTransaction(user.ID, id, params)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txn)
}

// Delete removes a transaction and reverses its balance contribution.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	id, err := urlID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.ledger.DeleteTransaction(user.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
