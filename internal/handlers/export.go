package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/errors"
	"fintrack/internal/middleware"
	"fintrack/internal/repository"
)

// ExportHandler handles data export requests.
type ExportHandler struct {
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	categoryRepo    *repository.CategoryRepository
	investmentRepo  *repository.InvestmentRepository
	saleRepo        *repository.InvestmentSaleRepository
}

// NewExportHandler creates a new export handler.
func NewExportHandler(
	accountRepo *repository.AccountRepository,
	transactionRepo *repository.TransactionRepository,
	categoryRepo *repository.CategoryRepository,
	investmentRepo *repository.InvestmentRepository,
	saleRepo *repository.InvestmentSaleRepository,
) *ExportHandler {
	return &ExportHandler{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		investmentRepo:  investmentRepo,
		saleRepo:        saleRepo,
	}
}

// Transactions exports all of the user's transactions as CSV.
func (h *ExportHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	accounts, err := h.accountRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	accountNames := make(map[int64]string)
	for _, acc := range accounts {
		accountNames[acc.ID] = acc.Name
	}

	categories, err := h.categoryRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	categoryNames := make(map[int64]string)
	for _, cat := range categories {
		categoryNames[cat.ID] = cat.Name
	}

	transactions, err := h.transactionRepo.GetByUserID(user.ID, 100000, 0)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}

	filename := fmt.Sprintf("transactions_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"Date", "Account", "Category", "Type", "Amount", "Payee", "Description"})
	for _, txn := range transactions {
		category := ""
		if txn.CategoryID != nil {
			category = categoryNames[*txn.CategoryID]
		}
		writer.Write([]string{
			txn.Date.Format("2006-01-02"),
			accountNames[txn.AccountID],
			category,
			txn.Type,
			strconv.FormatFloat(txn.Amount, 'f', 2, 64),
			txn.Payee,
			txn.Description,
		})
	}
}

// All exports the user's complete data as a single JSON document.
func (h *ExportHandler) All(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	accounts, err := h.accountRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	categories, err := h.categoryRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	transactions, err := h.transactionRepo.GetByUserID(user.ID, 100000, 0)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	investments, err := h.investmentRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}
	sales, err := h.saleRepo.GetByUserID(user.ID)
	if err != nil {
		respondError(w, errors.Internal(err))
		return
	}

	filename := fmt.Sprintf("fintrack_export_%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(map[string]any{
		"exported_at":  time.Now().Format(time.RFC3339),
		"accounts":     accounts,
		"categories":   categories,
		"transactions": transactions,
		"investments":  investments,
		"sales":        sales,
	})
}
