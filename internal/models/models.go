// Package models contains the domain models for the finance tracker.
package models

import "time"

// User represents a registered user.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Name         string    `json:"name"`
	Currency     string    `json:"currency"`
	DateFormat   string    `json:"date_format"` // "dd/MM/yyyy", "MM/dd/yyyy", "yyyy-MM-dd"
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Account types.
const (
	AccountTypeBank       = "bank"
	AccountTypeCreditCard = "credit_card"
	AccountTypeWallet     = "wallet"
	AccountTypeSavings    = "savings"
)

// Account represents a financial account (bank, credit card, wallet, savings).
// Balance is mutated only through the ledger engine; it always equals the
// initial balance plus the signed sum of the account's transactions.
type Account struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Balance   float64   `json:"balance"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// IsValidAccountType reports whether t is a known account type.
func IsValidAccountType(t string) bool {
	switch t {
	case AccountTypeBank, AccountTypeCreditCard, AccountTypeWallet, AccountTypeSavings:
		return true
	}
	return false
}

// Transaction types.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Transaction represents a single income or expense entry against an account.
type Transaction struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	AccountID   int64     `json:"account_id"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Type        string    `json:"type"` // "income" or "expense"
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	Payee       string    `json:"payee,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// SignedAmount returns the transaction's contribution to its account balance:
// positive for income, negative for expense.
func (t *Transaction) SignedAmount() float64 {
	if t.Type == TransactionIncome {
		return t.Amount
	}
	return -t.Amount
}

// Category classifies transactions. Deleting a category detaches it from
// transactions without touching balances.
type Category struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"` // "income" or "expense"
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscription represents a recurring payment (streaming, rent, insurance...).
type Subscription struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	Amount     float64   `json:"amount"`
	Frequency  string    `json:"frequency"` // "monthly", "yearly", "weekly"
	DueDay     *int      `json:"due_day,omitempty"`
	AccountID  *int64    `json:"account_id,omitempty"`
	CategoryID *int64    `json:"category_id,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubscriptionPayment records one billing-period payment of a subscription.
type SubscriptionPayment struct {
	ID             int64     `json:"id"`
	SubscriptionID int64     `json:"subscription_id"`
	Amount         float64   `json:"amount"`
	PaidDate       time.Time `json:"paid_date"`
	IsPaid         bool      `json:"is_paid"`
	CreatedAt      time.Time `json:"created_at"`
}

// Investment types.
const (
	InvestmentStock      = "stock"
	InvestmentCrypto     = "crypto"
	InvestmentMutualFund = "mutual_fund"
	InvestmentOther      = "other"
)

// Investment represents one open lot: a quantity of a single security held at
// a single cost basis. Quantity stays > 0 while the row exists; a sale that
// empties the lot deletes the row.
type Investment struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	ProfileID     *int64    `json:"profile_id,omitempty"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Symbol        string    `json:"symbol"`
	Quantity      float64   `json:"quantity"`
	PurchasePrice float64   `json:"purchase_price"`
	CurrentPrice  float64   `json:"current_price"` // mark, externally supplied
	PurchaseDate  time.Time `json:"purchase_date"`
	Strategy      string    `json:"strategy,omitempty"`
	Target        *float64  `json:"target,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// InvestmentSale is an immutable record of a partial or full liquidation.
// Name, symbol, type, purchase price and profile are snapshotted at sale time
// so the record stays meaningful after its parent investment is deleted.
type InvestmentSale struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	InvestmentID  int64     `json:"investment_id"` // may dangle after full liquidation
	ProfileID     *int64    `json:"profile_id,omitempty"`
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	Type          string    `json:"type"`
	PurchasePrice float64   `json:"purchase_price"`
	Quantity      float64   `json:"quantity"`
	SellPrice     float64   `json:"sell_price"`
	SellDate      time.Time `json:"sell_date"`
	RealizedGain  float64   `json:"realized_gain"`
	CreatedAt     time.Time `json:"created_at"`
}

// InvestmentProfile groups investments (e.g. "Retirement", "Speculative").
// Exactly one profile per user is the default at any time.
type InvestmentProfile struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// Session represents a user session for authentication.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
