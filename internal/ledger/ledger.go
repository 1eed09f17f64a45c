// Package ledger keeps account balances consistent with their transaction
// set. Every transaction mutation (create, update, delete, subscription
// payment) runs inside a single database transaction together with its
// compensating balance adjustment, so no reader ever observes one without
// the other.
package ledger

import (
	"database/sql"
	goerrors "errors"
	"time"

	"fintrack/internal/database"
	"fintrack/internal/errors"
	"fintrack/internal/models"
)

// Engine applies transaction mutations and their balance deltas atomically.
type Engine struct {
	db *database.DB
}

// NewEngine creates a new ledger Engine.
func NewEngine(db *database.DB) *Engine {
	return &Engine{db: db}
}

// TransactionParams carries the caller-supplied fields of a transaction.
type TransactionParams struct {
	Type        string
	Amount      float64
	Description string
	Payee       string
	Date        time.Time
	AccountID   int64
	CategoryID  *int64
}

func (p *TransactionParams) validate() error {
	if p.AccountID == 0 {
		return errors.Validation("Please select an account")
	}
	if p.Amount <= 0 {
		return errors.Validation("Amount must be greater than 0")
	}
	if p.Type != models.TransactionIncome && p.Type != models.TransactionExpense {
		return errors.Validation("Type must be income or expense")
	}
	return nil
}

// signedAmount returns the balance contribution of a transaction type/amount
// pair: positive for income, negative for expense.
func signedAmount(txType string, amount float64) float64 {
	if txType == models.TransactionIncome {
		return amount
	}
	return -amount
}

// inTx runs fn atomically and classifies failures: domain errors produced by
// fn pass through, anything else (store rejected the write, commit failed)
// becomes an opaque consistency failure. Either way the store rolled back.
func (e *Engine) inTx(fn func(tx *sql.Tx) error) error {
	err := e.db.WithTx(fn)
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if goerrors.As(err, &appErr) {
		return err
	}
	return errors.Consistency(err)
}

// CreateTransaction persists a new transaction and applies its signed amount
// to the target account's balance in one atomic unit.
func (e *Engine) CreateTransaction(userID int64, p TransactionParams) (*models.Transaction, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		UserID:      userID,
		AccountID:   p.AccountID,
		CategoryID:  p.CategoryID,
		Type:        p.Type,
		Amount:      p.Amount,
		Description: p.Description,
		Payee:       p.Payee,
		Date:        p.Date,
	}

	err := e.inTx(func(tx *sql.Tx) error {
		if err := checkAccount(tx, userID, p.AccountID); err != nil {
			return err
		}
		if err := checkCategory(tx, userID, p.CategoryID); err != nil {
			return err
		}

		id, err := insertTransaction(tx, txn)
		if err != nil {
			return err
		}
		txn.ID = id

		return adjustBalance(tx, p.AccountID, signedAmount(p.Type, p.Amount))
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// UpdateTransaction rewrites a transaction and reconciles the affected
// account balances. Three cases:
//   - same account, zero net change: the row is updated, no balance write
//   - same account, nonzero net change: one delta on that account
//   - account changed: reverse the old effect on the old account and apply
//     the full new effect on the new account
func (e *Engine) UpdateTransaction(userID, id int64, p TransactionParams) (*models.Transaction, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:          id,
		UserID:      userID,
		AccountID:   p.AccountID,
		CategoryID:  p.CategoryID,
		Type:        p.Type,
		Amount:      p.Amount,
		Description: p.Description,
		Payee:       p.Payee,
		Date:        p.Date,
	}

	err := e.inTx(func(tx *sql.Tx) error {
		old, err := getTransaction(tx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return errors.NotFound("Transaction")
		}
		if old.UserID != userID {
			return errors.Forbidden("")
		}

		if err := checkAccount(tx, userID, p.AccountID); err != nil {
			return err
		}
		if err := checkCategory(tx, userID, p.CategoryID); err != nil {
			return err
		}

		_, err = tx.Exec(`
			UPDATE transactions
			SET account_id = ?, category_id = ?, type = ?, amount = ?, description = ?, payee = ?, transaction_date = ?
			WHERE id = ?
		`, p.AccountID, p.CategoryID, p.Type, p.Amount,
			nullString(p.Description), nullString(p.Payee), p.Date.Format("2006-01-02"), id)
		if err != nil {
			return err
		}

		oldSigned := signedAmount(old.Type, old.Amount)
		newSigned := signedAmount(p.Type, p.Amount)

		if old.AccountID == p.AccountID {
			net := newSigned - oldSigned
			if net == 0 {
				// Idempotent no-op: the row changed, the balance did not.
				return nil
			}
			return adjustBalance(tx, p.AccountID, net)
		}

		if err := adjustBalance(tx, old.AccountID, -oldSigned); err != nil {
			return err
		}
		return adjustBalance(tx, p.AccountID, newSigned)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// DeleteTransaction removes a transaction and reverses its contribution on
// its account. Deleting a transaction that does not exist is a no-op.
func (e *Engine) DeleteTransaction(userID, id int64) error {
	return e.inTx(func(tx *sql.Tx) error {
		txn, err := getTransaction(tx, id)
		if err != nil {
			return err
		}
		if txn == nil {
			return nil
		}
		if txn.UserID != userID {
			return errors.Forbidden("")
		}

		if _, err := tx.Exec(`DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return err
		}
		return adjustBalance(tx, txn.AccountID, -signedAmount(txn.Type, txn.Amount))
	})
}

// PaymentOptions controls MarkSubscriptionPaid.
type PaymentOptions struct {
	// PaymentID, when set, names an existing unpaid payment record to flip
	// to paid. No transaction is created and no balance moves on this path.
	PaymentID *int64
	// AccountID, when set, overrides the account the expense is charged to.
	AccountID *int64
}

// MarkSubscriptionPaid records a subscription payment. Without a PaymentID
// it creates exactly one SubscriptionPayment and one expense transaction,
// charged to the explicit account, the subscription's linked account, or the
// user's oldest account, in that order. The transaction is categorized under
// the subscription's category or a find-or-created "Subscription" expense
// category.
func (e *Engine) MarkSubscriptionPaid(userID, subscriptionID int64, opts PaymentOptions) (*models.SubscriptionPayment, error) {
	payment := &models.SubscriptionPayment{SubscriptionID: subscriptionID}

	err := e.inTx(func(tx *sql.Tx) error {
		var subUserID int64
		var subName string
		var subAmount float64
		var subAccountID, subCategoryID sql.NullInt64
		err := tx.QueryRow(`
			SELECT user_id, name, amount, account_id, category_id
			FROM subscriptions
			WHERE id = ?
		`, subscriptionID).Scan(&subUserID, &subName, &subAmount, &subAccountID, &subCategoryID)
		if err == sql.ErrNoRows {
			return errors.NotFound("Subscription")
		}
		if err != nil {
			return err
		}
		if subUserID != userID {
			return errors.Forbidden("")
		}

		if opts.PaymentID != nil {
			// Correcting a previously-unpaid record: flip the flag only.
			var payID, paySubID int64
			var payAmount float64
			var paidDate time.Time
			err := tx.QueryRow(`
				SELECT id, subscription_id, amount, paid_date
				FROM subscription_payments
				WHERE id = ?
			`, *opts.PaymentID).Scan(&payID, &paySubID, &payAmount, &paidDate)
			if err == sql.ErrNoRows {
				return errors.NotFound("Payment")
			}
			if err != nil {
				return err
			}
			if paySubID != subscriptionID {
				return errors.NotFound("Payment")
			}
			if _, err := tx.Exec(`UPDATE subscription_payments SET is_paid = 1 WHERE id = ?`, payID); err != nil {
				return err
			}
			payment.ID = payID
			payment.Amount = payAmount
			payment.PaidDate = paidDate
			payment.IsPaid = true
			return nil
		}

		accountID, err := resolveAccount(tx, userID, opts.AccountID, subAccountID)
		if err != nil {
			return err
		}
		categoryID, err := resolveCategory(tx, userID, subCategoryID)
		if err != nil {
			return err
		}

		paidDate := time.Now()
		result, err := tx.Exec(`
			INSERT INTO subscription_payments (subscription_id, amount, paid_date, is_paid)
			VALUES (?, ?, ?, 1)
		`, subscriptionID, subAmount, paidDate)
		if err != nil {
			return err
		}
		payID, err := result.LastInsertId()
		if err != nil {
			return err
		}

		txn := &models.Transaction{
			UserID:      userID,
			AccountID:   accountID,
			CategoryID:  &categoryID,
			Type:        models.TransactionExpense,
			Amount:      subAmount,
			Description: subName,
			Payee:       subName,
			Date:        paidDate,
		}
		if _, err := insertTransaction(tx, txn); err != nil {
			return err
		}

		if err := adjustBalance(tx, accountID, -subAmount); err != nil {
			return err
		}

		payment.ID = payID
		payment.Amount = subAmount
		payment.PaidDate = paidDate
		payment.IsPaid = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// resolveAccount picks the account a subscription expense is charged to:
// explicit override, then the subscription's linked account, then the user's
// oldest account.
func resolveAccount(tx *sql.Tx, userID int64, explicit *int64, linked sql.NullInt64) (int64, error) {
	if explicit != nil {
		if err := checkAccount(tx, userID, *explicit); err != nil {
			return 0, err
		}
		return *explicit, nil
	}
	if linked.Valid {
		if err := checkAccount(tx, userID, linked.Int64); err != nil {
			return 0, err
		}
		return linked.Int64, nil
	}

	var id int64
	err := tx.QueryRow(`
		SELECT id FROM accounts
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, errors.NotFound("Account. Please create an account first")
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// resolveCategory returns the subscription's own category or finds-or-creates
// the user's "Subscription" expense category.
func resolveCategory(tx *sql.Tx, userID int64, linked sql.NullInt64) (int64, error) {
	if linked.Valid {
		return linked.Int64, nil
	}

	var id int64
	err := tx.QueryRow(`
		SELECT id FROM categories
		WHERE user_id = ? AND name = 'Subscription' AND type = 'expense'
	`, userID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	result, err := tx.Exec(`
		INSERT INTO categories (user_id, name, type, color)
		VALUES (?, 'Subscription', 'expense', '#8B5CF6')
	`, userID)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// adjustBalance applies a signed delta to an account balance as a single
// SQL-side increment. The balance is never read back and rewritten, so
// concurrent deltas against the same account serialize in the store.
func adjustBalance(tx *sql.Tx, accountID int64, delta float64) error {
	_, err := tx.Exec(`
		UPDATE accounts SET balance = balance + ? WHERE id = ?
	`, delta, accountID)
	return err
}

// checkAccount verifies the account exists and belongs to the user.
func checkAccount(tx *sql.Tx, userID, accountID int64) error {
	var ownerID int64
	err := tx.QueryRow(`SELECT user_id FROM accounts WHERE id = ?`, accountID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return errors.NotFound("Account")
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return errors.Forbidden("")
	}
	return nil
}

// checkCategory verifies the category, when supplied, belongs to the user.
func checkCategory(tx *sql.Tx, userID int64, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	var ownerID int64
	err := tx.QueryRow(`SELECT user_id FROM categories WHERE id = ?`, *categoryID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return errors.NotFound("Category")
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return errors.Forbidden("")
	}
	return nil
}

func insertTransaction(tx *sql.Tx, txn *models.Transaction) (int64, error) {
	result, err := tx.Exec(`
		INSERT INTO transactions (user_id, account_id, category_id, type, amount, description, payee, transaction_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, txn.UserID, txn.AccountID, txn.CategoryID, txn.Type, txn.Amount,
		nullString(txn.Description), nullString(txn.Payee), txn.Date.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	txn.ID = id
	return id, nil
}

// getTransaction reads the fields an update or delete needs to reconcile
// balances. Returns nil if the row does not exist.
func getTransaction(tx *sql.Tx, id int64) (*models.Transaction, error) {
	txn := &models.Transaction{ID: id}
	err := tx.QueryRow(`
		SELECT user_id, account_id, type, amount
		FROM transactions
		WHERE id = ?
	`, id).Scan(&txn.UserID, &txn.AccountID, &txn.Type, &txn.Amount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
