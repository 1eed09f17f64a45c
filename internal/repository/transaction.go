package repository

import (
	"database/sql"
	"time"

	"fintrack/internal/database"
	"fintrack/internal/models"
)

// TransactionRepository provides read access to transactions. All mutations
// go through the ledger engine, which pairs each write with its balance
// adjustment.
type TransactionRepository struct {
	db *database.DB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, account_id, category_id, type, amount, description, payee, transaction_date, created_at`

// GetByID retrieves a transaction by ID. Returns nil if not found.
func (r *TransactionRepository) GetByID(id int64) (*models.Transaction, error) {
	row := r.db.QueryRow(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ?
	`, id)

	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// GetByUserID retrieves transactions for a user with pagination, newest first.
func (r *TransactionRepository) GetByUserID(userID int64, limit, offset int) ([]*models.Transaction, error) {
	return r.queryTransactions(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ?
		ORDER BY transaction_date DESC, id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
}

// GetByAccountID retrieves transactions for an account with pagination.
func (r *TransactionRepository) GetByAccountID(accountID int64, limit, offset int) ([]*models.Transaction, error) {
	return r.queryTransactions(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE account_id = ?
		ORDER BY transaction_date DESC, id DESC
		LIMIT ? OFFSET ?
	`, accountID, limit, offset)
}

// GetByDateRange retrieves a user's transactions within a date range.
func (r *TransactionRepository) GetByDateRange(userID int64, start, end time.Time) ([]*models.Transaction, error) {
	return r.queryTransactions(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ? AND transaction_date >= ? AND transaction_date <= ?
		ORDER BY transaction_date DESC, id DESC
	`, userID, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// CountByAccountID returns the number of transactions for an account.
func (r *TransactionRepository) CountByAccountID(accountID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM transactions WHERE account_id = ?
	`, accountID).Scan(&count)
	return count, err
}

// SumSignedByAccountID returns the signed sum of all live transactions on an
// account: income counts positive, expense negative.
func (r *TransactionRepository) SumSignedByAccountID(accountID int64) (float64, error) {
	var sum sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END)
		FROM transactions
		WHERE account_id = ?
	`, accountID).Scan(&sum)
	if err != nil {
		return 0, err
	}
	if !sum.Valid {
		return 0, nil
	}
	return sum.Float64, nil
}

// queryTransactions is a helper to query multiple transactions.
func (r *TransactionRepository) queryTransactions(query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*models.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	txn := &models.Transaction{}
	var categoryID sql.NullInt64
	var description, payee sql.NullString
	var transactionDate string

	err := row.Scan(
		&txn.ID,
		&txn.UserID,
		&txn.AccountID,
		&categoryID,
		&txn.Type,
		&txn.Amount,
		&description,
		&payee,
		&transactionDate,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		txn.CategoryID = &categoryID.Int64
	}
	if description.Valid {
		txn.Description = description.String
	}
	if payee.Valid {
		txn.Payee = payee.String
	}
	txn.Date = parseDate(transactionDate)

	return txn, nil
}

// parseDate handles various date formats returned by SQLite.
func parseDate(s string) time.Time {
	formats := []string{
		"2006-01-02",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
