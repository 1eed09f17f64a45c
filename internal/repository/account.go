package repository

import (
	"database/sql"
	"errors"

	"fintrack/internal/database"
	"fintrack/internal/models"
)

// AccountRepository handles account database operations.
//
// The balance column is written here only on Create (the initial balance);
// every later balance change goes through the ledger engine.
type AccountRepository struct {
	db *database.DB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account and returns its ID.
func (r *AccountRepository) Create(account *models.Account) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO accounts (user_id, name, type, balance, currency)
		VALUES (?, ?, ?, ?, ?)
	`, account.UserID, account.Name, account.Type, account.Balance, account.Currency)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves an account by ID. Returns nil if not found.
func (r *AccountRepository) GetByID(id int64) (*models.Account, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, type, balance, currency, created_at
		FROM accounts
		WHERE id = ?
	`, id)

	account := &models.Account{}
	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Name,
		&account.Type,
		&account.Balance,
		&account.Currency,
		&account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// GetByUserID retrieves all accounts for a user, sorted by name.
func (r *AccountRepository) GetByUserID(userID int64) ([]*models.Account, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, type, balance, currency, created_at
		FROM accounts
		WHERE user_id = ?
		ORDER BY name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*models.Account, 0)
	for rows.Next() {
		account := &models.Account{}
		err := rows.Scan(
			&account.ID,
			&account.UserID,
			&account.Name,
			&account.Type,
			&account.Balance,
			&account.Currency,
			&account.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// GetOldestByUserID retrieves the user's first-created account.
// Returns nil if the user has no accounts.
func (r *AccountRepository) GetOldestByUserID(userID int64) (*models.Account, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, type, balance, currency, created_at
		FROM accounts
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`, userID)

	account := &models.Account{}
	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.Name,
		&account.Type,
		&account.Balance,
		&account.Currency,
		&account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Update updates an account's name, type and currency. Balance is not
// touched here.
func (r *AccountRepository) Update(account *models.Account) error {
	result, err := r.db.Exec(`
		UPDATE accounts
		SET name = ?, type = ?, currency = ?
		WHERE id = ?
	`, account.Name, account.Type, account.Currency, account.ID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("account not found")
	}
	return nil
}

// Delete removes an account by ID. Transactions referencing the account are
// removed by the cascading foreign key.
func (r *AccountRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("account not found")
	}
	return nil
}

// CountByUserID returns the number of accounts for a user.
func (r *AccountRepository) CountByUserID(userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM accounts WHERE user_id = ?
	`, userID).Scan(&count)
	return count, err
}
