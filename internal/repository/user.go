// Package repository provides the data access layer for the finance tracker.
package repository

import (
	"database/sql"
	"fmt"
	"time"

	"fintrack/internal/database"
	"fintrack/internal/models"
)

// UserRepository handles user data operations.
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and returns the ID.
func (r *UserRepository) Create(user *models.User) (int64, error) {
	query := `
		INSERT INTO users (email, password_hash, name, currency, date_format, created_at, updated_at)
		VALUES (?, ?, ?, COALESCE(NULLIF(?, ''), 'USD'), COALESCE(NULLIF(?, ''), 'dd/MM/yyyy'), ?, ?)
	`
	now := time.Now()

	result, err := r.db.Exec(query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Currency,
		user.DateFormat,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return id, nil
}

// GetByID retrieves a user by ID. Returns nil if not found.
func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	return r.getByField("id", id)
}

// GetByEmail retrieves a user by email. Returns nil if not found.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getByField("email", email)
}

func (r *UserRepository) getByField(field string, value any) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, password_hash, name, currency, date_format, created_at, updated_at
		FROM users
		WHERE %s = ?
	`, field)

	user := &models.User{}
	err := r.db.QueryRow(query, value).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Currency,
		&user.DateFormat,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by %s: %w", field, err)
	}
	return user, nil
}

// Update updates a user's profile settings.
func (r *UserRepository) Update(user *models.User) error {
	result, err := r.db.Exec(`
		UPDATE users
		SET email = ?, name = ?, currency = ?, date_format = ?, updated_at = ?
		WHERE id = ?
	`, user.Email, user.Name, user.Currency, user.DateFormat, time.Now(), user.ID)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePassword updates a user's password hash.
func (r *UserRepository) UpdatePassword(userID int64, passwordHash string) error {
	_, err := r.db.Exec(`
		UPDATE users
		SET password_hash = ?, updated_at = ?
		WHERE id = ?
	`, passwordHash, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

// EmailExists checks if an email is already registered.
func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return count > 0, nil
}
