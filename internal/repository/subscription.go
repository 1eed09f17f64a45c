package repository

import (
	"database/sql"
	"errors"

	"fintrack/internal/database"
	"fintrack/internal/models"
)

// SubscriptionRepository handles subscription database operations.
type SubscriptionRepository struct {
	db *database.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository.
func NewSubscriptionRepository(db *database.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create inserts a new subscription and returns its ID.
func (r *SubscriptionRepository) Create(sub *models.Subscription) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO subscriptions (user_id, name, amount, frequency, due_day, account_id, category_id, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sub.UserID, sub.Name, sub.Amount, sub.Frequency, sub.DueDay, sub.AccountID, sub.CategoryID, boolToInt(sub.IsActive))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a subscription by ID. Returns nil if not found.
func (r *SubscriptionRepository) GetByID(id int64) (*models.Subscription, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, amount, frequency, due_day, account_id, category_id, is_active, created_at
		FROM subscriptions
		WHERE id = ?
	`, id)

	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// GetByUserID retrieves all subscriptions for a user, sorted by name.
func (r *SubscriptionRepository) GetByUserID(userID int64) ([]*models.Subscription, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, amount, frequency, due_day, account_id, category_id, is_active, created_at
		FROM subscriptions
		WHERE user_id = ?
		ORDER BY name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]*models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var dueDay sql.NullInt64
	var accountID, categoryID sql.NullInt64
	var isActive int

	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Name,
		&sub.Amount,
		&sub.Frequency,
		&dueDay,
		&accountID,
		&categoryID,
		&isActive,
		&sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDay.Valid {
		d := int(dueDay.Int64)
		sub.DueDay = &d
	}
	if accountID.Valid {
		sub.AccountID = &accountID.Int64
	}
	if categoryID.Valid {
		sub.CategoryID = &categoryID.Int64
	}
	sub.IsActive = isActive == 1

	return sub, nil
}

// Update updates an existing subscription.
func (r *SubscriptionRepository) Update(sub *models.Subscription) error {
	result, err := r.db.Exec(`
		UPDATE subscriptions
		SET name = ?, amount = ?, frequency = ?, due_day = ?, account_id = ?, category_id = ?, is_active = ?
		WHERE id = ?
	`, sub.Name, sub.Amount, sub.Frequency, sub.DueDay, sub.AccountID, sub.CategoryID, boolToInt(sub.IsActive), sub.ID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("subscription not found")
	}
	return nil
}

// SetActive flips a subscription's active flag.
func (r *SubscriptionRepository) SetActive(id int64, active bool) error {
	result, err := r.db.Exec(`
		UPDATE subscriptions SET is_active = ? WHERE id = ?
	`, boolToInt(active), id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("subscription not found")
	}
	return nil
}

// Delete removes a subscription by ID. Payment history cascades.
func (r *SubscriptionRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("subscription not found")
	}
	return nil
}

// CountByAccountID returns the number of subscriptions linked to an account.
// Used to reject account deletion while subscriptions still reference it.
func (r *SubscriptionRepository) CountByAccountID(accountID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM subscriptions WHERE account_id = ?
	`, accountID).Scan(&count)
	return count, err
}

// GetPayments retrieves the payment history of a subscription, newest first.
func (r *SubscriptionRepository) GetPayments(subscriptionID int64) ([]*models.SubscriptionPayment, error) {
	rows, err := r.db.Query(`
		SELECT id, subscription_id, amount, paid_date, is_paid, created_at
		FROM subscription_payments
		WHERE subscription_id = ?
		ORDER BY paid_date DESC, id DESC
	`, subscriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*models.SubscriptionPayment, 0)
	for rows.Next() {
		p := &models.SubscriptionPayment{}
		var isPaid int
		err := rows.Scan(&p.ID, &p.SubscriptionID, &p.Amount, &p.PaidDate, &isPaid, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		p.IsPaid = isPaid == 1
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetPaymentByID retrieves a single payment record. Returns nil if not found.
func (r *SubscriptionRepository) GetPaymentByID(id int64) (*models.SubscriptionPayment, error) {
	row := r.db.QueryRow(`
		SELECT id, subscription_id, amount, paid_date, is_paid, created_at
		FROM subscription_payments
		WHERE id = ?
	`, id)

	p := &models.SubscriptionPayment{}
	var isPaid int
	err := row.Scan(&p.ID, &p.SubscriptionID, &p.Amount, &p.PaidDate, &isPaid, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.IsPaid = isPaid == 1
	return p, nil
}

// boolToInt converts a boolean to SQLite integer (0 or 1).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
