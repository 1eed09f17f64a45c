package repository

import (
	"database/sql"

	"fintrack/internal/database"
	"fintrack/internal/models"
)

// InvestmentProfileRepository provides read access to investment profiles.
// Default-flag changes go through the position engine so the single-default
// invariant holds.
type InvestmentProfileRepository struct {
	db *database.DB
}

// NewInvestmentProfileRepository creates a new InvestmentProfileRepository.
func NewInvestmentProfileRepository(db *database.DB) *InvestmentProfileRepository {
	return &InvestmentProfileRepository{db: db}
}

// GetByID retrieves a profile by ID. Returns nil if not found.
func (r *InvestmentProfileRepository) GetByID(id int64) (*models.InvestmentProfile, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, is_default, created_at
		FROM investment_profiles
		WHERE id = ?
	`, id)

	profile := &models.InvestmentProfile{}
	var isDefault int
	err := row.Scan(&profile.ID, &profile.UserID, &profile.Name, &isDefault, &profile.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	profile.IsDefault = isDefault == 1
	return profile, nil
}

// GetByUserID retrieves all profiles for a user, default first.
func (r *InvestmentProfileRepository) GetByUserID(userID int64) ([]*models.InvestmentProfile, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, is_default, created_at
		FROM investment_profiles
		WHERE user_id = ?
		ORDER BY is_default DESC, name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]*models.InvestmentProfile, 0)
	for rows.Next() {
		profile := &models.InvestmentProfile{}
		var isDefault int
		err := rows.Scan(&profile.ID, &profile.UserID, &profile.Name, &isDefault, &profile.CreatedAt)
		if err != nil {
			return nil, err
		}
		profile.IsDefault = isDefault == 1
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// GetDefault retrieves the user's default profile. Returns nil if the user
// has no profiles.
func (r *InvestmentProfileRepository) GetDefault(userID int64) (*models.InvestmentProfile, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, is_default, created_at
		FROM investment_profiles
		WHERE user_id = ? AND is_default = 1
	`, userID)

	profile := &models.InvestmentProfile{}
	var isDefault int
	err := row.Scan(&profile.ID, &profile.UserID, &profile.Name, &isDefault, &profile.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	profile.IsDefault = isDefault == 1
	return profile, nil
}

// CountByUserID returns the number of profiles for a user.
func (r *InvestmentProfileRepository) CountByUserID(userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM investment_profiles WHERE user_id = ?
	`, userID).Scan(&count)
	return count, err
}
