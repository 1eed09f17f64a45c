package repository

import (
	"database/sql"

	"fintrack/internal/database"
	"fintrack/internal/models"
)

// InvestmentRepository provides read access to investments. Mutations go
// through the position engine, which keeps lot quantities and sale records
// consistent.
type InvestmentRepository struct {
	db *database.DB
}

// NewInvestmentRepository creates a new InvestmentRepository.
func NewInvestmentRepository(db *database.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

const investmentColumns = `id, user_id, profile_id, name, type, symbol, quantity, purchase_price, current_price, purchase_date, strategy, target, created_at`

// GetByID retrieves an investment by ID. Returns nil if not found.
func (r *InvestmentRepository) GetByID(id int64) (*models.Investment, error) {
	row := r.db.QueryRow(`
		SELECT `+investmentColumns+`
		FROM investments
		WHERE id = ?
	`, id)

	inv, err := scanInvestment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// GetByUserID retrieves all open positions for a user, sorted by name.
func (r *InvestmentRepository) GetByUserID(userID int64) ([]*models.Investment, error) {
	return r.queryInvestments(`
		SELECT `+investmentColumns+`
		FROM investments
		WHERE user_id = ?
		ORDER BY name ASC
	`, userID)
}

// GetByProfileID retrieves a user's open positions assigned to a profile.
func (r *InvestmentRepository) GetByProfileID(userID, profileID int64) ([]*models.Investment, error) {
	return r.queryInvestments(`
		SELECT `+investmentColumns+`
		FROM investments
		WHERE user_id = ? AND profile_id = ?
		ORDER BY name ASC
	`, userID, profileID)
}

func (r *InvestmentRepository) queryInvestments(query string, args ...any) ([]*models.Investment, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	investments := make([]*models.Investment, 0)
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		investments = append(investments, inv)
	}
	return investments, rows.Err()
}

func scanInvestment(row rowScanner) (*models.Investment, error) {
	inv := &models.Investment{}
	var profileID sql.NullInt64
	var strategy sql.NullString
	var target sql.NullFloat64
	var purchaseDate string

	err := row.Scan(
		&inv.ID,
		&inv.UserID,
		&profileID,
		&inv.Name,
		&inv.Type,
		&inv.Symbol,
		&inv.Quantity,
		&inv.PurchasePrice,
		&inv.CurrentPrice,
		&purchaseDate,
		&strategy,
		&target,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if profileID.Valid {
		inv.ProfileID = &profileID.Int64
	}
	if strategy.Valid {
		inv.Strategy = strategy.String
	}
	if target.Valid {
		inv.Target = &target.Float64
	}
	inv.PurchaseDate = parseDate(purchaseDate)

	return inv, nil
}
