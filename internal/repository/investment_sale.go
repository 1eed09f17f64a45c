package repository

import (
	"database/sql"

	"fintrack/internal/database"
	"fintrack/internal/models"
)

// InvestmentSaleRepository provides read access to sale records. Sales are
// created by the position engine and never updated afterwards.
type InvestmentSaleRepository struct {
	db *database.DB
}

// NewInvestmentSaleRepository creates a new InvestmentSaleRepository.
func NewInvestmentSaleRepository(db *database.DB) *InvestmentSaleRepository {
	return &InvestmentSaleRepository{db: db}
}

const saleColumns = `id, user_id, investment_id, profile_id, name, symbol, type, purchase_price, quantity, sell_price, sell_date, realized_gain, created_at`

// GetByID retrieves a sale record by ID. Returns nil if not found.
func (r *InvestmentSaleRepository) GetByID(id int64) (*models.InvestmentSale, error) {
	row := r.db.QueryRow(`
		SELECT `+saleColumns+`
		FROM investment_sales
		WHERE id = ?
	`, id)

	sale, err := scanSale(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// GetByUserID retrieves all sale records for a user, newest sale first.
func (r *InvestmentSaleRepository) GetByUserID(userID int64) ([]*models.InvestmentSale, error) {
	return r.querySales(`
		SELECT `+saleColumns+`
		FROM investment_sales
		WHERE user_id = ?
		ORDER BY sell_date DESC, id DESC
	`, userID)
}

// GetByProfileID retrieves a user's sale records filtered by the profile
// snapshotted on the sale itself. Sales keep this assignment even after the
// parent investment or the profile is gone.
func (r *InvestmentSaleRepository) GetByProfileID(userID, profileID int64) ([]*models.InvestmentSale, error) {
	return r.querySales(`
		SELECT `+saleColumns+`
		FROM investment_sales
		WHERE user_id = ? AND profile_id = ?
		ORDER BY sell_date DESC, id DESC
	`, userID, profileID)
}

// GetByInvestmentID retrieves the sale history of a single investment.
func (r *InvestmentSaleRepository) GetByInvestmentID(userID, investmentID int64) ([]*models.InvestmentSale, error) {
	return r.querySales(`
		SELECT `+saleColumns+`
		FROM investment_sales
		WHERE user_id = ? AND investment_id = ?
		ORDER BY sell_date DESC, id DESC
	`, userID, investmentID)
}

// SumRealizedGain returns the total realized gain across all of a user's
// sales.
func (r *InvestmentSaleRepository) SumRealizedGain(userID int64) (float64, error) {
	var sum sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT SUM(realized_gain) FROM investment_sales WHERE user_id = ?
	`, userID).Scan(&sum)
	if err != nil {
		return 0, err
	}
	if !sum.Valid {
		return 0, nil
	}
	return sum.Float64, nil
}

func (r *InvestmentSaleRepository) querySales(query string, args ...any) ([]*models.InvestmentSale, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]*models.InvestmentSale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func scanSale(row rowScanner) (*models.InvestmentSale, error) {
	sale := &models.InvestmentSale{}
	var profileID sql.NullInt64
	var sellDate string

	err := row.Scan(
		&sale.ID,
		&sale.UserID,
		&sale.InvestmentID,
		&profileID,
		&sale.Name,
		&sale.Symbol,
		&sale.Type,
		&sale.PurchasePrice,
		&sale.Quantity,
		&sale.SellPrice,
		&sellDate,
		&sale.RealizedGain,
		&sale.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if profileID.Valid {
		sale.ProfileID = &profileID.Int64
	}
	sale.SellDate = parseDate(sellDate)

	return sale, nil
}
