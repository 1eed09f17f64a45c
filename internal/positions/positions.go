// Package positions tracks investment lots and their disposal. Each
// investment row is one lot; selling part of it shrinks the quantity,
// selling all of it deletes the row and leaves behind an immutable sale
// record that snapshots everything needed to interpret it later.
package positions

import (
	"database/sql"
	goerrors "errors"
	"time"

	"fintrack/internal/database"
	"fintrack/internal/errors"
	"fintrack/internal/models"
)

// Engine applies lot mutations and sale records atomically.
type Engine struct {
	db *database.DB
}

// NewEngine creates a new position Engine.
func NewEngine(db *database.DB) *Engine {
	return &Engine{db: db}
}

// inTx runs fn atomically; non-domain failures surface as opaque
// consistency errors after rollback.
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

// ProfileField expresses whether an update touches the profile assignment.
// The zero value leaves the current assignment untouched; Set with a nil ID
// clears it.
type ProfileField struct {
	Set bool
	ID  *int64
}

// Keep returns a ProfileField that preserves the current assignment.
func Keep() ProfileField {
	return ProfileField{}
}

// SetTo returns a ProfileField that assigns the given profile; pass nil to
// clear the assignment.
func SetTo(id *int64) ProfileField {
	return ProfileField{Set: true, ID: id}
}

// InvestmentParams carries the caller-supplied fields of an investment.
type InvestmentParams struct {
	Name          string
	Type          string
	Symbol        string
	Quantity      float64
	PurchasePrice float64
	CurrentPrice  float64
	PurchaseDate  time.Time
	Strategy      string
	Target        *float64
	Profile       ProfileField
}

func (p *InvestmentParams) validate() error {
	if p.Name == "" || p.Type == "" || p.Symbol == "" {
		return errors.Validation("Name, type, and symbol are required")
	}
	if p.Quantity <= 0 || p.PurchasePrice <= 0 || p.CurrentPrice <= 0 {
		return errors.Validation("Quantity and prices must be greater than 0")
	}
	return nil
}

// CreateInvestment opens a new lot. A supplied profile must belong to the
// caller.
func (e *Engine) CreateInvestment(userID int64, p InvestmentParams) (*models.Investment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var profileID *int64
	if p.Profile.Set {
		profileID = p.Profile.ID
	}

	inv := &models.Investment{
		UserID:        userID,
		ProfileID:     profileID,
		Name:          p.Name,
		Type:          p.Type,
		Symbol:        p.Symbol,
		Quantity:      p.Quantity,
		PurchasePrice: p.PurchasePrice,
		CurrentPrice:  p.CurrentPrice,
		PurchaseDate:  p.PurchaseDate,
		Strategy:      p.Strategy,
		Target:        p.Target,
	}

	err := e.inTx(func(tx *sql.Tx) error {
		if err := checkProfile(tx, userID, profileID); err != nil {
			return err
		}

		result, err := tx.Exec(`
			INSERT INTO investments (user_id, profile_id, name, type, symbol, quantity, purchase_price, current_price, purchase_date, strategy, target)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, userID, profileID, p.Name, p.Type, p.Symbol, p.Quantity, p.PurchasePrice,
			p.CurrentPrice, p.PurchaseDate.Format("2006-01-02"), nullString(p.Strategy), p.Target)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		inv.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// UpdateInvestment rewrites a still-open position. The profile assignment
// follows the tagged field: an unset field preserves the stored value, a set
// field with nil clears it, and a set field with an ID re-verifies that the
// profile belongs to the caller.
func (e *Engine) UpdateInvestment(userID, id int64, p InvestmentParams) (*models.Investment, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	inv := &models.Investment{
		ID:            id,
		UserID:        userID,
		Name:          p.Name,
		Type:          p.Type,
		Symbol:        p.Symbol,
		Quantity:      p.Quantity,
		PurchasePrice: p.PurchasePrice,
		CurrentPrice:  p.CurrentPrice,
		PurchaseDate:  p.PurchaseDate,
		Strategy:      p.Strategy,
		Target:        p.Target,
	}

	err := e.inTx(func(tx *sql.Tx) error {
		var ownerID int64
		var storedProfileID sql.NullInt64
		err := tx.QueryRow(`
			SELECT user_id, profile_id FROM investments WHERE id = ?
		`, id).Scan(&ownerID, &storedProfileID)
		if err == sql.ErrNoRows {
			return errors.NotFound("Investment")
		}
		if err != nil {
			return err
		}
		if ownerID != userID {
			return errors.Forbidden("")
		}

		var profileID *int64
		if p.Profile.Set {
			profileID = p.Profile.ID
		} else if storedProfileID.Valid {
			profileID = &storedProfileID.Int64
		}
		if err := checkProfile(tx, userID, profileID); err != nil {
			return err
		}
		inv.ProfileID = profileID

		_, err = tx.Exec(`
			UPDATE investments
			SET profile_id = ?, name = ?, type = ?, symbol = ?, quantity = ?, purchase_price = ?, current_price = ?, purchase_date = ?, strategy = ?, target = ?
			WHERE id = ?
		`, profileID, p.Name, p.Type, p.Symbol, p.Quantity, p.PurchasePrice,
			p.CurrentPrice, p.PurchaseDate.Format("2006-01-02"), nullString(p.Strategy), p.Target, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// DeleteInvestment removes an open position. Sale records referencing it
// survive with their snapshots intact.
func (e *Engine) DeleteInvestment(userID, id int64) error {
	return e.inTx(func(tx *sql.Tx) error {
		var ownerID int64
		err := tx.QueryRow(`SELECT user_id FROM investments WHERE id = ?`, id).Scan(&ownerID)
		if err == sql.ErrNoRows {
			return errors.NotFound("Investment")
		}
		if err != nil {
			return err
		}
		if ownerID != userID {
			return errors.Forbidden("")
		}

		_, err = tx.Exec(`DELETE FROM investments WHERE id = ?`, id)
		return err
	})
}

// SaleParams carries the inputs of a sale.
type SaleParams struct {
	InvestmentID int64
	Quantity     float64
	SellPrice    float64
	SellDate     time.Time
}

// RecordSale books a partial or full liquidation. It persists an immutable
// InvestmentSale snapshotting the lot's name, symbol, type, cost basis and
// profile, then shrinks the lot or, on full liquidation, deletes it — all in
// one atomic unit. Realized gain is (sell price − cost basis) × quantity.
func (e *Engine) RecordSale(userID int64, p SaleParams) (*models.InvestmentSale, error) {
	if p.Quantity <= 0 {
		return nil, errors.Validation("Sell quantity must be greater than 0")
	}
	if p.SellPrice <= 0 {
		return nil, errors.Validation("Sell price must be greater than 0")
	}

	sale := &models.InvestmentSale{
		UserID:       userID,
		InvestmentID: p.InvestmentID,
		Quantity:     p.Quantity,
		SellPrice:    p.SellPrice,
		SellDate:     p.SellDate,
	}

	err := e.inTx(func(tx *sql.Tx) error {
		var ownerID int64
		var profileID sql.NullInt64
		var name, symbol, invType string
		var quantity, purchasePrice float64
		err := tx.QueryRow(`
			SELECT user_id, profile_id, name, symbol, type, quantity, purchase_price
			FROM investments
			WHERE id = ?
		`, p.InvestmentID).Scan(&ownerID, &profileID, &name, &symbol, &invType, &quantity, &purchasePrice)
		if err == sql.ErrNoRows {
			return errors.NotFound("Investment")
		}
		if err != nil {
			return err
		}
		if ownerID != userID {
			return errors.Forbidden("")
		}

		if p.Quantity > quantity {
			return errors.Validationf("Cannot sell more than %g shares", quantity)
		}

		realizedGain := (p.SellPrice - purchasePrice) * p.Quantity

		result, err := tx.Exec(`
			INSERT INTO investment_sales (user_id, investment_id, profile_id, name, symbol, type, purchase_price, quantity, sell_price, sell_date, realized_gain)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, userID, p.InvestmentID, profileID, name, symbol, invType, purchasePrice,
			p.Quantity, p.SellPrice, p.SellDate.Format("2006-01-02"), realizedGain)
		if err != nil {
			return err
		}
		saleID, err := result.LastInsertId()
		if err != nil {
			return err
		}

		remaining := quantity - p.Quantity
		if remaining <= 0 {
			// Position closed: the lot goes away, the sale record stays.
			if _, err := tx.Exec(`DELETE FROM investments WHERE id = ?`, p.InvestmentID); err != nil {
				return err
			}
		} else {
			if _, err := tx.Exec(`
				UPDATE investments SET quantity = quantity - ? WHERE id = ?
			`, p.Quantity, p.InvestmentID); err != nil {
				return err
			}
		}

		sale.ID = saleID
		if profileID.Valid {
			sale.ProfileID = &profileID.Int64
		}
		sale.Name = name
		sale.Symbol = symbol
		sale.Type = invType
		sale.PurchasePrice = purchasePrice
		sale.RealizedGain = realizedGain
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// CreateProfile creates an investment profile. The user's first profile
// becomes the default.
func (e *Engine) CreateProfile(userID int64, name string) (*models.InvestmentProfile, error) {
	if name == "" {
		return nil, errors.Validation("Profile name is required")
	}

	profile := &models.InvestmentProfile{UserID: userID, Name: name}

	err := e.inTx(func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRow(`
			SELECT COUNT(*) FROM investment_profiles WHERE user_id = ?
		`, userID).Scan(&count); err != nil {
			return err
		}
		profile.IsDefault = count == 0

		result, err := tx.Exec(`
			INSERT INTO investment_profiles (user_id, name, is_default)
			VALUES (?, ?, ?)
		`, userID, name, boolToInt(profile.IsDefault))
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		profile.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// SetDefaultProfile makes the given profile the user's default, clearing the
// flag on every other profile in the same atomic unit. A user with profiles
// never ends up with zero or multiple defaults.
func (e *Engine) SetDefaultProfile(userID, profileID int64) error {
	return e.inTx(func(tx *sql.Tx) error {
		var ownerID int64
		err := tx.QueryRow(`
			SELECT user_id FROM investment_profiles WHERE id = ?
		`, profileID).Scan(&ownerID)
		if err == sql.ErrNoRows {
			return errors.NotFound("Investment profile")
		}
		if err != nil {
			return err
		}
		if ownerID != userID {
			return errors.Forbidden("")
		}

		if _, err := tx.Exec(`
			UPDATE investment_profiles SET is_default = 0
			WHERE user_id = ? AND is_default = 1
		`, userID); err != nil {
			return err
		}
		_, err = tx.Exec(`
			UPDATE investment_profiles SET is_default = 1 WHERE id = ?
		`, profileID)
		return err
	})
}

// DeleteProfile removes a profile. If the default is deleted and other
// profiles remain, one of them is promoted before the delete commits.
// Investments assigned to the profile have their assignment cleared by the
// foreign key; sale records keep their snapshotted profile id.
func (e *Engine) DeleteProfile(userID, profileID int64) error {
	return e.inTx(func(tx *sql.Tx) error {
		var ownerID int64
		var isDefault int
		err := tx.QueryRow(`
			SELECT user_id, is_default FROM investment_profiles WHERE id = ?
		`, profileID).Scan(&ownerID, &isDefault)
		if err == sql.ErrNoRows {
			return errors.NotFound("Investment profile")
		}
		if err != nil {
			return err
		}
		if ownerID != userID {
			return errors.Forbidden("")
		}

		if isDefault == 1 {
			var nextID int64
			err := tx.QueryRow(`
				SELECT id FROM investment_profiles
				WHERE user_id = ? AND id != ?
				ORDER BY created_at ASC, id ASC
				LIMIT 1
			`, userID, profileID).Scan(&nextID)
			if err != nil && err != sql.ErrNoRows {
				return err
			}
			if err == nil {
				if _, err := tx.Exec(`
					UPDATE investment_profiles SET is_default = 1 WHERE id = ?
				`, nextID); err != nil {
					return err
				}
			}
		}

		_, err = tx.Exec(`DELETE FROM investment_profiles WHERE id = ?`, profileID)
		return err
	})
}

// checkProfile verifies the profile, when supplied, exists and belongs to
// the user.
func checkProfile(tx *sql.Tx, userID int64, profileID *int64) error {
	if profileID == nil {
		return nil
	}
	var ownerID int64
	err := tx.QueryRow(`
		SELECT user_id FROM investment_profiles WHERE id = ?
	`, *profileID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return errors.NotFound("Investment profile")
	}
	if err != nil {
		return err
	}
	if ownerID != userID {
		return errors.Forbidden("")
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
