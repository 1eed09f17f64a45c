package repository

import (
	"database/sql"
	"errors"

	"fintrack/internal/database"
	"fintrack/internal/models"
)

// CategoryRepository handles category database operations.
type CategoryRepository struct {
	db *database.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category and returns its ID.
func (r *CategoryRepository) Create(category *models.Category) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO categories (user_id, name, type, icon, color)
		VALUES (?, ?, ?, ?, ?)
	`, category.UserID, category.Name, category.Type, category.Icon, category.Color)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetByID retrieves a category by ID. Returns nil if not found.
func (r *CategoryRepository) GetByID(id int64) (*models.Category, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, type, icon, color, created_at
		FROM categories
		WHERE id = ?
	`, id)

	category := &models.Category{}
	var icon sql.NullString
	err := row.Scan(
		&category.ID,
		&category.UserID,
		&category.Name,
		&category.Type,
		&icon,
		&category.Color,
		&category.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if icon.Valid {
		category.Icon = icon.String
	}
	return category, nil
}

// GetByUserID retrieves all categories for a user, sorted by name.
func (r *CategoryRepository) GetByUserID(userID int64) ([]*models.Category, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, type, icon, color, created_at
		FROM categories
		WHERE user_id = ?
		ORDER BY name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		category := &models.Category{}
		var icon sql.NullString
		err := rows.Scan(
			&category.ID,
			&category.UserID,
			&category.Name,
			&category.Type,
			&icon,
			&category.Color,
			&category.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if icon.Valid {
			category.Icon = icon.String
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// FindByName retrieves a user's category by name and type.
// Returns nil if not found.
func (r *CategoryRepository) FindByName(userID int64, name, categoryType string) (*models.Category, error) {
	row := r.db.QueryRow(`
		SELECT id, user_id, name, type, icon, color, created_at
		FROM categories
		WHERE user_id = ? AND name = ? AND type = ?
	`, userID, name, categoryType)

	category := &models.Category{}
	var icon sql.NullString
	err := row.Scan(
		&category.ID,
		&category.UserID,
		&category.Name,
		&category.Type,
		&icon,
		&category.Color,
		&category.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if icon.Valid {
		category.Icon = icon.String
	}
	return category, nil
}

// Update updates an existing category.
func (r *CategoryRepository) Update(category *models.Category) error {
	result, err := r.db.Exec(`
		UPDATE categories
		SET name = ?, type = ?, icon = ?, color = ?
		WHERE id = ?
	`, category.Name, category.Type, category.Icon, category.Color, category.ID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("category not found")
	}
	return nil
}

// Delete removes a category by ID. Transactions referencing it keep their
// amounts and accounts; the foreign key nulls their category_id, so no
// balance is affected.
func (r *CategoryRepository) Delete(id int64) error {
	result, err := r.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return errors.New("category not found")
	}
	return nil
}
