package repository

import (
	"testing"

	"fintrack/internal/models"
)

func TestCategoryRepository_Create_ValidCategory_ReturnsID(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	repo := NewCategoryRepository(db)

	id, err := repo.Create(&models.Category{
		UserID: userID,
		Name:   "Groceries",
		Type:   models.TransactionExpense,
		Icon:   "cart",
		Color:  "#22c55e",
	})
	if err != nil {
		t.Fatalf("Create() error = %v, want nil", err)
	}
	if id <= 0 {
		t.Error("Create() returned non-positive ID")
	}
}

func TestCategoryRepository_GetByID_Existing_ReturnsCategory(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	repo := NewCategoryRepository(db)

	id, _ := repo.Create(&models.Category{
		UserID: userID,
		Name:   "Salary",
		Type:   models.TransactionIncome,
		Color:  "#3b82f6",
	})

	found, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID() error = %v, want nil", err)
	}
	if found == nil {
		t.Fatal("GetByID() returned nil for existing category")
	}
	if found.Name != "Salary" {
		t.Errorf("GetByID() Name = %s, want Salary", found.Name)
	}
	if found.Type != models.TransactionIncome {
		t.Errorf("GetByID() Type = %s, want income", found.Type)
	}
	if found.Icon != "" {
		t.Errorf("GetByID() Icon = %s, want empty", found.Icon)
	}
}

func TestCategoryRepository_GetByID_NonExistent_ReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)

	found, err := repo.GetByID(99999)
	if err != nil {
		t.Fatalf("GetByID() error = %v, want nil", err)
	}
	if found != nil {
		t.Error("GetByID() should return nil for non-existent ID")
	}
}

func TestCategoryRepository_GetByUserID_SortedByName(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	repo := NewCategoryRepository(db)

	repo.Create(&models.Category{UserID: userID, Name: "Utilities", Type: "expense", Color: "#111111"})
	repo.Create(&models.Category{UserID: userID, Name: "Dining", Type: "expense", Color: "#222222"})

	found, err := repo.GetByUserID(userID)
	if err != nil {
		t.Fatalf("GetByUserID() error = %v, want nil", err)
	}
	if len(found) != 2 {
		t.Fatalf("GetByUserID() returned %d categories, want 2", len(found))
	}
	if found[0].Name != "Dining" {
		t.Errorf("First category should be 'Dining', got %s", found[0].Name)
	}
}

// FindByName tests

func TestCategoryRepository_FindByName_MatchesNameAndType(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	repo := NewCategoryRepository(db)

	repo.Create(&models.Category{UserID: userID, Name: "Subscription", Type: "expense", Color: "#111111"})

	found, err := repo.FindByName(userID, "Subscription", "expense")
	if err != nil {
		t.Fatalf("FindByName() error = %v, want nil", err)
	}
	if found == nil {
		t.Fatal("FindByName() returned nil for existing category")
	}

	// Same name, wrong type.
	miss, err := repo.FindByName(userID, "Subscription", "income")
	if err != nil {
		t.Fatalf("FindByName() error = %v, want nil", err)
	}
	if miss != nil {
		t.Error("FindByName() should return nil when type does not match")
	}
}

func TestCategoryRepository_FindByName_OtherUser_ReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	otherID := createTestUser(t, db, "other@example.com")
	repo := NewCategoryRepository(db)

	repo.Create(&models.Category{UserID: userID, Name: "Rent", Type: "expense", Color: "#111111"})

	found, err := repo.FindByName(otherID, "Rent", "expense")
	if err != nil {
		t.Fatalf("FindByName() error = %v, want nil", err)
	}
	if found != nil {
		t.Error("FindByName() should not match another user's category")
	}
}

// Update tests

func TestCategoryRepository_Update_ValidData_UpdatesCategory(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	repo := NewCategoryRepository(db)

	category := &models.Category{UserID: userID, Name: "Old", Type: "expense", Color: "#111111"}
	id, _ := repo.Create(category)

	category.ID = id
	category.Name = "New"
	category.Color = "#ff0000"

	if err := repo.Update(category); err != nil {
		t.Fatalf("Update() error = %v, want nil", err)
	}

	found, _ := repo.GetByID(id)
	if found.Name != "New" {
		t.Errorf("Update() Name = %s, want New", found.Name)
	}
	if found.Color != "#ff0000" {
		t.Errorf("Update() Color = %s, want #ff0000", found.Color)
	}
}

func TestCategoryRepository_Update_NonExistent_ReturnsError(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	repo := NewCategoryRepository(db)

	err := repo.Update(&models.Category{ID: 99999, UserID: userID, Name: "Fake", Type: "expense", Color: "#111111"})
	if err == nil {
		t.Error("Update() should return error for non-existent category")
	}
}

// Delete tests

func TestCategoryRepository_Delete_DetachesTransactions(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	accountID := createTestAccount(t, db, userID, "Checking", 100)
	categoryID := createTestCategory(t, db, userID, "Dining", "expense")

	result, err := db.Exec(`
		INSERT INTO transactions (user_id, account_id, category_id, type, amount, transaction_date)
		VALUES (?, ?, ?, 'expense', 25, '2024-06-01')
	`, userID, accountID, categoryID)
	if err != nil {
		t.Fatalf("failed to insert transaction: %v", err)
	}
	txnID, _ := result.LastInsertId()

	repo := NewCategoryRepository(db)
	if err := repo.Delete(categoryID); err != nil {
		t.Fatalf("Delete() error = %v, want nil", err)
	}

	// The transaction survives with category_id nulled; its amount is intact.
	txn, err := NewTransactionRepository(db).GetByID(txnID)
	if err != nil {
		t.Fatalf("GetByID() error = %v, want nil", err)
	}
	if txn == nil {
		t.Fatal("transaction should survive category deletion")
	}
	if txn.CategoryID != nil {
		t.Error("transaction category_id should be nulled after category deletion")
	}
	if txn.Amount != 25 {
		t.Errorf("transaction Amount = %v, want 25", txn.Amount)
	}
}

func TestCategoryRepository_Delete_NonExistent_ReturnsError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)

	if err := repo.Delete(99999); err == nil {
		t.Error("Delete() should return error for non-existent category")
	}
}
