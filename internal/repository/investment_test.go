package repository

import (
	"testing"
)

// InvestmentRepository tests

func TestInvestmentRepository_GetByID_Existing_ReturnsInvestment(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	id := insertTestInvestment(t, db, userID, nil, "Apple", 10)
	repo := NewInvestmentRepository(db)

	found, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID() error = %v, want nil", err)
	}
	if found == nil {
		t.Fatal("GetByID() returned nil for existing investment")
	}
	if found.Name != "Apple" {
		t.Errorf("GetByID() Name = %s, want Apple", found.Name)
	}
	if found.Quantity != 10 {
		t.Errorf("GetByID() Quantity = %v, want 10", found.Quantity)
	}
	if found.ProfileID != nil {
		t.Error("GetByID() ProfileID should be nil when unassigned")
	}
	if found.PurchaseDate.IsZero() {
		t.Error("GetByID() PurchaseDate should be parsed")
	}
}

func TestInvestmentRepository_GetByID_NonExistent_ReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvestmentRepository(db)

	found, err := repo.GetByID(99999)
	if err != nil {
		t.Fatalf("GetByID() error = %v, want nil", err)
	}
	if found != nil {
		t.Error("GetByID() should return nil for non-existent ID")
	}
}

func TestInvestmentRepository_GetByUserID_SortedByName(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	insertTestInvestment(t, db, userID, nil, "Tesla", 5)
	insertTestInvestment(t, db, userID, nil, "Apple", 10)
	repo := NewInvestmentRepository(db)

	found, err := repo.GetByUserID(userID)
	if err != nil {
		t.Fatalf("GetByUserID() error = %v, want nil", err)
	}
	if len(found) != 2 {
		t.Fatalf("GetByUserID() returned %d investments, want 2", len(found))
	}
	if found[0].Name != "Apple" {
		t.Errorf("First investment should be 'Apple', got %s", found[0].Name)
	}
}

func TestInvestmentRepository_GetByProfileID_FiltersByProfile(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	profileID := createTestProfile(t, db, userID, "Retirement", true)
	insertTestInvestment(t, db, userID, &profileID, "Assigned", 5)
	insertTestInvestment(t, db, userID, nil, "Unassigned", 5)
	repo := NewInvestmentRepository(db)

	found, err := repo.GetByProfileID(userID, profileID)
	if err != nil {
		t.Fatalf("GetByProfileID() error = %v, want nil", err)
	}
	if len(found) != 1 {
		t.Fatalf("GetByProfileID() returned %d investments, want 1", len(found))
	}
	if found[0].Name != "Assigned" {
		t.Errorf("GetByProfileID() returned %s, want Assigned", found[0].Name)
	}
}

// InvestmentProfileRepository tests

func TestInvestmentProfileRepository_GetByID_ReportsDefaultFlag(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	profileID := createTestProfile(t, db, userID, "Main", true)
	repo := NewInvestmentProfileRepository(db)

	found, err := repo.GetByID(profileID)
	if err != nil {
		t.Fatalf("GetByID() error = %v, want nil", err)
	}
	if found == nil {
		t.Fatal("GetByID() returned nil for existing profile")
	}
	if !found.IsDefault {
		t.Error("GetByID() should report the default flag")
	}
}

func TestInvestmentProfileRepository_GetByID_NonExistent_ReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvestmentProfileRepository(db)

	found, err := repo.GetByID(99999)
	if err != nil {
		t.Fatalf("GetByID() error = %v, want nil", err)
	}
	if found != nil {
		t.Error("GetByID() should return nil for non-existent ID")
	}
}

func TestInvestmentProfileRepository_GetByUserID_DefaultFirst(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	createTestProfile(t, db, userID, "Aggressive", false)
	createTestProfile(t, db, userID, "Zen", true)
	repo := NewInvestmentProfileRepository(db)

	found, err := repo.GetByUserID(userID)
	if err != nil {
		t.Fatalf("GetByUserID() error = %v, want nil", err)
	}
	if len(found) != 2 {
		t.Fatalf("GetByUserID() returned %d profiles, want 2", len(found))
	}
	// Default sorts ahead of alphabetical order.
	if found[0].Name != "Zen" || !found[0].IsDefault {
		t.Errorf("First profile should be the default 'Zen', got %s", found[0].Name)
	}
}

func TestInvestmentProfileRepository_GetDefault_ReturnsDefaultProfile(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	createTestProfile(t, db, userID, "Side", false)
	defaultID := createTestProfile(t, db, userID, "Main", true)
	repo := NewInvestmentProfileRepository(db)

	found, err := repo.GetDefault(userID)
	if err != nil {
		t.Fatalf("GetDefault() error = %v, want nil", err)
	}
	if found == nil {
		t.Fatal("GetDefault() returned nil")
	}
	if found.ID != defaultID {
		t.Errorf("GetDefault() ID = %d, want %d", found.ID, defaultID)
	}
}

func TestInvestmentProfileRepository_GetDefault_NoProfiles_ReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	repo := NewInvestmentProfileRepository(db)

	found, err := repo.GetDefault(userID)
	if err != nil {
		t.Fatalf("GetDefault() error = %v, want nil", err)
	}
	if found != nil {
		t.Error("GetDefault() should return nil when user has no profiles")
	}
}

func TestInvestmentProfileRepository_CountByUserID_ReturnsCorrectCount(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	createTestProfile(t, db, userID, "One", true)
	createTestProfile(t, db, userID, "Two", false)
	repo := NewInvestmentProfileRepository(db)

	count, err := repo.CountByUserID(userID)
	if err != nil {
		t.Fatalf("CountByUserID() error = %v, want nil", err)
	}
	if count != 2 {
		t.Errorf("CountByUserID() = %d, want 2", count)
	}
}

// InvestmentSaleRepository tests

func TestInvestmentSaleRepository_GetByUserID_NewestSaleFirst(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	insertTestSale(t, db, userID, 1, nil, "Older", 10, "2024-01-15")
	insertTestSale(t, db, userID, 2, nil, "Newer", 20, "2024-03-15")
	repo := NewInvestmentSaleRepository(db)

	found, err := repo.GetByUserID(userID)
	if err != nil {
		t.Fatalf("GetByUserID() error = %v, want nil", err)
	}
	if len(found) != 2 {
		t.Fatalf("GetByUserID() returned %d sales, want 2", len(found))
	}
	if found[0].Name != "Newer" {
		t.Errorf("First sale should be 'Newer', got %s", found[0].Name)
	}
	if found[0].SellDate.Format("2006-01-02") != "2024-03-15" {
		t.Errorf("SellDate = %s, want 2024-03-15", found[0].SellDate.Format("2006-01-02"))
	}
}

func TestInvestmentSaleRepository_GetByProfileID_UsesSnapshotAssignment(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	profileID := createTestProfile(t, db, userID, "Main", true)
	insertTestSale(t, db, userID, 1, &profileID, "InProfile", 10, "2024-02-01")
	insertTestSale(t, db, userID, 2, nil, "NoProfile", 20, "2024-02-02")
	repo := NewInvestmentSaleRepository(db)

	found, err := repo.GetByProfileID(userID, profileID)
	if err != nil {
		t.Fatalf("GetByProfileID() error = %v, want nil", err)
	}
	if len(found) != 1 {
		t.Fatalf("GetByProfileID() returned %d sales, want 1", len(found))
	}
	if found[0].Name != "InProfile" {
		t.Errorf("GetByProfileID() returned %s, want InProfile", found[0].Name)
	}
	if found[0].ProfileID == nil || *found[0].ProfileID != profileID {
		t.Error("GetByProfileID() sale should carry its snapshotted profile")
	}
}

func TestInvestmentSaleRepository_GetByInvestmentID_FiltersHistory(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	insertTestSale(t, db, userID, 7, nil, "First", 5, "2024-01-01")
	insertTestSale(t, db, userID, 7, nil, "Second", 5, "2024-02-01")
	insertTestSale(t, db, userID, 8, nil, "Other", 5, "2024-03-01")
	repo := NewInvestmentSaleRepository(db)

	found, err := repo.GetByInvestmentID(userID, 7)
	if err != nil {
		t.Fatalf("GetByInvestmentID() error = %v, want nil", err)
	}
	if len(found) != 2 {
		t.Fatalf("GetByInvestmentID() returned %d sales, want 2", len(found))
	}
}

func TestInvestmentSaleRepository_SumRealizedGain_SumsAllSales(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	insertTestSale(t, db, userID, 1, nil, "Win", 150, "2024-01-01")
	insertTestSale(t, db, userID, 2, nil, "Loss", -50, "2024-02-01")
	repo := NewInvestmentSaleRepository(db)

	sum, err := repo.SumRealizedGain(userID)
	if err != nil {
		t.Fatalf("SumRealizedGain() error = %v, want nil", err)
	}
	if sum != 100 {
		t.Errorf("SumRealizedGain() = %v, want 100", sum)
	}
}

func TestInvestmentSaleRepository_SumRealizedGain_NoSales_ReturnsZero(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db, "test@example.com")
	repo := NewInvestmentSaleRepository(db)

	sum, err := repo.SumRealizedGain(userID)
	if err != nil {
		t.Fatalf("SumRealizedGain() error = %v, want nil", err)
	}
	if sum != 0 {
		t.Errorf("SumRealizedGain() = %v, want 0", sum)
	}
}
