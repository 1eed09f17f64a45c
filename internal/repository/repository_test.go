package repository

import (
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/database"
)

// setupTestDB creates a temporary SQLite database with migrations applied.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := database.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createTestUser(t *testing.T, db *database.DB, email string) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO users (email, password_hash, name)
		VALUES (?, ?, ?)
	`, email, "hashedpassword", "Test User")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

func createTestAccount(t *testing.T, db *database.DB, userID int64, name string, balance float64) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO accounts (user_id, name, type, balance, currency)
		VALUES (?, ?, 'bank', ?, 'USD')
	`, userID, name, balance)
	if err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

func createTestCategory(t *testing.T, db *database.DB, userID int64, name, categoryType string) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO categories (user_id, name, type, color)
		VALUES (?, ?, ?, '#6366f1')
	`, userID, name, categoryType)
	if err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

// insertTestTransaction writes a transaction row directly. Balance bookkeeping
// is the ledger engine's job and is not exercised here.
func insertTestTransaction(t *testing.T, db *database.DB, userID, accountID int64, txType string, amount float64, date string) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO transactions (user_id, account_id, type, amount, transaction_date)
		VALUES (?, ?, ?, ?, ?)
	`, userID, accountID, txType, amount, date)
	if err != nil {
		t.Fatalf("failed to insert test transaction: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

func createTestProfile(t *testing.T, db *database.DB, userID int64, name string, isDefault bool) int64 {
	t.Helper()
	def := 0
	if isDefault {
		def = 1
	}
	result, err := db.Exec(`
		INSERT INTO investment_profiles (user_id, name, is_default)
		VALUES (?, ?, ?)
	`, userID, name, def)
	if err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

func insertTestInvestment(t *testing.T, db *database.DB, userID int64, profileID *int64, name string, quantity float64) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO investments (user_id, profile_id, name, type, symbol, quantity, purchase_price, current_price, purchase_date)
		VALUES (?, ?, ?, 'stock', 'TST', ?, 100, 100, ?)
	`, userID, profileID, name, quantity, time.Now().Format("2006-01-02"))
	if err != nil {
		t.Fatalf("failed to insert test investment: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

func insertTestSale(t *testing.T, db *database.DB, userID, investmentID int64, profileID *int64, name string, gain float64, sellDate string) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO investment_sales (user_id, investment_id, profile_id, name, symbol, type, purchase_price, quantity, sell_price, sell_date, realized_gain)
		VALUES (?, ?, ?, ?, 'TST', 'stock', 100, 1, ?, ?, ?)
	`, userID, investmentID, profileID, name, 100+gain, sellDate, gain)
	if err != nil {
		t.Fatalf("failed to insert test sale: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}
