package auth

import (
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/database"
	"fintrack/internal/errors"
	"fintrack/internal/repository"
)

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

func setupService(t *testing.T) (*database.DB, *Service) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewService(repository.NewUserRepository(db), NewSessionManager(db))
	return db, svc
}

func createTestUser(t *testing.T, db *database.DB) int64 {
	t.Helper()
	result, err := db.Exec(`
		INSERT INTO users (email, password_hash, name)
		VALUES (?, ?, ?)
	`, "test@example.com", "hashedpassword", "Test User")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	id, _ := result.LastInsertId()
	return id
}

// Password hashing tests

func TestHashPassword_ValidPassword_ReturnsHash(t *testing.T) {
	password := "securepassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v, want nil", err)
	}
	if hash == "" || hash == password {
		t.Error("HashPassword() returned empty or plaintext hash")
	}
}

func TestHashPassword_SamePassword_DifferentHashes(t *testing.T) {
	// Salting makes repeated hashes differ
	hash1, _ := HashPassword("samepassword")
	hash2, _ := HashPassword("samepassword")

	if hash1 == hash2 {
		t.Error("HashPassword() should return different hashes for repeated input")
	}
}

func TestCheckPassword_CorrectPassword_ReturnsTrue(t *testing.T) {
	hash, _ := HashPassword("correctpassword")

	if !CheckPassword("correctpassword", hash) {
		t.Error("CheckPassword() should return true for correct password")
	}
}

func TestCheckPassword_IncorrectPassword_ReturnsFalse(t *testing.T) {
	hash, _ := HashPassword("correctpassword")

	if CheckPassword("wrongpassword", hash) {
		t.Error("CheckPassword() should return false for incorrect password")
	}
}

func TestCheckPassword_EmptyInputs_ReturnsFalse(t *testing.T) {
	hash, _ := HashPassword("somepassword")

	if CheckPassword("", hash) {
		t.Error("CheckPassword() should return false for empty password")
	}
	if CheckPassword("password", "") {
		t.Error("CheckPassword() should return false for empty hash")
	}
}

// Session tests

func TestSessionManager_Create_ReturnsValidSession(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	session, err := sm.Create(userID)
	if err != nil {
		t.Fatalf("Create() error = %v, want nil", err)
	}
	if session.ID == "" {
		t.Error("Create() returned empty session ID")
	}
	if session.UserID != userID {
		t.Errorf("Create() UserID = %d, want %d", session.UserID, userID)
	}
	if session.ExpiresAt.Before(time.Now()) {
		t.Error("Create() returned already expired session")
	}
}

func TestSessionManager_Get_NonExistent_ReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	sm := NewSessionManager(db)

	found, err := sm.Get("nonexistent-session-id")
	if err != nil {
		t.Fatalf("Get() error = %v, want nil", err)
	}
	if found != nil {
		t.Error("Get() should return nil for non-existent session")
	}
}

func TestSessionManager_Delete_RemovesSession(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	created, _ := sm.Create(userID)
	if err := sm.Delete(created.ID); err != nil {
		t.Fatalf("Delete() error = %v, want nil", err)
	}

	found, _ := sm.Get(created.ID)
	if found != nil {
		t.Error("Get() after Delete() should return nil")
	}
}

func TestSessionManager_CleanExpired_RemovesOnlyExpired(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	_, err := db.Exec(`
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES ('expired-session', ?, ?, ?)
	`, userID, time.Now().Add(-time.Hour), time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("inserting expired session: %v", err)
	}
	valid, _ := sm.Create(userID)

	count, err := sm.CleanExpired()
	if err != nil {
		t.Fatalf("CleanExpired() error = %v, want nil", err)
	}
	if count != 1 {
		t.Errorf("CleanExpired() removed %d sessions, want 1", count)
	}

	if found, _ := sm.Get("expired-session"); found != nil {
		t.Error("expired session should be removed")
	}
	if found, _ := sm.Get(valid.ID); found == nil {
		t.Error("valid session should remain")
	}
}

func TestSessionManager_Validate_ValidSession_ReturnsUserID(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	session, _ := sm.Create(userID)

	got, err := sm.Validate(session.ID)
	if err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
	if got != userID {
		t.Errorf("Validate() userID = %d, want %d", got, userID)
	}
}

func TestSessionManager_Validate_ExpiredSession_DeletesAndFails(t *testing.T) {
	db := setupTestDB(t)
	userID := createTestUser(t, db)
	sm := NewSessionManager(db)

	_, err := db.Exec(`
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES ('expired-session', ?, ?, ?)
	`, userID, time.Now().Add(-time.Hour), time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("inserting expired session: %v", err)
	}

	if _, err := sm.Validate("expired-session"); !errors.IsUnauthorized(err) {
		t.Errorf("Validate() error = %v, want unauthorized", err)
	}

	if found, _ := sm.Get("expired-session"); found != nil {
		t.Error("expired session should be deleted after a failed Validate()")
	}
}

func TestSessionManager_Validate_NonExistent_ReturnsError(t *testing.T) {
	db := setupTestDB(t)
	sm := NewSessionManager(db)

	if _, err := sm.Validate("nonexistent"); !errors.IsUnauthorized(err) {
		t.Errorf("Validate() error = %v, want unauthorized", err)
	}
}

// Service tests

func TestService_Register_CreatesUserAndSession(t *testing.T) {
	_, svc := setupService(t)

	user, session, err := svc.Register("new@example.com", "longenough", "New User")
	if err != nil {
		t.Fatalf("Register() error = %v, want nil", err)
	}
	if user.Email != "new@example.com" {
		t.Errorf("user.Email = %q, want %q", user.Email, "new@example.com")
	}
	if user.PasswordHash == "longenough" {
		t.Error("password stored in plaintext")
	}
	if user.Currency != "USD" {
		t.Errorf("user.Currency = %q, want default USD", user.Currency)
	}
	if session == nil || session.UserID != user.ID {
		t.Error("Register() did not open a session for the new user")
	}
}

func TestService_Register_NormalizesEmail(t *testing.T) {
	_, svc := setupService(t)

	user, _, err := svc.Register("  MiXeD@Example.COM ", "longenough", "")
	if err != nil {
		t.Fatalf("Register() error = %v, want nil", err)
	}
	if user.Email != "mixed@example.com" {
		t.Errorf("user.Email = %q, want lowercased trimmed form", user.Email)
	}
}

func TestService_Register_DuplicateEmail_Conflict(t *testing.T) {
	_, svc := setupService(t)

	if _, _, err := svc.Register("dup@example.com", "longenough", ""); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if _, _, err := svc.Register("dup@example.com", "longenough", ""); !errors.IsConflict(err) {
		t.Errorf("second Register() error = %v, want conflict", err)
	}
}

func TestService_Register_ShortPassword_ValidationError(t *testing.T) {
	_, svc := setupService(t)

	if _, _, err := svc.Register("new@example.com", "short", ""); !errors.IsValidation(err) {
		t.Errorf("Register() error = %v, want validation error", err)
	}
}

func TestService_Login_CorrectCredentials_OpensSession(t *testing.T) {
	_, svc := setupService(t)
	svc.Register("login@example.com", "longenough", "")

	user, session, err := svc.Login("login@example.com", "longenough")
	if err != nil {
		t.Fatalf("Login() error = %v, want nil", err)
	}
	if session == nil || session.UserID != user.ID {
		t.Error("Login() did not open a session")
	}
}

func TestService_Login_WrongPassword_Unauthorized(t *testing.T) {
	_, svc := setupService(t)
	svc.Register("login@example.com", "longenough", "")

	if _, _, err := svc.Login("login@example.com", "wrongpassword"); !errors.IsUnauthorized(err) {
		t.Errorf("Login() error = %v, want unauthorized", err)
	}
}

func TestService_Login_UnknownEmail_SameErrorAsWrongPassword(t *testing.T) {
	_, svc := setupService(t)
	svc.Register("login@example.com", "longenough", "")

	_, _, errUnknown := svc.Login("nobody@example.com", "longenough")
	_, _, errWrong := svc.Login("login@example.com", "wrongpassword")
	if errUnknown == nil || errWrong == nil {
		t.Fatal("expected both logins to fail")
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Errorf("errors differ: %q vs %q (leaks which emails exist)", errUnknown, errWrong)
	}
}

func TestService_ChangePassword_RotatesSessions(t *testing.T) {
	_, svc := setupService(t)
	user, oldSession, err := svc.Register("change@example.com", "oldpassword", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	newSession, err := svc.ChangePassword(user.ID, "oldpassword", "newpassword")
	if err != nil {
		t.Fatalf("ChangePassword() error = %v, want nil", err)
	}

	// Old session is revoked, the returned one works
	if _, err := svc.Sessions().Validate(oldSession.ID); err == nil {
		t.Error("old session should be revoked after password change")
	}
	if got, err := svc.Sessions().Validate(newSession.ID); err != nil || got != user.ID {
		t.Errorf("new session Validate() = (%d, %v), want (%d, nil)", got, err, user.ID)
	}

	// Old password no longer logs in, new one does
	if _, _, err := svc.Login("change@example.com", "oldpassword"); err == nil {
		t.Error("old password should no longer work")
	}
	if _, _, err := svc.Login("change@example.com", "newpassword"); err != nil {
		t.Errorf("new password Login() error = %v, want nil", err)
	}
}

func TestService_ChangePassword_WrongCurrent_Unauthorized(t *testing.T) {
	_, svc := setupService(t)
	user, _, _ := svc.Register("change@example.com", "oldpassword", "")

	if _, err := svc.ChangePassword(user.ID, "notthepassword", "newpassword"); !errors.IsUnauthorized(err) {
		t.Errorf("ChangePassword() error = %v, want unauthorized", err)
	}
}
