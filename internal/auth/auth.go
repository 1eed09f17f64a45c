// Package auth provides password hashing, session management, and the
// register/login/change-password flows built on top of them.
package auth

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/database"
	"fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/repository"
)

const (
	// DefaultSessionDuration is the default session lifetime.
	DefaultSessionDuration = 7 * 24 * time.Hour // 7 days

	// BcryptCost is the bcrypt hashing cost.
	BcryptCost = 12

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8
)

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword compares a password with a hash.
func CheckPassword(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SessionManager handles session storage and expiry.
type SessionManager struct {
	db       *database.DB
	duration time.Duration
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(db *database.DB) *SessionManager {
	return &SessionManager{
		db:       db,
		duration: DefaultSessionDuration,
	}
}

// WithDuration sets a custom session duration.
func (sm *SessionManager) WithDuration(d time.Duration) *SessionManager {
	sm.duration = d
	return sm
}

// Create creates a new session for a user.
func (sm *SessionManager) Create(userID int64) (*models.Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Now().Add(sm.duration),
		CreatedAt: time.Now(),
	}

	_, err = sm.db.Exec(`
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return session, nil
}

// Get retrieves a session by ID. Returns nil if not found.
func (sm *SessionManager) Get(id string) (*models.Session, error) {
	session := &models.Session{}
	err := sm.db.QueryRow(`
		SELECT id, user_id, expires_at, created_at
		FROM sessions
		WHERE id = ?
	`, id).Scan(
		&session.ID,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}

	return session, nil
}

// Validate checks if a session is valid and returns the user ID. Expired
// sessions are deleted on sight.
func (sm *SessionManager) Validate(id string) (int64, error) {
	session, err := sm.Get(id)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, errors.Unauthorized("")
	}
	if session.IsExpired() {
		sm.Delete(id)
		return 0, errors.Unauthorized("Session expired")
	}
	return session.UserID, nil
}

// Delete removes a session by ID.
func (sm *SessionManager) Delete(id string) error {
	_, err := sm.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteByUserID removes all sessions for a user.
func (sm *SessionManager) DeleteByUserID(userID int64) error {
	_, err := sm.db.Exec(`DELETE FROM sessions WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("deleting user sessions: %w", err)
	}
	return nil
}

// CleanExpired removes all expired sessions and returns the count.
func (sm *SessionManager) CleanExpired() (int64, error) {
	result, err := sm.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("cleaning expired sessions: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting affected rows: %w", err)
	}

	return count, nil
}

// Service combines the user store and session manager into the account
// lifecycle flows.
type Service struct {
	users    *repository.UserRepository
	sessions *SessionManager
}

// NewService creates a new auth Service.
func NewService(users *repository.UserRepository, sessions *SessionManager) *Service {
	return &Service{users: users, sessions: sessions}
}

// Sessions exposes the underlying session manager.
func (s *Service) Sessions() *SessionManager {
	return s.sessions
}

// Register creates a user account and an initial session.
func (s *Service) Register(email, password, name string) (*models.User, *models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, nil, errors.Validation("A valid email is required")
	}
	if len(password) < MinPasswordLength {
		return nil, nil, errors.Validationf("Password must be at least %d characters", MinPasswordLength)
	}

	exists, err := s.users.EmailExists(email)
	if err != nil {
		return nil, nil, errors.Internal(err)
	}
	if exists {
		return nil, nil, errors.Conflict("An account with this email already exists")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, errors.Internal(err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
	}
	id, err := s.users.Create(user)
	if err != nil {
		return nil, nil, errors.Internal(err)
	}

	created, err := s.users.GetByID(id)
	if err != nil || created == nil {
		return nil, nil, errors.Internal(err)
	}

	session, err := s.sessions.Create(created.ID)
	if err != nil {
		return nil, nil, errors.Internal(err)
	}
	return created, session, nil
}

// Login verifies credentials and opens a session. The same error is
// returned for an unknown email and a wrong password.
func (s *Service) Login(email, password string) (*models.User, *models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, nil, errors.Internal(err)
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return nil, nil, errors.Unauthorized("Invalid email or password")
	}

	session, err := s.sessions.Create(user.ID)
	if err != nil {
		return nil, nil, errors.Internal(err)
	}
	return user, session, nil
}

// ChangePassword replaces the user's password after verifying the current
// one. Every existing session is revoked so stolen cookies stop working;
// a fresh session is returned for the caller to continue with.
func (s *Service) ChangePassword(userID int64, current, next string) (*models.Session, error) {
	if len(next) < MinPasswordLength {
		return nil, errors.Validationf("Password must be at least %d characters", MinPasswordLength)
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if user == nil {
		return nil, errors.NotFound("User")
	}
	if !CheckPassword(current, user.PasswordHash) {
		return nil, errors.Unauthorized("Current password is incorrect")
	}

	hash, err := HashPassword(next)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if err := s.users.UpdatePassword(userID, hash); err != nil {
		return nil, errors.Internal(err)
	}

	if err := s.sessions.DeleteByUserID(userID); err != nil {
		return nil, errors.Internal(err)
	}
	session, err := s.sessions.Create(userID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return session, nil
}

// generateSessionID creates a cryptographically secure session ID.
func generateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
