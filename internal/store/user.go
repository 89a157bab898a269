// Package store provides database access methods for all Inkwell
// entities. Each store struct wraps a *sql.DB and exposes typed query methods.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/models"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, name, username, email, password_hash, image, bio, role, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	err := scanner.Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.PasswordHash,
		&u.Image, &u.Bio, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// findUser runs a single-row user query. Returns nil if not found.
func (s *UserStore) findUser(ctx context.Context, op, where string, arg any) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "find user by email", "email = $1", strings.ToLower(strings.TrimSpace(email)))
}

// FindByUsername retrieves a user by username. Returns nil if not found.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, "find user by username", "username = $1", username)
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findUser(ctx, "find user by id", "id = $1", id)
}

// Create inserts a new user with a bcrypt-hashed password. It returns
// ErrUserExists when the email or the username is already registered.
func (s *UserStore) Create(ctx context.Context, nu models.NewUser) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(nu.Email))

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR username = $2)
	`, email, nu.Username).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	image := nu.Image
	if image == "" {
		image = models.DefaultUserImage
	}
	role := nu.Role
	if role == "" {
		role = models.RoleUser
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, username, email, password_hash, image, bio, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+userColumns,
		nu.Name, nu.Username, email, string(hash), image, nu.Bio, role,
	)
	u, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// VerifyPassword reports whether password matches the bcrypt hash.
func (s *UserStore) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateCredentials returns the user for a matching email and password,
// or nil if the email is unknown or the password is wrong.
func (s *UserStore) ValidateCredentials(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.FindByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, err
	}
	if !s.VerifyPassword(u.PasswordHash, password) {
		return nil, nil
	}
	return u, nil
}

// UpdateProfile saves the self-editable profile fields and returns the
// updated user, or nil if no user has that id. ErrUsernameTaken is returned
// when another user already owns the username.
func (s *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, p models.ProfileUpdate) (*models.User, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id <> $2)
	`, p.Username, id).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET
			name = $1, username = $2, bio = $3,
			image = COALESCE(NULLIF($4, ''), image),
			updated_at = NOW()
		WHERE id = $5
		RETURNING `+userColumns,
		p.Name, p.Username, p.Bio, p.Image, id,
	)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if isUniqueViolation(err) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

// SetPassword replaces a user's password hash.
func (s *UserStore) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, string(hash), id)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}
