package database

import (
	"database/sql"
	"errors"

	"netcode-backend/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// UserRepo handles user database operations
type UserRepo struct{}

// NewUserRepo creates a new user repository
func NewUserRepo() *UserRepo {
	return &UserRepo{}
}

// Create inserts a new user. Uniqueness of the name is enforced by the
// database constraint; a conflicting insert returns ErrUsernameTaken so
// there is no check-then-act window between two concurrent registrations.
func (r *UserRepo) Create(user *models.User) error {
	result, err := DB.Exec(`
		INSERT INTO users (name, password_hash, is_banned)
		VALUES (?, ?, ?)
	`, user.Name, user.PasswordHash, user.IsBanned)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepo) GetByID(id int64) (*models.User, error) {
	user := &models.User{}

	err := DB.QueryRow(`
		SELECT id, name, password_hash, is_banned, created_at
		FROM users WHERE id = ?
	`, id).Scan(
		&user.ID, &user.Name, &user.PasswordHash, &user.IsBanned, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetByName retrieves a user by account name
func (r *UserRepo) GetByName(name string) (*models.User, error) {
	user := &models.User{}

	err := DB.QueryRow(`
		SELECT id, name, password_hash, is_banned, created_at
		FROM users WHERE name = ?
	`, name).Scan(
		&user.ID, &user.Name, &user.PasswordHash, &user.IsBanned, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// SetBanned updates the ban flag for a user
func (r *UserRepo) SetBanned(id int64, banned bool) error {
	result, err := DB.Exec("UPDATE users SET is_banned = ? WHERE id = ?", banned, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Count returns the total number of users
func (r *UserRepo) Count() (int, error) {
	var count int
	err := DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}
