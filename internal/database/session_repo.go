package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"netcode-backend/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// SessionRepo handles session database operations
type SessionRepo struct{}

// NewSessionRepo creates a new session repository
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{}
}

// IssueOrReuse returns a session token for the user, extending an existing
// unexpired session or inserting a fresh one. The lookup and the write run
// in a single write transaction so two concurrent logins cannot both insert
// a row for the same user.
func (r *SessionRepo) IssueOrReuse(userID int64, window time.Duration) (string, *models.Session, error) {
	now := time.Now().UTC()
	newExpiry := now.Add(window)

	tx, err := DB.Begin()
	if err != nil {
		return "", nil, err
	}
	defer tx.Rollback()

	session := &models.Session{}
	err = tx.QueryRow(`
		SELECT id, user_id, token, created_at, expires_at
		FROM sessions WHERE user_id = ? AND expires_at > ?
		ORDER BY expires_at DESC LIMIT 1
	`, userID, now).Scan(
		&session.ID, &session.UserID, &session.Token,
		&session.CreatedAt, &session.ExpiresAt,
	)

	switch {
	case err == nil:
		// Live session found: slide its deadline forward and hand back
		// the same token. The predicate keeps a row that expired between
		// read and write from coming back to life.
		result, err := tx.Exec(
			"UPDATE sessions SET expires_at = ? WHERE id = ? AND expires_at > ?",
			newExpiry, session.ID, now,
		)
		if err != nil {
			return "", nil, err
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return "", nil, err
		}
		if rows == 0 {
			return "", nil, ErrSessionExpired
		}
		session.ExpiresAt = newExpiry

	case err == sql.ErrNoRows:
		token, err := generateToken()
		if err != nil {
			return "", nil, err
		}

		session.UserID = userID
		session.Token = token
		session.CreatedAt = now
		session.ExpiresAt = newExpiry

		result, err := tx.Exec(`
			INSERT INTO sessions (user_id, token, created_at, expires_at)
			VALUES (?, ?, ?, ?)
		`, session.UserID, session.Token, session.CreatedAt, session.ExpiresAt)
		if err != nil {
			return "", nil, err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return "", nil, err
		}
		session.ID = id

	default:
		return "", nil, err
	}

	if err := tx.Commit(); err != nil {
		return "", nil, err
	}

	return session.Token, session, nil
}

// GetValidByToken retrieves an unexpired session and its user in one lookup
func (r *SessionRepo) GetValidByToken(token string) (*models.Session, *models.User, error) {
	session := &models.Session{}
	user := &models.User{}

	err := DB.QueryRow(`
		SELECT s.id, s.user_id, s.token, s.created_at, s.expires_at,
		       u.id, u.name, u.password_hash, u.is_banned, u.created_at
		FROM sessions s
		INNER JOIN users u ON u.id = s.user_id
		WHERE s.token = ?
	`, token).Scan(
		&session.ID, &session.UserID, &session.Token,
		&session.CreatedAt, &session.ExpiresAt,
		&user.ID, &user.Name, &user.PasswordHash, &user.IsBanned, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	if session.Expired(time.Now().UTC()) {
		return nil, nil, ErrSessionExpired
	}

	return session, user, nil
}

// ExtendIfUnexpired pushes a session's deadline to now+window, but only if
// the row is still unexpired at the time of the write. Renewal is therefore
// monotonic and a dead session can never be resurrected by a racing request.
func (r *SessionRepo) ExtendIfUnexpired(id int64, window time.Duration) (time.Time, error) {
	now := time.Now().UTC()
	newExpiry := now.Add(window)

	result, err := DB.Exec(
		"UPDATE sessions SET expires_at = ? WHERE id = ? AND expires_at > ?",
		newExpiry, id, now,
	)
	if err != nil {
		return time.Time{}, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return time.Time{}, err
	}
	if rows == 0 {
		return time.Time{}, ErrSessionExpired
	}

	return newExpiry, nil
}

// RevokeAllForUser expires every live session for the user. Idempotent:
// revoking a user with no live sessions is not an error.
func (r *SessionRepo) RevokeAllForUser(userID int64) error {
	past := time.Now().UTC().Add(-time.Hour)
	_, err := DB.Exec(
		"UPDATE sessions SET expires_at = ? WHERE user_id = ? AND expires_at > ?",
		past, userID, time.Now().UTC(),
	)
	return err
}

// DeleteExpired removes rows whose deadline has passed. They are already
// logically dead; this just keeps the table from growing without bound.
func (r *SessionRepo) DeleteExpired() (int64, error) {
	result, err := DB.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountActiveByUserID returns the number of unexpired sessions for a user
func (r *SessionRepo) CountActiveByUserID(userID int64) (int, error) {
	var count int
	err := DB.QueryRow(
		"SELECT COUNT(*) FROM sessions WHERE user_id = ? AND expires_at > ?",
		userID, time.Now().UTC(),
	).Scan(&count)
	return count, err
}

// generateToken produces 256 bits of CSPRNG randomness, hex encoded
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
