package auth

import (
	"errors"
	"regexp"
	"time"

	"netcode-backend/internal/database"
	"netcode-backend/internal/models"
)

// SessionWindow is the sliding renewal window: every successful validation
// pushes the session deadline this far past "now".
const SessionWindow = 14 * 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = database.ErrUsernameTaken
)

// ValidationError carries a user-facing message for malformed input.
// It never implies a side effect took place.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

var (
	usernameStartsWithLetter = regexp.MustCompile(`^[a-zA-Z]`)
	usernamePattern          = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)
	passwordPattern          = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// Service owns the session lifecycle and credential verification
type Service struct {
	userRepo    *database.UserRepo
	sessionRepo *database.SessionRepo
	window      time.Duration
}

// NewService creates a new auth service
func NewService(userRepo *database.UserRepo, sessionRepo *database.SessionRepo) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		window:      SessionWindow,
	}
}

// WithWindow overrides the renewal window (used by tests)
func (s *Service) WithWindow(window time.Duration) *Service {
	s.window = window
	return s
}

// Window returns the current renewal window
func (s *Service) Window() time.Duration {
	return s.window
}

// Register validates the registration request and creates the user.
// All checks run before the single mutating insert; the first failing one
// wins and nothing is written. Username uniqueness is left to the store's
// constraint, which surfaces as ErrUsernameTaken.
func (s *Service) Register(req models.RegisterRequest) (*models.User, error) {
	if req.Username == "" {
		return nil, invalid("Username was not specified")
	}
	if req.Password == "" {
		return nil, invalid("Password was not specified")
	}
	if req.PasswordAgain == "" {
		return nil, invalid("Password was not specified")
	}
	if len(req.Username) < 3 || len(req.Username) > 16 {
		return nil, invalid("Username must be between 3-16 characters long")
	}
	if len(req.Password) < 6 {
		return nil, invalid("I mean, I know, just please do at least 6 characters :D")
	}
	if len(req.Password) > 16 {
		return nil, invalid("Ha! Testing me, I knew it. Do less than 16 characters :P")
	}
	if req.Password != req.PasswordAgain {
		return nil, invalid("Passwords does not match")
	}
	if !usernameStartsWithLetter.MatchString(req.Username) {
		return nil, invalid("YoUr NaMe ShOuLd StArT WiTh A ChArAcTeR, NoT wItH a NuMbEr")
	}
	if !usernamePattern.MatchString(req.Username) {
		return nil, invalid("Do not try to SQL inject me please, just go with a regular name with only english alphabet and numbers")
	}
	if !passwordPattern.MatchString(req.Password) {
		return nil, invalid("Passwords should contain only characters from the english alphabet or numbers")
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Username,
		PasswordHash: passwordHash,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// LoginResult is what a successful login hands back to the response layer
type LoginResult struct {
	Identity  *models.Identity
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials and issues or reuses a session token.
// Unknown username and wrong password are deliberately indistinguishable,
// and a failed verification never touches any session row.
func (s *Service) Login(username, password string) (*LoginResult, error) {
	if username == "" {
		return nil, invalid("Username was not specified")
	}
	if password == "" {
		return nil, invalid("Password was not specified")
	}

	user, err := s.userRepo.GetByName(username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, session, err := s.sessionRepo.IssueOrReuse(user.ID, s.window)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Identity:  user.Identity(),
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Validate turns an opaque token into a resolved identity, sliding the
// session deadline forward on success. A token whose session has expired
// resolves to nothing; the conditional extension in the store keeps a
// racing request from reviving it.
func (s *Service) Validate(token string) (*models.Identity, error) {
	session, user, err := s.sessionRepo.GetValidByToken(token)
	if err != nil {
		return nil, err
	}

	if _, err := s.sessionRepo.ExtendIfUnexpired(session.ID, s.window); err != nil {
		// Expired between read and write: treat as never matched.
		return nil, err
	}

	return user.Identity(), nil
}

// Revoke expires all live sessions for the user. Idempotent.
func (s *Service) Revoke(userID int64) error {
	return s.sessionRepo.RevokeAllForUser(userID)
}
