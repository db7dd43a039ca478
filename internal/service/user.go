package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/qrlinkki/qrlinkki/internal/database"
	"github.com/qrlinkki/qrlinkki/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when authentication fails. It covers
// both an unknown email and a wrong password so that callers cannot tell
// registered emails apart from unregistered ones.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines the interface for working with users at the business logic layer.
type UserRepository interface {
	// Create inserts a new user with an already hashed password.
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)

	// GetByID retrieves a user by id.
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update replaces the email and password hash of the user with the
	// given id.
	Update(ctx context.Context, id int64, email, passwordHash string) (*models.User, error)

	// Delete removes a user by id and reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// UserService provides registration, authentication and account management.
// Passwords are hashed with bcrypt; the plaintext never reaches the
// repository layer.
type UserService struct {
	repo   UserRepository
	tokens TokenIssuer
}

func NewUserService(repo UserRepository, tokens TokenIssuer) *UserService {
	return &UserService{
		repo:   repo,
		tokens: tokens,
	}
}

// Register creates a new user with the given email and plaintext password.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	const op = "service.UserService.Register"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := s.repo.Create(ctx, email, string(hash))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to register user: %w", op, err)
	}

	return user, nil
}

// Authenticate verifies the email and password pair and returns a signed
// bearer token on success.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	const op = "service.UserService.Authenticate"

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return "", fmt.Errorf("%s: failed to authenticate user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.UserID)
	if err != nil {
		return "", fmt.Errorf("%s: failed to issue token: %w", op, err)
	}

	return token, nil
}

// Get retrieves a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	const op = "service.UserService.Get"

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	return user, nil
}

// Update replaces the email of the user with the given id. An empty
// password keeps the current hash; a non-empty one is hashed and stored.
func (s *UserService) Update(ctx context.Context, id int64, email, password string) (*models.User, error) {
	const op = "service.UserService.Update"

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	passwordHash := user.PasswordHash
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
		}

		passwordHash = string(hash)
	}

	user, err = s.repo.Update(ctx, id, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to update user: %w", op, err)
	}

	return user, nil
}

// Delete removes the user with the given id. Links owned by the user are
// removed by the database cascade.
func (s *UserService) Delete(ctx context.Context, id int64) (bool, error) {
	const op = "service.UserService.Delete"

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("%s: failed to delete user: %w", op, err)
	}

	return removed, nil
}
