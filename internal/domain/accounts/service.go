package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/clinrec/clinrec/internal/platform/auth"
)

var (
	// ErrDuplicate indicates the username or email is already taken.
	ErrDuplicate = errors.New("username or email already exists")
	// ErrNotFound indicates no account matches the lookup.
	ErrNotFound = errors.New("account not found")
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords; callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingFields indicates an incomplete registration request.
	ErrMissingFields = errors.New("username, email and password are required")
)

type Service struct {
	repo   Repository
	hasher *auth.Hasher
	tokens *auth.TokenService
}

func NewService(repo Repository, hasher *auth.Hasher, tokens *auth.TokenService) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

// Register creates a new admin account. The password is hashed before
// storage; the plaintext is never persisted.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	taken, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicate
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	a := &Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Login verifies the credentials and returns a signed bearer token.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	ok, err := s.hasher.VerifyPassword(a.PasswordHash, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(a.ID)
}
