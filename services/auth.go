package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nvraman/suraksha/core"
	"github.com/nvraman/suraksha/pkg/crypto"
)

const minPasswordLength = 8

// AuthService is the credential-backed auth backend: it confirms
// principals from email and password. It knows nothing about profiles or
// roles - those belong to resolution.
type AuthService struct {
	accounts  core.AccountStore
	passwords crypto.PasswordHandler
	logger    *zap.Logger
}

// Ensure AuthService implements AuthBackend
var _ core.AuthBackend = (*AuthService)(nil)

func NewAuthService(accounts core.AccountStore, passwords crypto.PasswordHandler, logger *zap.Logger) *AuthService {
	if passwords == nil {
		passwords = crypto.NewArgon2()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:  accounts,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a credential account and issues its principal.
func (s *AuthService) Register(ctx context.Context, input core.RegisterInput) (*core.Principal, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	// Step 1: Check if the account already exists
	existing, err := s.accounts.GetAccountByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, core.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, core.ErrAccountExists
	}

	// Step 2: Hash the password
	hashed, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 3: Create the account
	account := &core.Account{
		ID:           uuid.NewString(),
		Email:        input.Email,
		DisplayName:  input.DisplayName,
		PhoneNumber:  input.PhoneNumber,
		PasswordHash: hashed,
		CreatedAt:    time.Now(),
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account registered", zap.String("principal_id", account.ID))
	return principalFor(account), nil
}

// Login confirms a principal from credentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*core.Principal, error) {
	if email == "" {
		return nil, core.ErrEmailRequired
	}
	if password == "" {
		return nil, core.ErrPasswordRequired
	}

	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	valid, err := s.passwords.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	return principalFor(account), nil
}

func principalFor(account *core.Account) *core.Principal {
	return &core.Principal{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		PhoneNumber: account.PhoneNumber,
	}
}

func validateRegisterInput(input core.RegisterInput) error {
	if input.Email == "" {
		return core.ErrEmailRequired
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return core.ErrInvalidEmail
	}
	if input.Password == "" {
		return core.ErrPasswordRequired
	}
	if len(input.Password) < minPasswordLength {
		return core.ErrPasswordTooShort
	}
	if input.DisplayName == "" {
		return core.ErrDisplayNameRequired
	}
	if input.Role != "" && input.Role != core.RoleAdmin && input.Role != core.RoleUser {
		return core.ErrInvalidRole
	}
	return nil
}
