package services

import (
	"context"
	"errors"
	"testing"

	"github.com/nvraman/suraksha/core"
)

func registerInput() core.RegisterInput {
	return core.RegisterInput{
		Email:       "asha@example.com",
		Password:    "correct horse battery",
		DisplayName: "Asha Devi",
		Role:        core.RoleUser,
	}
}

func TestRegister_CreatesAccountAndIssuesPrincipal(t *testing.T) {
	accounts := NewFakeAccountStore()
	auth := NewAuthService(accounts, nil, nil)

	principal, err := auth.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if principal.ID == "" {
		t.Error("principal id not assigned")
	}
	if principal.Email != "asha@example.com" {
		t.Errorf("principal.Email = %q", principal.Email)
	}
	if principal.DisplayName != "Asha Devi" {
		t.Errorf("principal.DisplayName = %q", principal.DisplayName)
	}

	// Password must be stored hashed
	account, err := accounts.GetAccountByEmail(context.Background(), "asha@example.com")
	if err != nil {
		t.Fatalf("GetAccountByEmail() error = %v", err)
	}
	if account.PasswordHash == "" || account.PasswordHash == "correct horse battery" {
		t.Error("password not hashed in storage")
	}
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	accounts := NewFakeAccountStore()
	auth := NewAuthService(accounts, nil, nil)

	if _, err := auth.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if _, err := auth.Register(context.Background(), registerInput()); !errors.Is(err, core.ErrAccountExists) {
		t.Errorf("second Register() error = %v, want ErrAccountExists", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*core.RegisterInput)
		wantErr error
	}{
		{name: "missing email", mutate: func(in *core.RegisterInput) { in.Email = "" }, wantErr: core.ErrEmailRequired},
		{name: "malformed email", mutate: func(in *core.RegisterInput) { in.Email = "not-an-email" }, wantErr: core.ErrInvalidEmail},
		{name: "missing password", mutate: func(in *core.RegisterInput) { in.Password = "" }, wantErr: core.ErrPasswordRequired},
		{name: "short password", mutate: func(in *core.RegisterInput) { in.Password = "short" }, wantErr: core.ErrPasswordTooShort},
		{name: "missing display name", mutate: func(in *core.RegisterInput) { in.DisplayName = "" }, wantErr: core.ErrDisplayNameRequired},
		{name: "unknown role", mutate: func(in *core.RegisterInput) { in.Role = "superuser" }, wantErr: core.ErrInvalidRole},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			input := registerInput()
			test.mutate(&input)

			auth := NewAuthService(NewFakeAccountStore(), nil, nil)
			if _, err := auth.Register(context.Background(), input); !errors.Is(err, test.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestLogin_ConfirmsPrincipal(t *testing.T) {
	accounts := NewFakeAccountStore()
	auth := NewAuthService(accounts, nil, nil)

	registered, err := auth.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	principal, err := auth.Login(context.Background(), "asha@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if principal.ID != registered.ID {
		t.Errorf("Login() principal id = %q, want %q", principal.ID, registered.ID)
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	accounts := NewFakeAccountStore()
	auth := NewAuthService(accounts, nil, nil)
	if _, err := auth.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "wrong password", email: "asha@example.com", password: "wrong", wantErr: core.ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@example.com", password: "whatever", wantErr: core.ErrInvalidCredentials},
		{name: "empty email", email: "", password: "whatever", wantErr: core.ErrEmailRequired},
		{name: "empty password", email: "asha@example.com", password: "", wantErr: core.ErrPasswordRequired},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := auth.Login(context.Background(), test.email, test.password); !errors.Is(err, test.wantErr) {
				t.Errorf("Login() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}
