package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser(" Lan@Example.com ", "correct-horse-battery", "Lan Trần")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.Email != "lan@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}
	if user.DisplayName() != "Lan Trần" {
		t.Errorf("Unexpected display name %s", user.DisplayName())
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"empty email", "", "correct-horse-battery", ErrEmptyEmail},
		{"no at", "lan.example.com", "correct-horse-battery", ErrInvalidEmail},
		{"no dot in domain", "lan@example", "correct-horse-battery", ErrInvalidEmail},
		{"short password", "lan@example.com", "short", ErrPasswordTooShort},
		{"long password", "lan@example.com", strings.Repeat("a", 73), ErrPasswordTooLong},
		{"missing password", "lan@example.com", "", ErrEmptyPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewUser(tt.email, tt.password, ""); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUserDisplayNameFallsBackToEmail(t *testing.T) {
	t.Parallel()

	u := &User{Email: "minh@example.com"}
	if u.DisplayName() != "minh" {
		t.Errorf("Expected email local part, got %s", u.DisplayName())
	}
}
