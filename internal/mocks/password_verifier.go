package mocks

import (
	"errors"

	"github.com/phrazzld/dmo-api/internal/service/auth"
)

// ErrPasswordMismatch is returned by MockPasswordVerifier when ShouldSucceed is false.
var ErrPasswordMismatch = errors.New("password mismatch")

// MockPasswordVerifier records the last comparison and answers with ShouldSucceed.
type MockPasswordVerifier struct {
	ShouldSucceed bool

	CompareCalledWith struct {
		HashedPassword string
		Password       string
	}
	Calls int
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.Calls++
	m.CompareCalledWith.HashedPassword = hashedPassword
	m.CompareCalledWith.Password = password
	if !m.ShouldSucceed {
		return ErrPasswordMismatch
	}
	return nil
}
