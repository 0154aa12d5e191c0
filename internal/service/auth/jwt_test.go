package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testAuthConfig = config.AuthConfig{
	JWTSecret:                   "test-jwt-secret-that-is-32-chars-long",
	TokenLifetimeMinutes:        60,
	RefreshTokenLifetimeMinutes: 1440,
}

func newTestService(t *testing.T, now time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(testAuthConfig, func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()
	cfg := testAuthConfig
	cfg.JWTSecret = "short"
	_, err := NewJWTService(cfg)
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	svc := newTestService(t, issued)
	userID := uuid.New()
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, issued.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	userID := uuid.New()
	ctx := context.Background()
	issuer := newTestService(t, issued)

	access, err := issuer.GenerateToken(ctx, userID)
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)

	otherCfg := testAuthConfig
	otherCfg.JWTSecret = "another-secret-that-is-32-chars-long!"
	other, err := newHMACJWTService(otherCfg, func() time.Time { return issued })
	require.NoError(t, err)
	forged, err := other.GenerateToken(ctx, userID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		token   string
		wantErr error
	}{
		{"valid", issued.Add(30 * time.Minute), access, nil},
		{"inside clock skew", issued.Add(61 * time.Minute), access, nil},
		{"expired", issued.Add(2 * time.Hour), access, ErrExpiredToken},
		{"issued in the future", issued.Add(-10 * time.Minute), access, ErrTokenNotYetValid},
		{"wrong signature", issued, forged, ErrInvalidToken},
		{"malformed", issued, "not.a.token", ErrInvalidToken},
		{"refresh token used as access", issued, refresh, ErrWrongTokenType},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t, tt.at)
			_, err := svc.ValidateToken(ctx, tt.token)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	userID := uuid.New()
	ctx := context.Background()
	issuer := newTestService(t, issued)

	refresh, err := issuer.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)
	access, err := issuer.GenerateToken(ctx, userID)
	require.NoError(t, err)

	claims, err := newTestService(t, issued.Add(23*time.Hour)).ValidateRefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, err = newTestService(t, issued.Add(25*time.Hour)).ValidateRefreshToken(ctx, refresh)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)

	_, err = issuer.ValidateRefreshToken(ctx, access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = issuer.ValidateRefreshToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestValidateTokenRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, time.Now())
	claims := jwtCustomClaims{
		UserID:    uuid.New(),
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBcryptVerifier(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery"), bcrypt.MinCost)
	require.NoError(t, err)

	v := NewBcryptVerifier()
	assert.NoError(t, v.Compare(string(hash), "correct horse battery"))
	assert.Error(t, v.Compare(string(hash), "wrong horse battery"))
}
