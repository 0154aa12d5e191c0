package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/api/shared"
	"github.com/phrazzld/dmo-api/internal/mocks"
	"github.com/phrazzld/dmo-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name           string
		authHeader     string
		query          string
		validateErr    error
		claims         *auth.Claims
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer valid-token",
			claims:         &auth.Claims{UserID: userID},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "token in query string",
			query:          "?access_token=valid-token",
			claims:         &auth.Claims{UserID: userID},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing auth header",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Authorization header required",
		},
		{
			name:           "invalid auth format",
			authHeader:     "InvalidFormat",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid authorization format",
		},
		{
			name:           "expired token",
			authHeader:     "Bearer expired-token",
			validateErr:    auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Token expired",
		},
		{
			name:           "refresh token used as access token",
			authHeader:     "Bearer refresh-token",
			validateErr:    auth.ErrWrongTokenType,
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid token",
		},
		{
			name:           "unexpected validation failure",
			authHeader:     "Bearer token",
			validateErr:    errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Authentication error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwtService := &mocks.MockJWTService{
				ValidateErr: tt.validateErr,
				Claims:      tt.claims,
			}
			mw := NewAuthMiddleware(jwtService)

			var captured uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured, _ = GetUserID(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected"+tt.query, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			mw.Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, userID, captured)
			} else {
				assert.Contains(t, rec.Body.String(), tt.expectedError)
			}
		})
	}
}

func TestGetUserID(t *testing.T) {
	t.Parallel()

	testUserID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserID(req)
	assert.False(t, ok)

	req = req.WithContext(shared.WithUserID(req.Context(), testUserID))
	userID, ok := GetUserID(req)
	require.True(t, ok)
	assert.Equal(t, testUserID, userID)
}
