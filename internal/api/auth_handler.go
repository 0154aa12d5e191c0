package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/api/shared"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/service"
)

// AccountService is the account surface used by AuthHandler.
// *service.UserService implements it.
type AccountService interface {
	Register(ctx context.Context, email, password, fullName string) (*domain.User, *service.TokenPair, error)
	Login(ctx context.Context, email, password string) (*service.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	accounts AccountService
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(accounts AccountService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		accounts: accounts,
		logger:   logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, tokens, err := h.accounts.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user registered",
		slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, authResponse(tokens))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tokens, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status := MapErrorToStatusCode(err)
		if status == http.StatusUnauthorized {
			shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, authResponse(tokens))
}

// RefreshToken handles POST /api/auth/refresh.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tokens, err := h.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, authResponse(tokens))
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := requireUser(w, r, log)
	if !ok {
		return
	}

	user, err := h.accounts.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}
