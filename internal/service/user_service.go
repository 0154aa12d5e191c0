package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/platform/logger"
	"github.com/phrazzld/dmo-api/internal/seed"
	"github.com/phrazzld/dmo-api/internal/service/auth"
	"github.com/phrazzld/dmo-api/internal/store"
)

// TokenPair is an access token with the refresh token that renews it.
type TokenPair struct {
	UserID       uuid.UUID `json:"user_id"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
}

// UserService registers and authenticates users.
type UserService struct {
	db        *sql.DB
	users     store.UserStore
	templates store.TemplateStore
	jwt       auth.JWTService
	passwords auth.PasswordVerifier
	starter   []seed.TemplateSpec
	logger    *slog.Logger
}

// NewUserService creates a UserService. starter is the template set every
// new account receives.
func NewUserService(
	db *sql.DB,
	users store.UserStore,
	templates store.TemplateStore,
	jwt auth.JWTService,
	passwords auth.PasswordVerifier,
	starter []seed.TemplateSpec,
	logger *slog.Logger,
) *UserService {
	if db == nil {
		panic("db cannot be nil")
	}
	if jwt == nil || passwords == nil {
		panic("auth dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		db:        db,
		users:     users,
		templates: templates,
		jwt:       jwt,
		passwords: passwords,
		starter:   starter,
		logger:    logger.With("component", "user_service"),
	}
}

// Register creates the account together with its starter templates in one
// transaction, then issues tokens.
func (s *UserService) Register(ctx context.Context, email, password, fullName string) (*domain.User, *TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password, fullName)
	if err != nil {
		return nil, nil, err
	}
	templates, err := seed.BuildTemplates(user.ID, s.starter)
	if err != nil {
		return nil, nil, NewServiceError("user", "register", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		if len(templates) == 0 {
			return nil
		}
		return s.templates.WithTx(tx).CreateMany(ctx, templates)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register existing email", "email", user.Email)
			return nil, nil, err
		}
		log.Error("failed to register user",
			"error", err,
			"email", user.Email)
		return nil, nil, NewServiceError("user", "register", err)
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	log.Info("user registered",
		"user_id", user.ID,
		"templates", len(templates))
	return user, pair, nil
}

// Login checks the credentials and issues tokens. Unknown emails and wrong
// passwords both return auth.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user by email", "error", err)
		return nil, NewServiceError("user", "login", err)
	}
	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	return s.issue(ctx, user.ID)
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, NewServiceError("user", "refresh", err)
	}
	return s.issue(ctx, claims.UserID)
}

// GetUser returns a user's profile.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("user", "get", err)
	}
	return user, nil
}

func (s *UserService) issue(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	token, err := s.jwt.GenerateToken(ctx, userID)
	if err != nil {
		return nil, NewServiceError("user", "generate token", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, NewServiceError("user", "generate refresh token", err)
	}
	return &TokenPair{UserID: userID, Token: token, RefreshToken: refresh}, nil
}
