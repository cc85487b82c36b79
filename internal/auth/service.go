package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhnguyen-io/lenscraft-backend/internal/users"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/auth"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/config"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/db"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/enums"
	pkgerrors "github.com/minhnguyen-io/lenscraft-backend/pkg/errors"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/logger"
	"github.com/minhnguyen-io/lenscraft-backend/pkg/security"
)

// sessionStore tracks live token ids so tokens can be checked and revoked.
type sessionStore interface {
	SetSession(ctx context.Context, jti string, ttl time.Duration) error
}

// Service issues credentials. The lifecycle engine never calls in here; it
// only consumes the identity and role the middleware extracts from a token.
type Service struct {
	users    users.Repository
	sessions sessionStore
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	log      *logger.Logger
	now      func() time.Time
}

func NewService(userRepo users.Repository, sessions sessionStore, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig, log *logger.Logger) (*Service, error) {
	if userRepo == nil || sessions == nil || log == nil {
		return nil, fmt.Errorf("auth service missing dependencies")
	}
	return &Service{
		users:    userRepo,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
		log:      log,
		now:      time.Now,
	}, nil
}

// Register creates a customer account. Staff and above are provisioned out of
// band, never through the public endpoint.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         enums.UserRoleCustomer,
	}
	created, err := s.users.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	s.log.Info(s.log.WithUserID(ctx, created.ID.String()), "user registered")
	return created, nil
}

// Login verifies credentials and mints an access token.
func (s *Service) Login(ctx context.Context, input LoginInput) (*TokenResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now()
	ttl := time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute
	jti := uuid.NewString()

	token, err := auth.MintAccessToken(s.jwtCfg, now, auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	if err := s.sessions.SetSession(ctx, jti, ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record session")
	}

	s.log.Info(s.log.WithUserID(ctx, user.ID.String()), "user logged in")
	return &TokenResult{
		AccessToken: token,
		ExpiresAt:   now.Add(ttl),
		User:        user,
	}, nil
}
