package service

import (
	"context"
	stderrors "errors"
	"time"

	"clientapi/internal/auth"
	"clientapi/internal/cache"
	"clientapi/internal/errors"
	"clientapi/internal/metrics"
	"clientapi/internal/model"
	"clientapi/internal/repository"
	"clientapi/pkg/logger"
)

const emailExistsCacheTTL = 30 * time.Second

// RegisterInput carries everything needed to create an identity.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Phone       string
	CompanyName string
	Role        string
}

// AuthService handles credential verification, token issuance and
// registration.
type AuthService interface {
	// Login verifies credentials and issues a token. Unknown email, wrong
	// password and non-active accounts all fail with the same
	// ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	// Register creates an identity with status ACTIVE and issues a token.
	// The store's unique constraint is the authoritative conflict signal;
	// the existence pre-check only buys a faster error message.
	Register(ctx context.Context, input RegisterInput) (token string, user *model.User, err error)
	// EmailExists reports whether an identity with this email exists, using
	// the same case folding as registration.
	EmailExists(ctx context.Context, email string) (bool, error)
}

type authService struct {
	users  repository.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.JWTService
	cache  *cache.Client
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, hasher *auth.PasswordHasher, tokens *auth.JWTService, cache *cache.Client) AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		cache:  cache,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	log := logger.Get()

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, errors.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return "", nil, errors.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if user.Status != model.StatusActive {
		log.Warn().Str("user_id", user.ID.String()).Str("status", user.Status).
			Msg("login rejected for non-active account")
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", nil, errors.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", nil, errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Str("role", user.Role).Msg("login succeeded")
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return token, user, nil
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (string, *model.User, error) {
	log := logger.Get()

	if !model.ValidRole(input.Role) {
		return "", nil, errors.ErrInvalidRole
	}

	// Fast-path existence check for a friendlier error. A concurrent
	// registration can still slip past it; Create catches that below.
	exists, err := s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return "", nil, err
	}
	if exists {
		metrics.RegistrationsTotal.WithLabelValues(input.Role, "conflict").Inc()
		return "", nil, errors.ErrEmailAlreadyExists
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return "", nil, err
	}

	user := &model.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        model.NormalizeEmail(input.Email),
		PasswordHash: hash,
		Phone:        input.Phone,
		CompanyName:  input.CompanyName,
		Role:         input.Role,
		Status:       model.StatusActive,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if stderrors.Is(err, errors.ErrEmailAlreadyExists) {
			// Lost the race; the unique constraint is authoritative.
			metrics.RegistrationsTotal.WithLabelValues(input.Role, "conflict").Inc()
			return "", nil, errors.ErrEmailAlreadyExists
		}
		metrics.RegistrationsTotal.WithLabelValues(input.Role, "failure").Inc()
		return "", nil, err
	}

	_ = s.cache.Delete(ctx, emailExistsCacheKey(user.Email))

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Str("role", user.Role).Msg("user registered")
	metrics.RegistrationsTotal.WithLabelValues(input.Role, "success").Inc()
	return token, user, nil
}

func (s *authService) EmailExists(ctx context.Context, email string) (bool, error) {
	key := emailExistsCacheKey(model.NormalizeEmail(email))

	var cached bool
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	s.cache.SetJSON(ctx, key, exists, emailExistsCacheTTL)
	return exists, nil
}

func emailExistsCacheKey(normalizedEmail string) string {
	return "email_exists:" + normalizedEmail
}
