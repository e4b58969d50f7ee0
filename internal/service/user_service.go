package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"clientapi/internal/auth"
	"clientapi/internal/cache"
	"clientapi/internal/errors"
	"clientapi/internal/model"
	"clientapi/internal/repository"
	"clientapi/pkg/logger"
)

const statsCacheTTL = 30 * time.Second

// CreateUserInput carries the fields an admin supplies when creating a
// user directly.
type CreateUserInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Phone       string
	CompanyName string
	Role        string
	Status      string
}

// UpdateUserInput carries optional profile updates. Empty fields are left
// unchanged.
type UpdateUserInput struct {
	Email       string
	FirstName   string
	LastName    string
	Phone       string
	CompanyName string
}

// UserStats aggregates identity counts by status and role.
type UserStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Inactive  int64 `json:"inactive"`
	Suspended int64 `json:"suspended"`
	Pending   int64 `json:"pending"`
	Clients   int64 `json:"clients"`
	Admins    int64 `json:"admins"`
}

// UserService exposes admin-facing identity management.
type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, req repository.PageRequest) (repository.Page[model.User], error)
	ListUsersByRole(ctx context.Context, role string, req repository.PageRequest) (repository.Page[model.User], error)
	ListUsersByStatus(ctx context.Context, status string, req repository.PageRequest) (repository.Page[model.User], error)
	SearchUsers(ctx context.Context, term string, req repository.PageRequest) (repository.Page[model.User], error)
	UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ActivateUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	DeactivateUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	SuspendUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	ChangeUserRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Stats(ctx context.Context) (*UserStats, error)
}

type userService struct {
	repo   repository.UserRepository
	hasher *auth.PasswordHasher
	cache  *cache.Client
}

// NewUserService builds a UserService with repository, hasher and cache.
func NewUserService(repo repository.UserRepository, hasher *auth.PasswordHasher, cache *cache.Client) UserService {
	return &userService{repo: repo, hasher: hasher, cache: cache}
}

const userStatsCacheKey = "user:stats"

func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if !model.ValidRole(input.Role) {
		return nil, errors.ErrInvalidRole
	}
	status := input.Status
	if status == "" {
		status = model.StatusActive
	}
	if !model.ValidStatus(status) {
		return nil, errors.ErrInvalidStatus
	}

	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrEmailAlreadyExists
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        model.NormalizeEmail(input.Email),
		PasswordHash: hash,
		Phone:        input.Phone,
		CompanyName:  input.CompanyName,
		Role:         input.Role,
		Status:       status,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, userStatsCacheKey)
	// The availability endpoint caches per-email answers; a cached
	// "available" must not outlive this write.
	_ = s.cache.Delete(ctx, emailExistsCacheKey(user.Email))
	lg := logger.Get()
	lg.Info().Str("user_id", user.ID.String()).Str("role", user.Role).Msg("user created")
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *userService) ListUsers(ctx context.Context, req repository.PageRequest) (repository.Page[model.User], error) {
	return s.repo.List(ctx, req)
}

func (s *userService) ListUsersByRole(ctx context.Context, role string, req repository.PageRequest) (repository.Page[model.User], error) {
	if !model.ValidRole(role) {
		return repository.Page[model.User]{}, errors.ErrInvalidRole
	}
	return s.repo.ListByRole(ctx, role, req)
}

func (s *userService) ListUsersByStatus(ctx context.Context, status string, req repository.PageRequest) (repository.Page[model.User], error) {
	if !model.ValidStatus(status) {
		return repository.Page[model.User]{}, errors.ErrInvalidStatus
	}
	return s.repo.ListByStatus(ctx, status, req)
}

func (s *userService) SearchUsers(ctx context.Context, term string, req repository.PageRequest) (repository.Page[model.User], error) {
	return s.repo.Search(ctx, term, req)
}

func (s *userService) UpdateUser(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldEmail := user.Email

	if input.Email != "" && model.NormalizeEmail(input.Email) != user.Email {
		taken, err := s.repo.ExistsByEmailExcluding(ctx, input.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errors.ErrEmailAlreadyExists
		}
		user.Email = model.NormalizeEmail(input.Email)
	}
	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.CompanyName != "" {
		user.CompanyName = input.CompanyName
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if user.Email != oldEmail {
		// The old address just became available and the new one taken.
		_ = s.cache.Delete(ctx, emailExistsCacheKey(oldEmail))
		_ = s.cache.Delete(ctx, emailExistsCacheKey(user.Email))
	}
	lg := logger.Get()
	lg.Info().Str("user_id", id.String()).Msg("user updated")
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, userStatsCacheKey)
	_ = s.cache.Delete(ctx, emailExistsCacheKey(user.Email))
	lg := logger.Get()
	lg.Info().Str("user_id", id.String()).Msg("user deleted")
	return nil
}

func (s *userService) ActivateUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.setStatus(ctx, id, model.StatusActive)
}

func (s *userService) DeactivateUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.setStatus(ctx, id, model.StatusInactive)
}

// SuspendUser blocks the identity. The authorization gate re-checks status
// per request, so suspension takes effect immediately even for tokens that
// are still cryptographically valid.
func (s *userService) SuspendUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.setStatus(ctx, id, model.StatusSuspended)
}

func (s *userService) ChangeUserRole(ctx context.Context, id uuid.UUID, role string) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, errors.ErrInvalidRole
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, userStatsCacheKey)
	lg := logger.Get()
	lg.Info().Str("user_id", id.String()).Str("role", role).Msg("user role changed")
	return s.repo.FindByID(ctx, id)
}

func (s *userService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

// Stats aggregates identity counts, cached briefly since the dashboard
// polls it.
func (s *userService) Stats(ctx context.Context) (*UserStats, error) {
	var cached UserStats
	if s.cache.GetJSON(ctx, userStatsCacheKey, &cached) {
		return &cached, nil
	}

	stats := &UserStats{}
	var err error
	if stats.Total, err = s.repo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.Active, err = s.repo.CountByStatus(ctx, model.StatusActive); err != nil {
		return nil, err
	}
	if stats.Inactive, err = s.repo.CountByStatus(ctx, model.StatusInactive); err != nil {
		return nil, err
	}
	if stats.Suspended, err = s.repo.CountByStatus(ctx, model.StatusSuspended); err != nil {
		return nil, err
	}
	if stats.Pending, err = s.repo.CountByStatus(ctx, model.StatusPending); err != nil {
		return nil, err
	}
	if stats.Clients, err = s.repo.CountByRole(ctx, model.RoleClient); err != nil {
		return nil, err
	}
	if stats.Admins, err = s.repo.CountByRole(ctx, model.RoleAdmin); err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, userStatsCacheKey, stats, statsCacheTTL)
	return stats, nil
}

func (s *userService) setStatus(ctx context.Context, id uuid.UUID, status string) (*model.User, error) {
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, userStatsCacheKey)
	lg := logger.Get()
	lg.Info().Str("user_id", id.String()).Str("status", status).Msg("user status changed")
	return s.repo.FindByID(ctx, id)
}
