package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"clientapi/internal/auth"
	"clientapi/internal/errors"
	"clientapi/internal/model"
	"clientapi/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmailExcluding(ctx context.Context, email string, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, req repository.PageRequest) (repository.Page[model.User], error) {
	args := m.Called(ctx, req)
	return args.Get(0).(repository.Page[model.User]), args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role string, req repository.PageRequest) (repository.Page[model.User], error) {
	args := m.Called(ctx, role, req)
	return args.Get(0).(repository.Page[model.User]), args.Error(1)
}

func (m *MockUserRepository) ListByStatus(ctx context.Context, status string, req repository.PageRequest) (repository.Page[model.User], error) {
	args := m.Called(ctx, status, req)
	return args.Get(0).(repository.Page[model.User]), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, term string, req repository.PageRequest) (repository.Page[model.User], error) {
	args := m.Called(ctx, term, req)
	return args.Get(0).(repository.Page[model.User]), args.Error(1)
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func newTestAuthService(repo *MockUserRepository) (AuthService, *auth.JWTService) {
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	tokens := auth.NewJWTService("test-secret", time.Hour)
	return NewAuthService(repo, hasher, tokens, nil), tokens
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.NewPasswordHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)
	return hash
}

func TestAuthService_Login(t *testing.T) {
	activeUser := &model.User{
		ID:           uuid.New(),
		Email:        "jane.doe@example.com",
		PasswordHash: hashOf(t, "correct-password"),
		Role:         model.RoleClient,
		Status:       model.StatusActive,
	}
	suspendedUser := &model.User{
		ID:           uuid.New(),
		Email:        "blocked@example.com",
		PasswordHash: hashOf(t, "correct-password"),
		Role:         model.RoleClient,
		Status:       model.StatusSuspended,
	}

	tests := []struct {
		name      string
		email     string
		password  string
		setupMock func(*MockUserRepository)
		wantErr   error
	}{
		{
			name:     "success",
			email:    "jane.doe@example.com",
			password: "correct-password",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, "jane.doe@example.com").Return(activeUser, nil)
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "whatever",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, errors.ErrUserNotFound)
			},
			wantErr: errors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "jane.doe@example.com",
			password: "wrong-password",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, "jane.doe@example.com").Return(activeUser, nil)
			},
			wantErr: errors.ErrInvalidCredentials,
		},
		{
			name:     "suspended account, correct password",
			email:    "blocked@example.com",
			password: "correct-password",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, "blocked@example.com").Return(suspendedUser, nil)
			},
			wantErr: errors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)
			svc, tokens := newTestAuthService(repo)

			token, user, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.NotEmpty(t, token)

				claims, err := tokens.Validate(token)
				require.NoError(t, err)
				subject, err := claims.UserID()
				require.NoError(t, err)
				assert.Equal(t, user.ID, subject)
				assert.Equal(t, user.Role, claims.Role)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name      string
		input     RegisterInput
		setupMock func(*MockUserRepository)
		wantErr   error
	}{
		{
			name: "success",
			input: RegisterInput{
				Email:     "new.user@example.com",
				Password:  "strong-password",
				FirstName: "New",
				LastName:  "User",
				Role:      model.RoleClient,
			},
			setupMock: func(repo *MockUserRepository) {
				repo.On("ExistsByEmail", mock.Anything, "new.user@example.com").Return(false, nil)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
					Run(func(args mock.Arguments) {
						user := args.Get(1).(*model.User)
						user.ID = uuid.New()
					}).Return(nil)
			},
		},
		{
			name: "email already taken",
			input: RegisterInput{
				Email:     "taken@example.com",
				Password:  "strong-password",
				FirstName: "New",
				LastName:  "User",
				Role:      model.RoleClient,
			},
			setupMock: func(repo *MockUserRepository) {
				repo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)
			},
			wantErr: errors.ErrEmailAlreadyExists,
		},
		{
			name: "concurrent registration loses the race",
			input: RegisterInput{
				Email:     "raced@example.com",
				Password:  "strong-password",
				FirstName: "New",
				LastName:  "User",
				Role:      model.RoleClient,
			},
			setupMock: func(repo *MockUserRepository) {
				repo.On("ExistsByEmail", mock.Anything, "raced@example.com").Return(false, nil)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
					Return(errors.ErrEmailAlreadyExists)
			},
			wantErr: errors.ErrEmailAlreadyExists,
		},
		{
			name: "unknown role",
			input: RegisterInput{
				Email:     "new.user@example.com",
				Password:  "strong-password",
				FirstName: "New",
				LastName:  "User",
				Role:      "SUPERUSER",
			},
			setupMock: func(repo *MockUserRepository) {},
			wantErr:   errors.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)
			svc, tokens := newTestAuthService(repo)

			token, user, err := svc.Register(context.Background(), tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				assert.Equal(t, model.StatusActive, user.Status)
				assert.NotEqual(t, tt.input.Password, user.PasswordHash)

				claims, err := tokens.Validate(token)
				require.NoError(t, err)
				assert.Equal(t, tt.input.Role, claims.Role)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_FoldsEmailCase(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("ExistsByEmail", mock.Anything, "  Jane.DOE@Example.COM ").Return(false, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "jane.doe@example.com"
	})).Return(nil)

	svc, _ := newTestAuthService(repo)

	_, user, err := svc.Register(context.Background(), RegisterInput{
		Email:     "  Jane.DOE@Example.COM ",
		Password:  "strong-password",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      model.RoleClient,
	})
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", user.Email)
	repo.AssertExpectations(t)
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("ExistsByEmail", mock.Anything, "roundtrip@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = uuid.New()
		}).Return(nil)

	svc, tokens := newTestAuthService(repo)

	_, registered, err := svc.Register(context.Background(), RegisterInput{
		Email:     "roundtrip@example.com",
		Password:  "strong-password",
		FirstName: "Round",
		LastName:  "Trip",
		Role:      model.RoleClient,
	})
	require.NoError(t, err)

	repo.On("FindByEmail", mock.Anything, "roundtrip@example.com").Return(registered, nil)

	token, loggedIn, err := svc.Login(context.Background(), "roundtrip@example.com", "strong-password")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, loggedIn.ID)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	subject, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, registered.ID, subject)
}

func TestAuthService_EmailExists(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("ExistsByEmail", mock.Anything, "present@example.com").Return(true, nil)

	svc, _ := newTestAuthService(repo)

	exists, err := svc.EmailExists(context.Background(), "present@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	repo.AssertExpectations(t)
}
