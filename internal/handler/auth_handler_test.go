package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clientapi/internal/errors"
	"clientapi/internal/model"
	"clientapi/internal/service"
)

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (string, *model.User, error) {
	args := m.Called(ctx, input)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newAuthTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "jane@example.com", Role: model.RoleClient, Status: model.StatusActive}

	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, "jane@example.com", "password123").Return("issued-token", user, nil)
	h := NewAuthHandler(svc)

	c, rec := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"jane@example.com","password":"password123"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "issued-token", resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, "jane@example.com", "wrong").Return("", nil, errors.ErrInvalidCredentials)
	h := NewAuthHandler(svc)

	c, _ := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"jane@example.com","password":"wrong"}`)

	err := h.Login(c)
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestAuthHandler_Login_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"email":`},
		{name: "missing password", body: `{"email":"jane@example.com"}`},
		{name: "not an email", body: `{"email":"nope","password":"password123"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(new(MockAuthService))
			c, _ := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/login", tt.body)

			err := h.Login(c)
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, http.StatusBadRequest, he.Code)
		})
	}
}

func TestAuthHandler_Register_ForcesClientRole(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
		return in.Role == model.RoleClient
	})).Return("issued-token", &model.User{ID: uuid.New(), Role: model.RoleClient}, nil)
	h := NewAuthHandler(svc)

	// A smuggled role field must not escalate the public endpoint.
	c, rec := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/register",
		`{"email":"new@example.com","password":"password123","first_name":"New","last_name":"User","role":"ADMIN"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestAuthHandler_RegisterAdmin(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Register", mock.Anything, mock.MatchedBy(func(in service.RegisterInput) bool {
		return in.Role == model.RoleAdmin
	})).Return("issued-token", &model.User{ID: uuid.New(), Role: model.RoleAdmin}, nil)
	h := NewAuthHandler(svc)

	c, rec := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/register/admin",
		`{"email":"boss@example.com","password":"password123","first_name":"Big","last_name":"Boss","role":"ADMIN"}`)
	require.NoError(t, h.RegisterAdmin(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestAuthHandler_RegisterAdmin_RejectsUnknownRole(t *testing.T) {
	h := NewAuthHandler(new(MockAuthService))

	c, _ := newAuthTestContext(t, http.MethodPost, "/api/v1/auth/register/admin",
		`{"email":"boss@example.com","password":"password123","first_name":"Big","last_name":"Boss","role":"SUPERUSER"}`)

	err := h.RegisterAdmin(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestAuthHandler_CheckEmail_DecodesEscapedParam(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("EmailExists", mock.Anything, "jane@example.com").Return(false, nil)
	h := NewAuthHandler(svc)

	// The router hands the param over still percent-encoded.
	c, rec := newAuthTestContext(t, http.MethodGet, "/api/v1/auth/check-email/jane%40example.com", "")
	c.SetParamNames("email")
	c.SetParamValues("jane%40example.com")

	require.NoError(t, h.CheckEmail(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestAuthHandler_CheckEmail(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("EmailExists", mock.Anything, "taken@example.com").Return(true, nil)
	h := NewAuthHandler(svc)

	c, rec := newAuthTestContext(t, http.MethodGet, "/api/v1/auth/check-email/taken@example.com", "")
	c.SetParamNames("email")
	c.SetParamValues("taken@example.com")

	require.NoError(t, h.CheckEmail(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp["available"])
	assert.True(t, resp["exists"])
	svc.AssertExpectations(t)
}
