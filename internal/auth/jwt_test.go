package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientapi/internal/model"
)

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	userID := uuid.New()

	token, err := svc.Issue(userID, model.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	gotID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := &JWTService{secret: []byte("test-secret"), ttl: -time.Minute}
	token, err := svc.Issue(uuid.New(), model.RoleClient)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer := NewJWTService("issuer-secret", time.Hour)
	verifier := NewJWTService("other-secret", time.Hour)

	token, err := issuer.Issue(uuid.New(), model.RoleClient)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestJWTService_GarbageToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not a jwt", token: "definitely-not-a-token"},
		{name: "truncated", token: "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func TestClaims_UserID_NonUUIDSubject(t *testing.T) {
	claims := &Claims{}
	claims.Subject = "not-a-uuid"

	_, err := claims.UserID()
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestNewJWTService_DefaultTTL(t *testing.T) {
	svc := NewJWTService("test-secret", 0)
	assert.Equal(t, DefaultTokenTTL, svc.ttl)
}
