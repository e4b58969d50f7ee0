package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is used when no expiry is configured.
const DefaultTokenTTL = 24 * time.Hour

// Token validation failure kinds. Callers can branch on these without
// inspecting library internals.
var (
	// ErrTokenMalformed means the token is structurally invalid.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired means the token was valid but its expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenSignatureInvalid means the token was tampered with or signed
	// with a different key.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
)

// Claims carried by an issued token: subject identity and role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user ID.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenMalformed
	}
	return id, nil
}

// JWTService issues and validates self-contained HS256 bearer tokens.
// Validation needs only the signing key, no server-side state.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates a token service with the given secret and expiry
// horizon.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token carrying the subject's ID and role, expiring after
// the configured TTL.
func (s *JWTService) Issue(userID uuid.UUID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and verifies a token, returning its claims. Failures are
// reported as one of ErrTokenMalformed, ErrTokenExpired or
// ErrTokenSignatureInvalid.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
