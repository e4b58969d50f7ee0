package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"clientapi/internal/auth"
	"clientapi/internal/errors"
	"clientapi/internal/metrics"
	"clientapi/internal/model"
	"clientapi/pkg/logger"
)

// Context keys populated by Authenticate for downstream handlers.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// IdentityLoader is the slice of the user repository the gate needs to
// re-check identity status per request.
type IdentityLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Authenticate validates the bearer token and injects the caller's
// identity into the request context. The identity's current status is
// reloaded from the store on every request, so a suspended account stops
// authorizing immediately even while its tokens remain cryptographically
// valid. The specific validation failure is logged but never echoed to the
// caller.
func Authenticate(tokens *auth.JWTService, users IdentityLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.Get()

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				metrics.AuthRejectionsTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.AuthRejectionsTotal.WithLabelValues("malformed").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
				metrics.AuthRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			userID, err := claims.UserID()
			if err != nil {
				metrics.AuthRejectionsTotal.WithLabelValues("malformed").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if err != nil {
				if stderrors.Is(err, errors.ErrUserNotFound) {
					metrics.AuthRejectionsTotal.WithLabelValues("inactive_identity").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
				}
				// A failed store round-trip is not an authentication verdict.
				// Propagate so the error handler reports it as transient.
				metrics.AuthRejectionsTotal.WithLabelValues("store_unavailable").Inc()
				return err
			}
			if user.Status != model.StatusActive {
				log.Warn().Str("user_id", userID.String()).Str("status", user.Status).
					Msg("token presented for non-active identity")
				metrics.AuthRejectionsTotal.WithLabelValues("inactive_identity").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(ContextUserID, user.ID)
			c.Set(ContextRole, user.Role)
			return next(c)
		}
	}
}

// RequireRoles gates a route to callers whose role is in the given set.
// Routes without a RequireRoles middleware accept any authenticated
// caller.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if _, ok := allowed[role]; !ok {
				metrics.AuthRejectionsTotal.WithLabelValues("forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

func rejectionReason(err error) string {
	switch {
	case stderrors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case stderrors.Is(err, auth.ErrTokenSignatureInvalid):
		return "signature"
	default:
		return "malformed"
	}
}
