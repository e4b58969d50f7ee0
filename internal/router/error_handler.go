package router

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"clientapi/internal/errors"
	"clientapi/pkg/logger"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to their HTTP status and code, and logs unexpected errors without
// leaking details to the caller.
func NewHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		// Echo's own errors: bind failures, router 404s and the errors the
		// middleware raises directly.
		var he *echo.HTTPError
		if stderrors.As(err, &he) {
			_ = c.JSON(he.Code, errors.ErrorResponse{
				Error: fmt.Sprintf("%v", he.Message),
				Code:  http.StatusText(he.Code),
			})
			return
		}

		mapped := errors.MapErrorToHTTP(err)
		if mapped.StatusCode >= http.StatusInternalServerError {
			lg := logger.Get()
			lg.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("unhandled error")
		}
		_ = c.JSON(mapped.StatusCode, mapped.ToErrorResponse())
	}
}
