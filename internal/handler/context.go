package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"clientapi/internal/repository"
)

// pageRequest reads ?page= and ?size= query parameters. Out-of-range
// values are clamped by the repository layer.
func pageRequest(c echo.Context) repository.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	return repository.PageRequest{Page: page, Size: size}
}

// emailParam returns the :email path parameter, percent-decoded. Echo
// leaves path params encoded, so "jane%40example.com" would otherwise
// reach the service as the literal encoded string.
func emailParam(c echo.Context) string {
	raw := c.Param("email")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// uuidParam parses a path parameter as a UUID.
func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
