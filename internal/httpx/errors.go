package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
)

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// example: not found
	Error string `json:"error"`
}

var statuses = []struct {
	kind   error
	status int
}{
	{apperr.ErrValidation, http.StatusBadRequest},
	{apperr.ErrNotAuthenticated, http.StatusUnauthorized},
	{apperr.ErrPermissionDenied, http.StatusForbidden},
	{apperr.ErrNotFound, http.StatusNotFound},
	{apperr.ErrConflict, http.StatusConflict},
	{apperr.ErrThrottled, http.StatusTooManyRequests},
	{apperr.ErrTransaction, http.StatusInternalServerError},
}

func StatusOf(err error) int {
	for _, s := range statuses {
		if errors.Is(err, s.kind) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}

// WriteError aborts the request with the status mapped from err. Server
// errors are logged with their cause and reported with a generic message.
func WriteError(c *gin.Context, err error) {
	status := StatusOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		slog.Default().Error("request failed",
			"rid", c.GetString(ridKey),
			"path", c.Request.URL.Path,
			"err", apperr.Cause(err),
		)
		if !errors.Is(err, apperr.ErrTransaction) {
			msg = "internal error"
		}
	}
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer realm="api"`)
	}
	c.AbortWithStatusJSON(status, HTTPError{Error: msg})
}

// BindJSON decodes the body into dst, reporting malformed input as a
// validation error.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validationf("invalid json: %v", err)
	}
	return nil
}
