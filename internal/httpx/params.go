package httpx

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page reads limit/offset, clamping limit to [1, MaxLimit].
func Page(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// IDParam returns path parameter name when it is a UUID. Anything else
// cannot name a row, so it reports the resource as not found.
func IDParam(c *gin.Context, name, resource string) (string, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return "", apperr.NotFound(resource)
	}
	return id.String(), nil
}
