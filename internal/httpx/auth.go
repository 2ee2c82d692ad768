package httpx

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/apperr"
)

const principalKey = "principal"

// Resolver turns a bearer token into the caller's Principal.
type Resolver interface {
	Resolve(ctx context.Context, token string) (access.Principal, error)
}

// Authenticate attaches the caller's Principal. A request without an
// Authorization header continues as anonymous; a present but unusable
// header is rejected.
func Authenticate(r Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.Set(principalKey, access.Anonymous())
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(h, " ")
		if !ok || (scheme != "Bearer" && scheme != "Token") || strings.TrimSpace(token) == "" {
			WriteError(c, apperr.ErrNotAuthenticated)
			return
		}

		p, err := r.Resolve(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			WriteError(c, err)
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// Authorize checks the caller against the policy table entry for op.
func Authorize(op access.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.Authorize(CurrentPrincipal(c), op); err != nil {
			WriteError(c, err)
			return
		}
		c.Next()
	}
}

func CurrentPrincipal(c *gin.Context) access.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(access.Principal); ok {
			return p
		}
	}
	return access.Anonymous()
}

// WithPrincipal sets p directly; tests use it in place of Authenticate.
func WithPrincipal(p access.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(principalKey, p)
		c.Next()
	}
}
