package httpx

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/throttle"
)

// Throttle applies anon to anonymous callers (keyed by client IP) and user
// to authenticated ones (keyed by user id). A limiter failure lets the
// request through.
func Throttle(l throttle.Limiter, anon, user throttle.Rate, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		key, r := "anon:"+c.ClientIP(), anon
		if p.Authenticated() {
			key, r = "user:"+p.UserID, user
		}

		ok, retry, err := l.Allow(c.Request.Context(), key, r)
		if err != nil {
			log.Warn("throttle unavailable", "rid", c.GetString(ridKey), "err", err)
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			WriteError(c, apperr.ErrThrottled)
			return
		}
		c.Next()
	}
}
