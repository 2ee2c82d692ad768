// Package server assembles the HTTP router and the gRPC health server and
// runs both until shutdown.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/littlelemon-api/docs"
	"github.com/MikeMC777/littlelemon-api/internal/cart"
	"github.com/MikeMC777/littlelemon-api/internal/checkout"
	"github.com/MikeMC777/littlelemon-api/internal/httpx"
	"github.com/MikeMC777/littlelemon-api/internal/menu"
	"github.com/MikeMC777/littlelemon-api/internal/order"
	"github.com/MikeMC777/littlelemon-api/internal/throttle"
	"github.com/MikeMC777/littlelemon-api/internal/user"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Log *slog.Logger

	Users    *user.Service
	Menu     menu.Repository
	Cart     *cart.Service
	Orders   *order.Service
	Checkout *checkout.Engine

	Limiter  throttle.Limiter
	AnonRate throttle.Rate
	UserRate throttle.Rate

	Store Pinger

	CORSOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		httpx.CORS(d.CORSOrigins),
		httpx.RequestID(),
		httpx.Logger(d.Log),
		httpx.Recovery(d.Log),
		httpx.Authenticate(d.Users),
	)

	r.GET("/healthz", healthzHandler(d.Store))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	throttled := httpx.Throttle(d.Limiter, d.AnonRate, d.UserRate, d.Log)

	user.RegisterRoutes(r, d.Users)
	menu.RegisterRoutes(r, d.Menu, throttled)
	cart.RegisterRoutes(r, d.Cart)
	order.RegisterRoutes(r, d.Orders, throttled)
	checkout.RegisterRoutes(r, d.Checkout, throttled)
	return r
}

// @Summary  Liveness and store reachability
// @Tags     health
// @Success  200 {object} map[string]string
// @Failure  503 {object} httpx.HTTPError
// @Router   /healthz [get]
func healthzHandler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, httpx.HTTPError{Error: "store unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
