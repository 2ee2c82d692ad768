package checkout

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/httpx"
)

// HeaderCartEmpty marks a checkout that found nothing in the cart.
const HeaderCartEmpty = "X-Cart-Empty"

// RegisterRoutes mounts POST /orders/. mw runs before the authorization
// check (throttling).
func RegisterRoutes(r gin.IRouter, e *Engine, mw ...gin.HandlerFunc) {
	chain := append(append([]gin.HandlerFunc{}, mw...), httpx.Authorize(access.OrderCheckout), checkoutHandler(e))
	r.POST("/orders/", chain...)
}

// @Summary  Check out the caller's cart into a new order
// @Description An empty cart produces a zero-total order and the X-Cart-Empty header.
// @Tags     orders
// @Security Bearer
// @Success  201 {object} order.Order
// @Header   201 {string} X-Cart-Empty "true when the cart was empty"
// @Failure  401,500 {object} httpx.HTTPError
// @Router   /orders/ [post]
func checkoutHandler(e *Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := e.Checkout(c.Request.Context(), httpx.CurrentPrincipal(c))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if res.Empty {
			c.Header(HeaderCartEmpty, "true")
		}
		c.JSON(http.StatusCreated, res.Order)
	}
}
