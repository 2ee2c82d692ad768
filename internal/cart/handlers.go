package cart

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/httpx"
)

func RegisterRoutes(r gin.IRouter, svc *Service, mw ...gin.HandlerFunc) {
	g := r.Group("/cart/menu-items", mw...)
	g.GET("/", httpx.Authorize(access.CartList), listLinesHandler(svc))
	g.POST("/", httpx.Authorize(access.CartAdd), addLineHandler(svc))
	g.DELETE("/", httpx.Authorize(access.CartClear), clearHandler(svc))
}

// @Summary  List the caller's cart
// @Tags     cart
// @Security Bearer
// @Success  200 {array} Line
// @Failure  401 {object} httpx.HTTPError
// @Router   /cart/menu-items/ [get]
func listLinesHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		lines, err := svc.ListLines(c.Request.Context(), httpx.CurrentPrincipal(c).UserID)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, lines)
	}
}

// @Summary  Add a menu item to the cart (replaces the quantity if present)
// @Tags     cart
// @Security Bearer
// @Param    body body AddLineRequest true "line"
// @Success  201 {object} Line
// @Failure  400,401 {object} httpx.HTTPError
// @Router   /cart/menu-items/ [post]
func addLineHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddLineRequest
		if err := httpx.BindJSON(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		l, err := svc.AddOrUpdateLine(c.Request.Context(), httpx.CurrentPrincipal(c).UserID,
			strings.TrimSpace(req.MenuItem), req.Quantity)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusCreated, l)
	}
}

// @Summary  Empty the caller's cart
// @Tags     cart
// @Security Bearer
// @Success  204
// @Failure  401 {object} httpx.HTTPError
// @Router   /cart/menu-items/ [delete]
func clearHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.ClearAll(c.Request.Context(), httpx.CurrentPrincipal(c).UserID); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
