package order

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/httpx"
)

// RegisterRoutes mounts the order read/maintenance endpoints. Checkout
// (POST /orders/) is mounted by the checkout package. list carries
// middleware only the collection route gets (throttling).
func RegisterRoutes(r gin.IRouter, svc *Service, list ...gin.HandlerFunc) {
	g := r.Group("/orders")
	listChain := append(append([]gin.HandlerFunc{}, list...), httpx.Authorize(access.OrderList), listOrdersHandler(svc))
	g.GET("/", listChain...)
	g.GET("/:id", httpx.Authorize(access.OrderGet), getOrderHandler(svc))
	g.PUT("/:id", httpx.Authorize(access.OrderUpdate), updateOrderHandler(svc, true))
	g.PATCH("/:id", httpx.Authorize(access.OrderUpdate), updateOrderHandler(svc, false))
	g.DELETE("/:id", httpx.Authorize(access.OrderDelete), deleteOrderHandler(svc))
}

// @Summary  List orders (all for managers, own otherwise)
// @Tags     orders
// @Security Bearer
// @Param    limit  query int false "page size (max 100)"
// @Param    offset query int false "offset"
// @Success  200 {object} ListResponse
// @Failure  401 {object} httpx.HTTPError
// @Router   /orders/ [get]
func listOrdersHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := httpx.Page(c)
		orders, err := svc.List(c.Request.Context(), httpx.CurrentPrincipal(c), limit, offset)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, ListResponse{Limit: limit, Offset: offset, Orders: orders})
	}
}

// @Summary  Get an order
// @Tags     orders
// @Security Bearer
// @Param    id path string true "order id"
// @Success  200 {object} Order
// @Failure  401,404 {object} httpx.HTTPError
// @Router   /orders/{id} [get]
func getOrderHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.IDParam(c, "id", "order")
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		o, err := svc.Get(c.Request.Context(), httpx.CurrentPrincipal(c), id)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Replace (PUT) or patch (PATCH) delivery crew and status
// @Tags     orders
// @Security Bearer
// @Param    id   path string true "order id"
// @Param    body body UpdateOrderRequest true "fields"
// @Success  200 {object} Order
// @Failure  400,401,404 {object} httpx.HTTPError
// @Router   /orders/{id} [put]
// @Router   /orders/{id} [patch]
func updateOrderHandler(svc *Service, full bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.IDParam(c, "id", "order")
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		var req UpdateOrderRequest
		if err := httpx.BindJSON(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		o, err := svc.Update(c.Request.Context(), httpx.CurrentPrincipal(c), id, req, full)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// @Summary  Delete an order
// @Tags     orders
// @Security Bearer
// @Param    id path string true "order id"
// @Success  204
// @Failure  401,404 {object} httpx.HTTPError
// @Router   /orders/{id} [delete]
func deleteOrderHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.IDParam(c, "id", "order")
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if err := svc.Delete(c.Request.Context(), httpx.CurrentPrincipal(c), id); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
