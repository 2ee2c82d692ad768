package menu

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/httpx"
)

// RegisterRoutes mounts the catalog endpoints. mw runs before the
// authorization check of every route (throttling).
func RegisterRoutes(r gin.IRouter, repo Repository, mw ...gin.HandlerFunc) {
	g := r.Group("/menu-items", mw...)
	g.GET("/", httpx.Authorize(access.MenuList), listMenuItemsHandler(repo))
	g.POST("/", httpx.Authorize(access.MenuCreate), createMenuItemHandler(repo))
	g.GET("/:id", httpx.Authorize(access.MenuGet), getMenuItemHandler(repo))
	g.PUT("/:id", httpx.Authorize(access.MenuUpdate), updateMenuItemHandler(repo, true))
	g.PATCH("/:id", httpx.Authorize(access.MenuUpdate), updateMenuItemHandler(repo, false))
	g.DELETE("/:id", httpx.Authorize(access.MenuDelete), deleteMenuItemHandler(repo))
}

// @Summary  List menu items
// @Tags     menu
// @Param    search   query string false "title substring"
// @Param    category query string false "exact category"
// @Param    ordering query string false "price, -price, title or -title"
// @Param    limit    query int    false "page size (max 100)"
// @Param    offset   query int    false "offset"
// @Success  200 {object} ListResponse
// @Router   /menu-items/ [get]
func listMenuItemsHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := httpx.Page(c)
		q := Query{
			Search:   strings.TrimSpace(c.Query("search")),
			Category: strings.TrimSpace(c.Query("category")),
			Ordering: strings.TrimSpace(c.Query("ordering")),
			Limit:    limit,
			Offset:   offset,
		}
		if err := q.Validate(); err != nil {
			httpx.WriteError(c, err)
			return
		}

		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, ListResponse{
			Search:   q.Search,
			Category: q.Category,
			Ordering: q.Ordering,
			Limit:    limit,
			Offset:   offset,
			Items:    items,
		})
	}
}

// @Summary  Create a menu item
// @Tags     menu
// @Security Bearer
// @Param    body body CreateMenuItemRequest true "menu item"
// @Success  201 {object} MenuItem
// @Failure  400,401,403 {object} httpx.HTTPError
// @Router   /menu-items/ [post]
func createMenuItemHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateMenuItemRequest
		if err := httpx.BindJSON(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		if err := req.Validate(); err != nil {
			httpx.WriteError(c, err)
			return
		}

		it := &MenuItem{
			ID:       uuid.NewString(),
			Title:    strings.TrimSpace(req.Title),
			Price:    req.Price,
			Category: strings.TrimSpace(req.Category),
		}
		if err := repo.Create(c.Request.Context(), it); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

// @Summary  Get a menu item
// @Tags     menu
// @Param    id path string true "menu item id"
// @Success  200 {object} MenuItem
// @Failure  404 {object} httpx.HTTPError
// @Router   /menu-items/{id} [get]
func getMenuItemHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.IDParam(c, "id", "menu item")
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		it, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

// @Summary  Replace (PUT) or patch (PATCH) a menu item
// @Tags     menu
// @Security Bearer
// @Param    id   path string true "menu item id"
// @Param    body body UpdateMenuItemRequest true "fields"
// @Success  200 {object} MenuItem
// @Failure  400,401,403,404 {object} httpx.HTTPError
// @Router   /menu-items/{id} [put]
// @Router   /menu-items/{id} [patch]
func updateMenuItemHandler(repo Repository, full bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.IDParam(c, "id", "menu item")
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		var req UpdateMenuItemRequest
		if err := httpx.BindJSON(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}

		ctx := c.Request.Context()
		it, err := repo.GetByID(ctx, id)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if err := req.Apply(it, full); err != nil {
			httpx.WriteError(c, err)
			return
		}
		if err := repo.Update(ctx, it); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

// @Summary  Delete a menu item
// @Tags     menu
// @Security Bearer
// @Param    id path string true "menu item id"
// @Success  204
// @Failure  401,403,404,409 {object} httpx.HTTPError
// @Router   /menu-items/{id} [delete]
func deleteMenuItemHandler(repo Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.IDParam(c, "id", "menu item")
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if err := repo.Delete(c.Request.Context(), id); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
