package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/httpx"
)

// RegisterRoutes mounts sign-up, token login and the group membership
// endpoints (one set per group).
func RegisterRoutes(r gin.IRouter, svc *Service) {
	auth := r.Group("/auth")
	auth.POST("/users/", httpx.Authorize(access.UserRegister), registerHandler(svc))
	auth.POST("/token/login/", httpx.Authorize(access.UserToken), tokenHandler(svc))

	for _, role := range access.Groups {
		g := r.Group("/groups/" + string(role) + "/users")
		g.GET("/", httpx.Authorize(access.GroupList), listMembersHandler(svc, role))
		g.POST("/", httpx.Authorize(access.GroupAdd), addMemberHandler(svc, role))
		g.GET("/:id", httpx.Authorize(access.GroupGet), getMemberHandler(svc, role))
		g.DELETE("/:id", httpx.Authorize(access.GroupRemove), removeMemberHandler(svc, role))
	}
}

// @Summary  Register a customer account
// @Tags     auth
// @Param    body body RegisterRequest true "account"
// @Success  201 {object} User
// @Failure  400,409 {object} httpx.HTTPError
// @Router   /auth/users/ [post]
func registerHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := httpx.BindJSON(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		u, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

// @Summary  Log in and obtain an access token
// @Tags     auth
// @Param    body body LoginRequest true "credentials"
// @Success  200 {object} TokenResponse
// @Failure  400 {object} httpx.HTTPError
// @Router   /auth/token/login/ [post]
func tokenHandler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := httpx.BindJSON(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		tok, err := svc.IssueToken(c.Request.Context(), req)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, tok)
	}
}

// @Summary  List group members
// @Tags     groups
// @Security Bearer
// @Param    group path string true "manager or delivery-crew"
// @Success  200 {array} User
// @Router   /groups/{group}/users/ [get]
func listMembersHandler(svc *Service, role access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.ListByRole(c.Request.Context(), role)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// @Summary  Add a user to a group
// @Tags     groups
// @Security Bearer
// @Param    group path string true "manager or delivery-crew"
// @Param    body  body AddMemberRequest true "user"
// @Success  201 {object} User
// @Failure  400,401,403 {object} httpx.HTTPError
// @Router   /groups/{group}/users/ [post]
func addMemberHandler(svc *Service, role access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AddMemberRequest
		if err := httpx.BindJSON(c, &req); err != nil {
			httpx.WriteError(c, err)
			return
		}
		u, err := svc.AddToRole(c.Request.Context(), role, req.Username)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

// @Summary  Get one group member
// @Tags     groups
// @Security Bearer
// @Param    group path string true "manager or delivery-crew"
// @Param    id    path string true "user id"
// @Success  200 {object} User
// @Failure  404 {object} httpx.HTTPError
// @Router   /groups/{group}/users/{id} [get]
func getMemberHandler(svc *Service, role access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.IDParam(c, "id", "user")
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		u, err := svc.GetInRole(c.Request.Context(), role, id)
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// @Summary  Remove a user from a group
// @Tags     groups
// @Security Bearer
// @Param    group path string true "manager or delivery-crew"
// @Param    id    path string true "user id"
// @Success  204
// @Failure  404 {object} httpx.HTTPError
// @Router   /groups/{group}/users/{id} [delete]
func removeMemberHandler(svc *Service, role access.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := httpx.IDParam(c, "id", "user")
		if err != nil {
			httpx.WriteError(c, err)
			return
		}
		if err := svc.RemoveFromRole(c.Request.Context(), role, id); err != nil {
			httpx.WriteError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
