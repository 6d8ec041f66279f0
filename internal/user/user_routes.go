package user

import (
	"leavedesk/internal/middleware"
	"leavedesk/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		users.GET("/me", handler.Me)
		users.GET("/reports", middleware.Authorize(rbacService, rbac.ResourceUser, rbac.ActionReadReports), handler.Reports)
		users.GET("", middleware.Authorize(rbacService, rbac.ResourceUser, rbac.ActionManage), handler.GetAll)
		users.GET("/:id", middleware.Authorize(rbacService, rbac.ResourceUser, rbac.ActionManage), handler.GetById)
		users.PUT("/:id/role", middleware.Authorize(rbacService, rbac.ResourceUser, rbac.ActionManage), handler.UpdateRole)
		users.PUT("/:id/manager", middleware.Authorize(rbacService, rbac.ResourceUser, rbac.ActionManage), handler.AssignManager)
	}
}
