package report

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
	reports := r.Group("/reports")
	reports.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		reports.GET("/me", middleware.Authorize(rbacService, rbac.ResourceReport, rbac.ActionRead), handler.GetMine)
		reports.GET("/users/:id", middleware.Authorize(rbacService, rbac.ResourceReport, rbac.ActionList), handler.GetByUser)
		reports.GET("", middleware.Authorize(rbacService, rbac.ResourceReport, rbac.ActionList), handler.GetAll)
	}
}
