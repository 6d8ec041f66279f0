package leavetype

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
	types := r.Group("/leave-types")
	types.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		types.GET("", middleware.Authorize(rbacService, rbac.ResourceLeaveType, rbac.ActionRead), handler.GetAll)
		types.GET("/:id", middleware.Authorize(rbacService, rbac.ResourceLeaveType, rbac.ActionRead), handler.GetById)
		types.POST("", middleware.Authorize(rbacService, rbac.ResourceLeaveType, rbac.ActionManage), handler.Create)
		types.PUT("/:id", middleware.Authorize(rbacService, rbac.ResourceLeaveType, rbac.ActionManage), handler.Update)
		types.DELETE("/:id", middleware.Authorize(rbacService, rbac.ResourceLeaveType, rbac.ActionManage), handler.Delete)
	}
}
