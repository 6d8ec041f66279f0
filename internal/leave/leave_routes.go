package leave

import (
	"leavedesk/internal/middleware"
	"leavedesk/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware(), middleware.ExtractUserID())
	{
		leaves.POST("",
			middleware.Authorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate),
			middleware.RateLimitByUser(2, 5),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		leaves.GET("/mine", middleware.Authorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.GetMine)
		leaves.GET("/pending", middleware.Authorize(rbacService, rbac.ResourceLeave, rbac.ActionDecide), handler.GetPending)
		leaves.GET("", middleware.Authorize(rbacService, rbac.ResourceLeave, rbac.ActionList), handler.GetAll)
		leaves.GET("/:id", middleware.Authorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.GetById)
		leaves.PUT("/:id", middleware.Authorize(rbacService, rbac.ResourceLeave, rbac.ActionUpdate), handler.Update)
		leaves.POST("/:id/approve", middleware.Authorize(rbacService, rbac.ResourceLeave, rbac.ActionDecide), handler.Approve)
		leaves.POST("/:id/reject", middleware.Authorize(rbacService, rbac.ResourceLeave, rbac.ActionDecide), handler.Reject)
		leaves.POST("/:id/cancel", middleware.Authorize(rbacService, rbac.ResourceLeave, rbac.ActionCancel), handler.Cancel)
		leaves.DELETE("/:id", middleware.Authorize(rbacService, rbac.ResourceLeave, rbac.ActionDelete), handler.Delete)
	}
}
