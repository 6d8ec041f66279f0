package auth

import (
	"leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", middleware.RateLimitByIP(5, 10), handler.Register)
		auth.POST("/login", middleware.RateLimitByIP(5, 10), handler.Login)
		auth.POST("/refresh", middleware.RateLimitByIP(5, 10), handler.Refresh)
		auth.POST("/logout", handler.Logout)
		auth.GET("/me", middleware.AuthMiddleware(), handler.Me)
	}
}
