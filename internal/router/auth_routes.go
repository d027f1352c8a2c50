package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes 注册认证路由（公开）
func (rt *Router) RegisterAuthRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/refresh", rt.handlers.Auth.Refresh) // Refresh Token 换 Access Token
}
