// Package router 提供 HTTP 路由注册
// 本文件定义用户相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterUserPublicRoutes 注册无需认证的用户路由
func (rt *Router) RegisterUserPublicRoutes(rg *gin.RouterGroup) {
	userGroup := rg.Group("/user")
	{
		userGroup.POST("/register", rt.handlers.User.Register)
		userGroup.POST("/login", rt.handlers.User.Login)
	}
}

// RegisterUserRoutes 注册需要认证的用户路由
func (rt *Router) RegisterUserRoutes(rg *gin.RouterGroup) {
	userGroup := rg.Group("/user")
	{
		userGroup.GET("/info", rt.handlers.User.Info)     // ?user_id=，缺省为自己
		userGroup.GET("/search", rt.handlers.User.Search) // ?telephone=
	}
}
