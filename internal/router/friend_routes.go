// Package router 提供 HTTP 路由注册
// 本文件定义好友相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterFriendRoutes 注册好友相关路由（需要认证）
func (rt *Router) RegisterFriendRoutes(rg *gin.RouterGroup) {
	friendGroup := rg.Group("/friend")
	{
		friendGroup.GET("/list", rt.handlers.Friend.List) // 好友 + 待处理申请

		// ===== 好友申请 =====
		friendGroup.POST("/apply", rt.handlers.Friend.Apply)
		friendGroup.POST("/accept", rt.handlers.Friend.Accept)
		friendGroup.POST("/reject", rt.handlers.Friend.Reject)
	}
}
