// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"time"

	"friend_chat_server/internal/handler"
	"friend_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 Handler 聚合和发送接口的限流器
type Router struct {
	handlers    *handler.Handlers
	sendLimiter middleware.RateLimiter
}

// NewRouter 创建路由管理器
// rate/burst 为单用户每秒发送消息数，<=0 时不限流
func NewRouter(handlers *handler.Handlers, rate float64, burst int) *Router {
	rt := &Router{handlers: handlers}
	if rate > 0 {
		rt.sendLimiter = middleware.NewKeyedRateLimiter(rate, burst, 10*time.Minute)
	}
	return rt
}

// RegisterRoutes 注册所有路由
//   - 公开路由：注册、登录、刷新 Token、健康检查
//   - 认证路由：JWTAuth 之后的业务接口
//   - /wss：Token 可放在查询参数中
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", rt.handlers.Health.Health)

	public := r.Group("")
	rt.RegisterUserPublicRoutes(public)
	rt.RegisterAuthRoutes(public)

	authed := r.Group("")
	authed.Use(middleware.JWTAuth())
	rt.RegisterUserRoutes(authed)
	rt.RegisterFriendRoutes(authed)
	rt.RegisterMessageRoutes(authed)
	rt.RegisterGroupRoutes(authed)

	rt.RegisterWebSocketRoutes(r)
}

// sendMiddlewares 发送类接口的额外中间件
func (rt *Router) sendMiddlewares() []gin.HandlerFunc {
	if rt.sendLimiter == nil {
		return nil
	}
	return []gin.HandlerFunc{middleware.RateLimit(rt.sendLimiter)}
}

// withSend 把限流中间件放在业务 Handler 之前
func (rt *Router) withSend(h gin.HandlerFunc) []gin.HandlerFunc {
	return append(rt.sendMiddlewares(), h)
}
