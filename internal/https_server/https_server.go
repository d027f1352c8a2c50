// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件和路由
package https_server

import (
	"friend_chat_server/internal/config"
	"friend_chat_server/internal/handler"
	"friend_chat_server/internal/infrastructure/logger"
	"friend_chat_server/internal/infrastructure/metrics"
	"friend_chat_server/internal/infrastructure/middleware"
	"friend_chat_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Init 创建 Gin 引擎
// 配置顺序：
//  1. 空白引擎（不使用 gin.Default() 以便完全控制中间件）
//  2. 日志、Panic 恢复、指标中间件
//  3. CORS
//  4. sslEnable 时启用 HTTPS 安全头
//  5. /metrics 与业务路由
func Init(handlers *handler.Handlers, conf *config.Config) *gin.Engine {
	if conf.MainConfig.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))
	engine.Use(metrics.HTTPMetricsMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 生产环境应指定具体域名
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	if conf.MainConfig.SslEnable {
		engine.Use(middleware.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port, conf.MainConfig.Mode != gin.ReleaseMode))
	}

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rt := router.NewRouter(handlers, conf.WsConfig.RateLimit, conf.WsConfig.RateBurst)
	rt.RegisterRoutes(engine)

	return engine
}
