package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"friend_chat_server/internal/config"
	dao "friend_chat_server/internal/dao/mysql"
	myredis "friend_chat_server/internal/dao/redis"
	wsgateway "friend_chat_server/internal/gateway/websocket"
	"friend_chat_server/internal/handler"
	"friend_chat_server/internal/https_server"
	"friend_chat_server/internal/infrastructure/logger"
	"friend_chat_server/internal/infrastructure/mq"
	"friend_chat_server/internal/service"
	"friend_chat_server/internal/service/chat"
	"friend_chat_server/pkg/util/jwt"
	"friend_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer logger.Sync()

	// 3. JWT 与 ID 生成器
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. 数据库
	repos, err := dao.Init(&conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}

	// 5. Redis 可选，连接失败时不使用缓存
	var cache myredis.AsyncCacheService
	redisCache, err := myredis.Init(rootCtx, &conf.RedisConfig)
	if err != nil {
		zap.L().Warn("Redis 不可用，以无缓存模式运行", zap.Error(err))
	} else {
		cache = redisCache
		defer redisCache.Close()
	}

	// 6. 好友关系半写入告警
	publisher := mq.NewPublisher(conf.RabbitMQConfig.URL, conf.RabbitMQConfig.Exchange)
	defer publisher.Close()
	zap.L().Info("integrity publisher ready", zap.String("mode", mq.PublisherMode(publisher)))

	// 7. ChatServer
	registry := wsgateway.NewRegistry()
	var broker chat.MessageBroker
	if conf.KafkaConfig.MessageMode == "kafka" {
		broker = chat.NewKafkaBroker(registry, mq.NewKafkaClient(&conf.KafkaConfig))
	} else {
		broker = chat.NewChannelBroker(registry)
	}
	chatServer := chat.NewChatServer(registry, broker, chat.ConnOptions{
		SendBufferSize: conf.WsConfig.SendBufferSize,
		ReadLimit:      conf.WsConfig.ReadLimit,
		RateLimit:      conf.WsConfig.RateLimit,
		RateBurst:      conf.WsConfig.RateBurst,
	})
	defer chatServer.Close()

	// 8. Service / Handler (依赖注入)
	svc := service.NewServices(service.Deps{
		Repos:     repos,
		Cache:     cache,
		Pusher:    chatServer,
		Publisher: publisher,
	})
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("初始化参数校验翻译器失败", zap.Error(err))
	}
	handlers := handler.NewHandlers(svc, chatServer, repos)

	// 9. 后台任务
	chatServer.Start(rootCtx)
	if conf.ReconcileConfig.IntervalSeconds > 0 {
		go svc.Relationship.RunReconciler(rootCtx,
			time.Duration(conf.ReconcileConfig.IntervalSeconds)*time.Second,
			conf.ReconcileConfig.BatchSize)
	}

	// 10. 启动服务
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: https_server.Init(handlers, conf),
	}
	go func() {
		var err error
		if conf.MainConfig.SslEnable {
			err = srv.ListenAndServeTLS(conf.MainConfig.CertFile, conf.MainConfig.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("server running fault", zap.Error(err))
			stop()
		}
	}()
	zap.L().Info("服务已启动", zap.String("addr", srv.Addr), zap.String("message_mode", conf.KafkaConfig.MessageMode))

	<-rootCtx.Done()
	zap.L().Info("关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
}
