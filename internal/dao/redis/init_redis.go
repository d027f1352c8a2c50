package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"friend_chat_server/internal/config"

	"github.com/redis/go-redis/v9"
)

// Init 建立 Redis 连接并 ping 一次
// ping 失败时返回错误，由调用方决定是否降级为无缓存运行
func Init(ctx context.Context, conf *config.RedisConfig) (*RedisCache, error) {
	addr := conf.Host + ":" + strconv.Itoa(conf.Port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     conf.Password,
		DB:           conf.Db,
		PoolSize:     50,
		MinIdleConns: conf.WorkerNum, // 与 Worker 数量匹配
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return NewRedisCache(client, conf.WorkerNum, conf.TaskChanSize), nil
}
