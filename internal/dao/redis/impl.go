package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"friend_chat_server/pkg/errorx"
)

// RedisCache AsyncCacheService 的 Redis 实现
// 好友集合的回填通过 SubmitTask 交给 Worker Pool，失效在请求内同步完成
type RedisCache struct {
	client    *redis.Client
	taskChan  chan func()
	workerNum int
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewRedisCache 创建 Redis 缓存实例并启动 Worker Pool
func NewRedisCache(client *redis.Client, workerNum, taskChanSize int) *RedisCache {
	rc := &RedisCache{
		client:    client,
		taskChan:  make(chan func(), taskChanSize),
		workerNum: workerNum,
	}
	rc.wg.Add(workerNum)
	for i := 0; i < workerNum; i++ {
		go rc.startWorker()
	}
	zap.L().Info("Redis Cache Workers started", zap.Int("workers", workerNum), zap.Int("buffer", taskChanSize))
	return rc
}

// startWorker 单个 Worker 消费循环，任务 panic 不影响 Worker 存活
func (r *RedisCache) startWorker() {
	defer r.wg.Done()
	for task := range r.taskChan {
		r.runTask(task)
	}
}

func (r *RedisCache) runTask(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("Redis Worker panic", zap.Any("recover", rec))
		}
	}()
	if task != nil {
		task()
	}
}

// ==================== String 操作 ====================

// Set 设置键值对并指定过期时间
func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

// Get 获取键对应的值（键不存在返回空字符串和 nil）
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

// Incr INCR + EXPIRE 在一个 MULTI 中执行
func (r *RedisCache) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, errorx.Wrapf(err, errorx.CodeCacheError, "redis incr key %s", key)
	}
	return incr.Val(), nil
}

// ==================== Key 操作 ====================

// Delete 删除键，使用 UNLINK 异步释放内存
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Unlink(ctx, keys...).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis unlink keys %v", keys)
	}
	return nil
}

// ==================== Set 集合操作 ====================

// ReplaceSetIfVersion WATCH versionKey，版本一致时 DEL + SADD + EXPIRE 在一个 MULTI 中执行
// 事务执行前版本被修改同样视为未写入
func (r *RedisCache) ReplaceSetIfVersion(ctx context.Context, key, versionKey, version string, ttl time.Duration, members ...string) (bool, error) {
	applied := false
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if len(members) == 0 {
				return nil
			}
			args := make([]interface{}, len(members))
			for i, m := range members {
				args[i] = m
			}
			pipe.SAdd(ctx, key, args...)
			pipe.Expire(ctx, key, ttl)
			return nil
		})
		if err != nil {
			return err
		}
		applied = true
		return nil
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, errorx.Wrapf(err, errorx.CodeCacheError, "redis replace set %s", key)
	}
	return applied, nil
}

// IsSetMember EXISTS 与 SISMEMBER 走同一个 pipeline
func (r *RedisCache) IsSetMember(ctx context.Context, key, member string) (bool, bool, error) {
	var (
		existsCmd *redis.IntCmd
		memberCmd *redis.BoolCmd
	)
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		existsCmd = pipe.Exists(ctx, key)
		memberCmd = pipe.SIsMember(ctx, key, member)
		return nil
	})
	if err != nil {
		return false, false, errorx.Wrapf(err, errorx.CodeCacheError, "redis sismember key %s", key)
	}
	return memberCmd.Val(), existsCmd.Val() == 1, nil
}

// ==================== 异步任务 ====================

// SubmitTask 提交异步缓存任务，缓冲区满时降级为同步执行
func (r *RedisCache) SubmitTask(action func()) {
	select {
	case r.taskChan <- action:
	default:
		zap.L().Warn("Redis cache task channel full, executing synchronously")
		r.runTask(action)
	}
}

// Close 停止 Worker 并等待已提交任务执行完毕，然后关闭客户端
func (r *RedisCache) Close() error {
	r.closeOnce.Do(func() {
		close(r.taskChan)
	})
	r.wg.Wait()
	return r.client.Close()
}

// 确保 RedisCache 实现了 AsyncCacheService 接口
var _ AsyncCacheService = (*RedisCache)(nil)
