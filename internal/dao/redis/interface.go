// Package redis 缓存层：单点登录的 Token ID 与互为好友的 ID 集合
package redis

import (
	"context"
	"time"
)

// CacheService Service 层依赖的缓存能力
// 所有错误都已包装为 CodeCacheError
type CacheService interface {
	// Set / Get 存取 user_token:<uid>，Get 在键不存在时返回空字符串
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error

	// Incr 递增 friend_ids_ver:<uid> 并刷新过期时间
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// ReplaceSetIfVersion versionKey 的当前值等于 version 时整体覆盖集合，
	// members 为空时只删除；版本已变化返回 (false, nil)
	ReplaceSetIfVersion(ctx context.Context, key, versionKey, version string, ttl time.Duration, members ...string) (bool, error)
	// IsSetMember exists 为 false 表示未命中，调用方应回源
	IsSetMember(ctx context.Context, key, member string) (isMember bool, exists bool, err error)
}

// AsyncCacheService 回填缓存不阻塞请求
type AsyncCacheService interface {
	CacheService
	SubmitTask(action func())
}
