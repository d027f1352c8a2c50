// Package redistest 提供 AsyncCacheService 的内存实现，供 service 层测试使用
package redistest

import (
	"context"
	"strconv"
	"sync"
	"time"

	myredis "friend_chat_server/internal/dao/redis"
)

// Cache 忽略过期时间，SubmitTask 默认同步执行
type Cache struct {
	mu      sync.Mutex
	strings map[string]string
	sets    map[string]map[string]struct{}

	deferTasks bool
	pending    []func()
}

func New() *Cache {
	return &Cache{
		strings: make(map[string]string),
		sets:    make(map[string]map[string]struct{}),
	}
}

// NewDeferred SubmitTask 只排队，由 RunPending 执行，用于模拟 Worker Pool 的延迟
func NewDeferred() *Cache {
	c := New()
	c.deferTasks = true
	return c
}

func (c *Cache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.strings[key] = value
	return nil
}

func (c *Cache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strings[key], nil
}

func (c *Cache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.strings, k)
		delete(c.sets, k)
	}
	return nil
}

func (c *Cache) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.strings[key], 10, 64)
	n++
	c.strings[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *Cache) ReplaceSetIfVersion(_ context.Context, key, versionKey, version string, _ time.Duration, members ...string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.strings[versionKey] != version {
		return false, nil
	}
	delete(c.sets, key)
	if len(members) == 0 {
		return true, nil
	}
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}
	c.sets[key] = set
	return true, nil
}

func (c *Cache) IsSetMember(_ context.Context, key, member string) (bool, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.sets[key]
	if !ok {
		return false, false, nil
	}
	_, isMember := set[member]
	return isMember, true, nil
}

func (c *Cache) SubmitTask(action func()) {
	c.mu.Lock()
	if c.deferTasks {
		c.pending = append(c.pending, action)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	action()
}

// RunPending 按提交顺序执行排队的任务，返回执行数量
func (c *Cache) RunPending() int {
	c.mu.Lock()
	tasks := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, task := range tasks {
		task()
	}
	return len(tasks)
}

// Has 键是否存在
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, s := c.strings[key]
	_, set := c.sets[key]
	return s || set
}

var _ myredis.AsyncCacheService = (*Cache)(nil)
