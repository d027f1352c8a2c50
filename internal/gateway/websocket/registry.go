// Package websocket 维护在线用户与其长连接之间的映射
// 每个用户同一时刻最多一条有效连接，新连接顶替旧连接
package websocket

import "sync"

// Handle 一条可推送的长连接
// Push 不得阻塞，连接已关闭或缓冲已满时直接返回错误
type Handle interface {
	ConnId() string
	Push(payload []byte) error
}

// Registry 用户 -> 连接 与 连接 -> 用户 两张表，在同一把锁下成对更新
type Registry struct {
	mu       sync.RWMutex
	byUser   map[string]Handle
	byHandle map[Handle]string
}

// NewRegistry 创建空的连接注册表
func NewRegistry() *Registry {
	return &Registry{
		byUser:   make(map[string]Handle),
		byHandle: make(map[Handle]string),
	}
}

// Register 绑定 userId 与 h，后注册者生效
// 返回被顶替的旧连接（没有或与 h 相同时为 nil），由调用方负责关闭
func (r *Registry) Register(userId string, h Handle) (superseded Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 同一连接改绑到其他用户时，先摘掉它原来的正向映射
	if prevUser, ok := r.byHandle[h]; ok && prevUser != userId {
		if r.byUser[prevUser] == h {
			delete(r.byUser, prevUser)
		}
	}

	if old, ok := r.byUser[userId]; ok && old != h {
		delete(r.byHandle, old)
		superseded = old
	}
	r.byUser[userId] = h
	r.byHandle[h] = userId
	return superseded
}

// Lookup 查询用户当前连接
func (r *Registry) Lookup(userId string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byUser[userId]
	return h, ok
}

// Deregister 按连接注销，O(1)，可重复调用
// 已被顶替的连接不会影响该用户的新连接
func (r *Registry) Deregister(h Handle) (userId string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userId, ok = r.byHandle[h]
	if !ok {
		return "", false
	}
	delete(r.byHandle, h)
	if r.byUser[userId] == h {
		delete(r.byUser, userId)
	}
	return userId, true
}

// IsOnline 用户是否在线
func (r *Registry) IsOnline(userId string) bool {
	_, ok := r.Lookup(userId)
	return ok
}

// Count 在线用户数
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
