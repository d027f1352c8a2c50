// Package chattest 提供记录推送的 Pusher，供 service 层测试使用
package chattest

import (
	"context"
	"sync"

	"friend_chat_server/internal/service/chat"
)

// Push 一次成功投递
type Push struct {
	UserId string
	Event  chat.Event
}

// RecordingPusher 只有 SetOnline 过的用户才会收到推送
type RecordingPusher struct {
	mu     sync.Mutex
	online map[string]bool
	pushes []Push
}

func NewRecordingPusher(online ...string) *RecordingPusher {
	p := &RecordingPusher{online: make(map[string]bool)}
	for _, id := range online {
		p.online[id] = true
	}
	return p
}

func (p *RecordingPusher) SetOnline(userId string, online bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userId] = online
}

func (p *RecordingPusher) IsOnline(userId string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[userId]
}

func (p *RecordingPusher) PushToUser(_ context.Context, userId string, event chat.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.online[userId] {
		return false
	}
	p.pushes = append(p.pushes, Push{UserId: userId, Event: event})
	return true
}

// PushesTo 某个用户收到的推送
func (p *RecordingPusher) PushesTo(userId string) []Push {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Push
	for _, push := range p.pushes {
		if push.UserId == userId {
			out = append(out, push)
		}
	}
	return out
}

// Total 全部推送次数
func (p *RecordingPusher) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushes)
}

var _ chat.Pusher = (*RecordingPusher)(nil)
