// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"friend_chat_server/internal/service"
	"friend_chat_server/internal/service/chat"
)

// Handlers 聚合所有 Handler 实例，Router 层通过此结构访问各个 Handler
type Handlers struct {
	User    *UserHandler
	Auth    *AuthHandler
	Friend  *FriendHandler
	Message *MessageHandler
	Group   *GroupHandler
	Ws      *WsHandler
	Health  *HealthHandler
}

// NewHandlers 创建并注入所有 Handler 实例
// 同时把 ws 上行指令的处理器注入 ChatServer
func NewHandlers(svc *service.Services, chatServer *chat.ChatServer, pinger Pinger) *Handlers {
	chatServer.SetIntentHandler(NewIntentDispatcher(svc.Message, svc.Group))
	return &Handlers{
		User:    NewUserHandler(svc.User),
		Auth:    NewAuthHandler(svc.Auth),
		Friend:  NewFriendHandler(svc.Relationship),
		Message: NewMessageHandler(svc.Message),
		Group:   NewGroupHandler(svc.Group),
		Ws:      NewWsHandler(chatServer),
		Health:  NewHealthHandler(pinger, chatServer.Registry()),
	}
}
