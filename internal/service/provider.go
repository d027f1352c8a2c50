// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"friend_chat_server/internal/dao/mysql/repository"
	myredis "friend_chat_server/internal/dao/redis"
	"friend_chat_server/internal/infrastructure/mq"
	"friend_chat_server/internal/service/auth"
	"friend_chat_server/internal/service/chat"
	"friend_chat_server/internal/service/group"
	"friend_chat_server/internal/service/message"
	"friend_chat_server/internal/service/relationship"
	"friend_chat_server/internal/service/user"
)

// Services 聚合所有 Service 实例
type Services struct {
	User         UserService
	Auth         AuthService
	Relationship RelationshipService
	Message      MessageService
	Group        GroupService
}

// Deps Service 层的外部依赖
// Cache 为 nil 表示未启用 Redis；Pusher 通常是 *chat.ChatServer
type Deps struct {
	Repos     *repository.Repositories
	Cache     myredis.AsyncCacheService
	Pusher    chat.Pusher
	Publisher mq.Publisher
}

// NewServices 创建并注入所有 Service 实例
// relationship 同时作为 message 的好友校验与 user 的关系查询
func NewServices(deps Deps) *Services {
	var cache myredis.CacheService
	if deps.Cache != nil {
		cache = deps.Cache
	}

	relationSvc := relationship.NewRelationshipService(deps.Repos, deps.Cache, deps.Pusher, deps.Publisher)
	return &Services{
		User:         user.NewUserService(deps.Repos, cache, relationSvc),
		Auth:         auth.NewAuthService(cache),
		Relationship: relationSvc,
		Message:      message.NewMessageService(deps.Repos, relationSvc, deps.Pusher),
		Group:        group.NewGroupService(deps.Repos, deps.Pusher),
	}
}
