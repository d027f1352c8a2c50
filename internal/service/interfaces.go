// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
package service

import (
	"context"
	"time"

	"friend_chat_server/internal/dto/request"
	"friend_chat_server/internal/dto/respond"
	"friend_chat_server/internal/service/relationship"
)

// UserService 用户注册、登录与查询
type UserService interface {
	Register(ctx context.Context, req request.RegisterRequest) (*respond.UserInfoRespond, error)
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
	GetUserInfo(ctx context.Context, userId string) (*respond.UserInfoRespond, error)
	// SearchByTelephone 附带与搜索者的好友/申请状态
	SearchByTelephone(ctx context.Context, searcherId, telephone string) (*respond.SearchUserRespond, error)
}

// AuthService Token 刷新
type AuthService interface {
	RefreshToken(ctx context.Context, refreshToken string) (*respond.RefreshTokenRespond, error)
}

// RelationshipService 好友申请状态机
type RelationshipService interface {
	// SendRequest InvalidTarget / AlreadyFriends / DuplicateRequest / ReciprocalPending
	SendRequest(ctx context.Context, requesterId, targetId string) error
	// Accept 半写入时返回 CodeIntegrityError
	Accept(ctx context.Context, acceptorId, requesterId string) error
	Reject(ctx context.Context, rejectorId, requesterId string) error
	IsFriend(ctx context.Context, a, b string) (bool, error)
	HasPending(ctx context.Context, a, b string) (bool, error)
	ListFriends(ctx context.Context, userId string) (*respond.FriendListRespond, error)
	Reconcile(ctx context.Context, batchSize int) (relationship.ReconcileResult, error)
	RunReconciler(ctx context.Context, interval time.Duration, batchSize int)
}

// MessageService 私聊消息
type MessageService interface {
	Send(ctx context.Context, senderId string, req request.SendMessageRequest) (*respond.MessageRespond, error)
	// GetConversation 读取后把对方发来的未读消息置为已读
	GetConversation(ctx context.Context, readerId, withUserId string, page request.PageRequest) (*respond.ConversationRespond, error)
	MarkRead(ctx context.Context, readerId, counterpartId string) (*respond.MarkReadRespond, error)
	ListConversations(ctx context.Context, userId string) ([]respond.ConversationSummaryRespond, error)
	DeleteMessage(ctx context.Context, userId, messageId string) error
}

// GroupService 群组与群消息
type GroupService interface {
	CreateGroup(ctx context.Context, creatorId string, req request.CreateGroupRequest) (*respond.GroupDetailRespond, error)
	ListMyGroups(ctx context.Context, userId string) ([]respond.GroupRespond, error)
	GetGroup(ctx context.Context, userId, groupId string) (*respond.GroupDetailRespond, error)
	AddMember(ctx context.Context, operatorId, groupId, userId string) error
	RemoveMember(ctx context.Context, operatorId, groupId, userId string) error
	Leave(ctx context.Context, userId, groupId string) (*respond.LeaveGroupRespond, error)
	SendGroupMessage(ctx context.Context, senderId, groupId string, req request.SendGroupMessageRequest) (*respond.GroupMessageRespond, error)
	GetGroupMessages(ctx context.Context, userId, groupId string, page request.PageRequest) (*respond.GroupMessagesRespond, error)
}
