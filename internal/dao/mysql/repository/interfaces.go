// Package repository 定义数据访问层接口和聚合结构
// 所有 Repository 接口在此文件定义，gorm 实现在各自的文件中
package repository

import (
	"context"
	"sync"
	"time"

	"friend_chat_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	FindByUuid(ctx context.Context, uuid string) (*model.UserInfo, error)
	FindByTelephone(ctx context.Context, telephone string) (*model.UserInfo, error)
	// FindByUuids 批量查找，结果顺序不保证
	FindByUuids(ctx context.Context, uuids []string) ([]model.UserInfo, error)
	Create(ctx context.Context, user *model.UserInfo) error
}

// FriendRequestRepository 好友申请数据访问接口
// 每对 (requester, target) 最多一条待处理申请
type FriendRequestRepository interface {
	Find(ctx context.Context, requesterId, targetId string) (*model.FriendRequest, error)
	// FindIncoming 发给 targetId 的申请，按申请时间升序
	FindIncoming(ctx context.Context, targetId string) ([]model.FriendRequest, error)
	// FindOutgoing requesterId 发出的申请，按申请时间升序
	FindOutgoing(ctx context.Context, requesterId string) ([]model.FriendRequest, error)
	// FindShadowed 双方已存在好友边但仍残留的申请
	FindShadowed(ctx context.Context, limit int) ([]model.FriendRequest, error)
	// Create 重复申请返回 CodeDuplicateKey
	Create(ctx context.Context, req *model.FriendRequest) error
	// Delete 返回实际删除的行数
	Delete(ctx context.Context, requesterId, targetId string) (int64, error)
}

// FriendshipRepository 好友边数据访问接口
type FriendshipRepository interface {
	// Create 新增 userId -> friendId 单向边，已存在时返回 CodeDuplicateKey
	Create(ctx context.Context, userId, friendId string) error
	Exists(ctx context.Context, userId, friendId string) (bool, error)
	// FindMutualFriendIds 双向边都存在的好友，按建立顺序
	FindMutualFriendIds(ctx context.Context, userId string) ([]string, error)
	// FindOneSided 缺少反向边的好友边
	FindOneSided(ctx context.Context, limit int) ([]model.Friendship, error)
}

// MessageRepository 私聊消息数据访问接口
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	FindByUuid(ctx context.Context, uuid string) (*model.Message, error)
	// FindConversation a、b 之间的消息，按创建时间倒序分页
	FindConversation(ctx context.Context, a, b string, offset, limit int) ([]model.Message, error)
	CountConversation(ctx context.Context, a, b string) (int64, error)
	// FindLatestBetween 无消息时返回 CodeNotFound
	FindLatestBetween(ctx context.Context, a, b string) (*model.Message, error)
	// CountUnreadBySender 发给 receiverId 的未读数，按发送者分组
	CountUnreadBySender(ctx context.Context, receiverId string) (map[string]int64, error)
	// MarkRead senderId 发给 receiverId 的未读消息批量置为已读
	MarkRead(ctx context.Context, senderId, receiverId string, at time.Time) (int64, error)
	DeleteByUuid(ctx context.Context, uuid string) error
}

// GroupRepository 群组数据访问接口
type GroupRepository interface {
	FindByUuid(ctx context.Context, uuid string) (*model.GroupInfo, error)
	// FindByUuidForUpdate SELECT ... FOR UPDATE，需在事务中调用
	// 成员变更先锁群组行，同一个群的退出、加人、踢人串行执行
	FindByUuidForUpdate(ctx context.Context, uuid string) (*model.GroupInfo, error)
	// FindByUuids 按 updated_at 倒序
	FindByUuids(ctx context.Context, uuids []string) ([]model.GroupInfo, error)
	Create(ctx context.Context, group *model.GroupInfo) error
	// Touch 刷新 updated_at
	Touch(ctx context.Context, uuid string) error
	// Delete 物理删除群组
	Delete(ctx context.Context, uuid string) error
}

// GroupMemberRepository 群成员数据访问接口
type GroupMemberRepository interface {
	// FindByGroupUuid 按入群先后排序
	FindByGroupUuid(ctx context.Context, groupUuid string) ([]model.GroupMember, error)
	FindByGroupAndUser(ctx context.Context, groupUuid, userUuid string) (*model.GroupMember, error)
	FindGroupUuidsByUser(ctx context.Context, userUuid string) ([]string, error)
	// Create 已是成员时返回 CodeDuplicateKey
	Create(ctx context.Context, member *model.GroupMember) error
	Delete(ctx context.Context, groupUuid, userUuid string) (int64, error)
	CountByGroup(ctx context.Context, groupUuid string) (int64, error)
	UpdateRole(ctx context.Context, groupUuid, userUuid string, role int8) error
}

// GroupMessageRepository 群消息数据访问接口
type GroupMessageRepository interface {
	Create(ctx context.Context, msg *model.GroupMessage) error
	// FindByGroupUuid 按创建时间倒序分页
	FindByGroupUuid(ctx context.Context, groupUuid string, offset, limit int) ([]model.GroupMessage, error)
	CountByGroupUuid(ctx context.Context, groupUuid string) (int64, error)
	DeleteByGroupUuid(ctx context.Context, groupUuid string) error
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例，Service 层通过此结构访问数据层
// db 为空时（内存实现）Transaction 之间串行执行
type Repositories struct {
	db            *gorm.DB
	memTx         sync.Mutex
	User          UserRepository
	FriendRequest FriendRequestRepository
	Friendship    FriendshipRepository
	Message       MessageRepository
	Group         GroupRepository
	GroupMember   GroupMemberRepository
	GroupMessage  GroupMessageRepository
}

// NewRepositories 创建所有 gorm Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		User:          NewUserRepository(db),
		FriendRequest: NewFriendRequestRepository(db),
		Friendship:    NewFriendshipRepository(db),
		Message:       NewMessageRepository(db),
		Group:         NewGroupRepository(db),
		GroupMember:   NewGroupMemberRepository(db),
		GroupMessage:  NewGroupMessageRepository(db),
	}
}

// Transaction 在数据库事务中执行 fn，fn 返回错误时整体回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	if r.db == nil {
		r.memTx.Lock()
		defer r.memTx.Unlock()
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// Ping 检查数据库连通性，供健康检查使用
func (r *Repositories) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return wrapDBError(err, "获取数据库连接")
	}
	return wrapDBError(sqlDB.PingContext(ctx), "数据库 ping")
}
