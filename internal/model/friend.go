package model

import "time"

// FriendRequest 待处理的好友申请
// 一行同时代表目标方的 pendingIncoming 与申请方的 pendingOutgoing，
// 通过或拒绝后直接物理删除
type FriendRequest struct {
	Id          uint      `gorm:"primaryKey"`
	RequesterId string    `gorm:"column:requester_id;type:char(20);not null;uniqueIndex:uk_requester_target,priority:1;comment:申请人"`
	TargetId    string    `gorm:"column:target_id;type:char(20);not null;uniqueIndex:uk_requester_target,priority:2;index;comment:被申请人"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
}

func (FriendRequest) TableName() string {
	return "friend_request"
}

// Friendship 单向好友边，一段好友关系由两条边组成
type Friendship struct {
	Id        uint      `gorm:"primaryKey"`
	UserId    string    `gorm:"column:user_id;type:char(20);not null;uniqueIndex:uk_user_friend,priority:1;comment:用户"`
	FriendId  string    `gorm:"column:friend_id;type:char(20);not null;uniqueIndex:uk_user_friend,priority:2;index;comment:好友"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Friendship) TableName() string {
	return "friendship"
}
