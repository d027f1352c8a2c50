package model

import "time"

// 群角色
const (
	GroupRoleMember int8 = 1
	GroupRoleAdmin  int8 = 2
)

// GroupMember 群成员关联表
// 按 user_uuid 反查所在群，(group_uuid, user_uuid) 唯一
type GroupMember struct {
	Id        uint      `gorm:"primaryKey"`
	GroupUuid string    `gorm:"type:char(20);not null;uniqueIndex:uk_group_user,priority:1;comment:群组ID"`
	UserUuid  string    `gorm:"type:char(20);not null;uniqueIndex:uk_group_user,priority:2;index;comment:用户ID"`
	Role      int8      `gorm:"default:1;comment:1普通成员 2管理员"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (GroupMember) TableName() string {
	return "group_member"
}

func (m GroupMember) IsAdmin() bool {
	return m.Role == GroupRoleAdmin
}
