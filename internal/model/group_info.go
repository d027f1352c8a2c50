package model

import (
	"gorm.io/gorm"
)

type GroupInfo struct {
	gorm.Model
	Uuid        string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:群组唯一id"`
	Name        string `gorm:"column:name;type:varchar(50);not null;comment:群名称"`
	Description string `gorm:"column:description;type:varchar(500);comment:群简介"`
	CreatorId   string `gorm:"column:creator_id;type:char(20);not null;comment:创建者uuid"`
	IsActive    bool   `gorm:"column:is_active;not null;default:true"`
}

func (GroupInfo) TableName() string {
	return "group_info"
}

// GroupMessage 群聊消息，创建后不可修改
type GroupMessage struct {
	gorm.Model
	Uuid      string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:消息id"`
	GroupUuid string `gorm:"column:group_uuid;type:char(20);not null;index:idx_group_created,priority:1;comment:群组ID"`
	SendId    string `gorm:"column:send_id;type:char(20);not null;comment:发送者"`
	Type      string `gorm:"column:type;type:varchar(10);not null;default:text"`
	Content   string `gorm:"column:content;type:TEXT"`
}

func (GroupMessage) TableName() string {
	return "group_message"
}
