package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// 消息类型
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeFile  = "file"
)

// ValidMessageType 判断消息类型是否合法，空串视为 text
func ValidMessageType(t string) bool {
	switch t {
	case "", MessageTypeText, MessageTypeImage, MessageTypeFile:
		return true
	}
	return false
}

// Message 私聊消息，对应 message 表
// 会话查询走 (send_id, receive_id, created_at) 联合索引
type Message struct {
	gorm.Model

	// Uuid 消息 ID，M + 雪花 ID
	Uuid      string       `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:消息id"`
	SendId    string       `gorm:"column:send_id;type:char(20);not null;index:idx_conversation,priority:1;comment:发送者"`
	ReceiveId string       `gorm:"column:receive_id;type:char(20);not null;index:idx_conversation,priority:2;index:idx_unread,priority:1;comment:接收者"`
	Type      string       `gorm:"column:type;type:varchar(10);not null;default:text;comment:text/image/file"`
	Content   string       `gorm:"column:content;type:TEXT;comment:消息内容"`
	IsRead    bool         `gorm:"column:is_read;not null;default:false;index:idx_unread,priority:2"`
	ReadAt    sql.NullTime `gorm:"column:read_at;comment:已读时间"`
}

func (Message) TableName() string {
	return "message"
}
