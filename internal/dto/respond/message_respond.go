package respond

import (
	"friend_chat_server/internal/model"
	"friend_chat_server/pkg/constants"
)

// MessageRespond 私聊消息
// 同时作为 message_delivered / message_sent 事件的负载
type MessageRespond struct {
	MessageId   string `json:"message_id"`
	SenderId    string `json:"sender_id"`
	RecipientId string `json:"recipient_id"`
	MessageType string `json:"message_type"`
	Content     string `json:"content"`
	IsRead      bool   `json:"is_read"`
	ReadAt      string `json:"read_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func NewMessageRespond(m *model.Message) MessageRespond {
	rsp := MessageRespond{
		MessageId:   m.Uuid,
		SenderId:    m.SendId,
		RecipientId: m.ReceiveId,
		MessageType: m.Type,
		Content:     m.Content,
		IsRead:      m.IsRead,
		CreatedAt:   m.CreatedAt.Format(constants.TIME_FORMAT),
	}
	if m.ReadAt.Valid {
		rsp.ReadAt = m.ReadAt.Time.Format(constants.TIME_FORMAT)
	}
	return rsp
}

// ConversationRespond 一页会话消息，按时间升序
type ConversationRespond struct {
	Messages []MessageRespond `json:"messages"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Total    int64            `json:"total"`
	HasMore  bool             `json:"has_more"`
}

// ConversationSummaryRespond 会话概览：好友、最后一条消息、未读数
type ConversationSummaryRespond struct {
	Friend      FriendRespond  `json:"friend"`
	LastMessage MessageRespond `json:"last_message"`
	UnreadCount int64          `json:"unread_count"`
}

// MarkReadRespond 本次置为已读的条数
type MarkReadRespond struct {
	UserId string `json:"user_id"`
	Count  int64  `json:"count"`
}
