package respond

import (
	"friend_chat_server/internal/model"
	"friend_chat_server/pkg/constants"
)

// GroupRespond 群组基本信息
type GroupRespond struct {
	GroupId     string `json:"group_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatorId   string `json:"creator_id"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func NewGroupRespond(g *model.GroupInfo) GroupRespond {
	return GroupRespond{
		GroupId:     g.Uuid,
		Name:        g.Name,
		Description: g.Description,
		CreatorId:   g.CreatorId,
		IsActive:    g.IsActive,
		CreatedAt:   g.CreatedAt.Format(constants.TIME_FORMAT),
		UpdatedAt:   g.UpdatedAt.Format(constants.TIME_FORMAT),
	}
}

// GroupMemberRespond 群成员
type GroupMemberRespond struct {
	UserId   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Role     string `json:"role"` // admin / member
	JoinedAt string `json:"joined_at"`
}

// GroupDetailRespond 群详情，成员按入群先后排序
type GroupDetailRespond struct {
	GroupRespond
	Members []GroupMemberRespond `json:"members"`
}

// GroupMessageRespond 群消息，同时作为 group_message_delivered 事件的负载
type GroupMessageRespond struct {
	MessageId   string `json:"message_id"`
	GroupId     string `json:"group_id"`
	SenderId    string `json:"sender_id"`
	MessageType string `json:"message_type"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
}

func NewGroupMessageRespond(m *model.GroupMessage) GroupMessageRespond {
	return GroupMessageRespond{
		MessageId:   m.Uuid,
		GroupId:     m.GroupUuid,
		SenderId:    m.SendId,
		MessageType: m.Type,
		Content:     m.Content,
		CreatedAt:   m.CreatedAt.Format(constants.TIME_FORMAT),
	}
}

// GroupMessagesRespond 一页群消息，按时间升序
type GroupMessagesRespond struct {
	Messages []GroupMessageRespond `json:"messages"`
	Page     int                   `json:"page"`
	Limit    int                   `json:"limit"`
	Total    int64                 `json:"total"`
	HasMore  bool                  `json:"has_more"`
}

// LeaveGroupRespond GroupDeleted 为 true 表示最后一名成员退出，群已解散
type LeaveGroupRespond struct {
	GroupId      string `json:"group_id"`
	GroupDeleted bool   `json:"group_deleted"`
}
