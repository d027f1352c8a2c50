package request

import "friend_chat_server/pkg/constants"

// SendMessageRequest 发送私聊消息
// HTTP 接口与 ws send_message 指令共用
type SendMessageRequest struct {
	RecipientId string `json:"recipient_id" binding:"required"`
	Content     string `json:"content" binding:"required,max=4000"`
	MessageType string `json:"message_type" binding:"omitempty,oneof=text image file"`
}

// MarkReadRequest ws mark_read 指令
type MarkReadRequest struct {
	UserId string `json:"user_id" binding:"required"`
}

// PageRequest 分页参数，page 从 1 开始
type PageRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1,max=100000"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// Normalize 填充默认值并限制单页条数，返回 offset 与 limit
func (p PageRequest) Normalize() (page, limit, offset int) {
	page, limit = p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if page > constants.MAX_PAGE_NUMBER {
		page = constants.MAX_PAGE_NUMBER
	}
	if limit < 1 {
		limit = constants.DEFAULT_PAGE_SIZE
	}
	if limit > constants.MAX_PAGE_SIZE {
		limit = constants.MAX_PAGE_SIZE
	}
	return page, limit, (page - 1) * limit
}
