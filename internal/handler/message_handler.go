// Package handler 提供 HTTP 请求处理器
// 本文件处理私聊消息
package handler

import (
	"friend_chat_server/internal/dto/request"
	"friend_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 私聊消息请求处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// Send 发送私聊消息，对方在线时实时推送
// POST /message/send
// 请求体: request.SendMessageRequest
// 响应: respond.MessageRespond
func (h *MessageHandler) Send(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.Send(c.Request.Context(), currentUserId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Conversation 与某个好友的聊天记录，按时间升序
// GET /message/conversation/:user_id?page=1&limit=50
func (h *MessageHandler) Conversation(c *gin.Context) {
	var page request.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.GetConversation(c.Request.Context(), currentUserId(c), c.Param("user_id"), page)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Conversations 会话列表
// GET /message/conversations
func (h *MessageHandler) Conversations(c *gin.Context) {
	data, err := h.messageSvc.ListConversations(c.Request.Context(), currentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MarkRead 将对方发来的消息全部置为已读
// POST /message/read/:user_id
func (h *MessageHandler) MarkRead(c *gin.Context) {
	data, err := h.messageSvc.MarkRead(c.Request.Context(), currentUserId(c), c.Param("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Delete 删除自己发送的消息
// DELETE /message/:message_id
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.messageSvc.DeleteMessage(c.Request.Context(), currentUserId(c), c.Param("message_id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
