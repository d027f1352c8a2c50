// Package handler 提供 HTTP 请求处理器
// 本文件处理好友申请与好友列表
package handler

import (
	"friend_chat_server/internal/dto/request"
	"friend_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// FriendHandler 好友关系请求处理器
type FriendHandler struct {
	relationSvc service.RelationshipService
}

// NewFriendHandler 创建好友处理器实例
func NewFriendHandler(relationSvc service.RelationshipService) *FriendHandler {
	return &FriendHandler{relationSvc: relationSvc}
}

// Apply 发送好友申请
// POST /friend/apply
// 请求体: request.ApplyFriendRequest
func (h *FriendHandler) Apply(c *gin.Context) {
	var req request.ApplyFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.relationSvc.SendRequest(c.Request.Context(), currentUserId(c), req.TargetId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Accept 通过好友申请
// POST /friend/accept
// 请求体: request.HandleFriendRequest
func (h *FriendHandler) Accept(c *gin.Context) {
	var req request.HandleFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.relationSvc.Accept(c.Request.Context(), currentUserId(c), req.RequesterId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Reject 拒绝好友申请
// POST /friend/reject
func (h *FriendHandler) Reject(c *gin.Context) {
	var req request.HandleFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.relationSvc.Reject(c.Request.Context(), currentUserId(c), req.RequesterId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// List 好友列表 + 收到/发出的待处理申请
// GET /friend/list
func (h *FriendHandler) List(c *gin.Context) {
	data, err := h.relationSvc.ListFriends(c.Request.Context(), currentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
