// Package handler 提供 HTTP 请求处理器
// 本文件处理群组与群消息
package handler

import (
	"friend_chat_server/internal/dto/request"
	"friend_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// GroupHandler 群组请求处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建群组处理器实例
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// Create 创建群组，创建者为管理员
// POST /group/create
// 请求体: request.CreateGroupRequest
// 响应: respond.GroupDetailRespond
func (h *GroupHandler) Create(c *gin.Context) {
	var req request.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.CreateGroup(c.Request.Context(), currentUserId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MyGroups 我加入的群
// GET /group/mine
func (h *GroupHandler) MyGroups(c *gin.Context) {
	data, err := h.groupSvc.ListMyGroups(c.Request.Context(), currentUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Get 群详情（含成员），仅成员可见
// GET /group/:group_id
func (h *GroupHandler) Get(c *gin.Context) {
	data, err := h.groupSvc.GetGroup(c.Request.Context(), currentUserId(c), c.Param("group_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// AddMember 管理员拉人
// POST /group/:group_id/members
// 请求体: request.GroupMemberRequest
func (h *GroupHandler) AddMember(c *gin.Context) {
	var req request.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.groupSvc.AddMember(c.Request.Context(), currentUserId(c), c.Param("group_id"), req.UserId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// RemoveMember 管理员移除成员
// DELETE /group/:group_id/members/:user_id
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	if err := h.groupSvc.RemoveMember(c.Request.Context(), currentUserId(c), c.Param("group_id"), c.Param("user_id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Leave 退出群组，最后一人退出时群组被删除
// POST /group/:group_id/leave
func (h *GroupHandler) Leave(c *gin.Context) {
	data, err := h.groupSvc.Leave(c.Request.Context(), currentUserId(c), c.Param("group_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SendMessage 发送群消息
// POST /group/:group_id/messages
// 请求体: request.SendGroupMessageRequest (group_id 取路径参数)
func (h *GroupHandler) SendMessage(c *gin.Context) {
	var req request.SendGroupMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	groupId := c.Param("group_id")
	req.GroupId = groupId
	data, err := h.groupSvc.SendGroupMessage(c.Request.Context(), currentUserId(c), groupId, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Messages 群消息记录，按时间升序
// GET /group/:group_id/messages?page=1&limit=50
func (h *GroupHandler) Messages(c *gin.Context) {
	var page request.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.GetGroupMessages(c.Request.Context(), currentUserId(c), c.Param("group_id"), page)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
