// Package handler 提供 HTTP 请求处理器
// 本文件处理用户相关的 API 请求
package handler

import (
	"friend_chat_server/internal/dto/request"
	"friend_chat_server/internal/service"
	"friend_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户请求处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// Register 用户注册
// POST /user/register
// 请求体: request.RegisterRequest
// 响应: respond.UserInfoRespond
func (h *UserHandler) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.Register(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Login 密码登录
// POST /user/login
// 响应: respond.LoginRespond (用户信息 + 双 Token)
func (h *UserHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.Login(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Info 查询用户信息，不传 user_id 时返回自己
// GET /user/info?user_id=xxx
func (h *UserHandler) Info(c *gin.Context) {
	userId := c.Query("user_id")
	if userId == "" {
		userId = currentUserId(c)
	}
	data, err := h.userSvc.GetUserInfo(c.Request.Context(), userId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Search 按手机号查找用户
// GET /user/search?telephone=xxx
// 响应: respond.SearchUserRespond (含好友/申请状态)
func (h *UserHandler) Search(c *gin.Context) {
	telephone := c.Query("telephone")
	if telephone == "" {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "telephone 不能为空"))
		return
	}
	data, err := h.userSvc.SearchByTelephone(c.Request.Context(), currentUserId(c), telephone)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
