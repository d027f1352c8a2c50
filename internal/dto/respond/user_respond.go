package respond

import (
	"friend_chat_server/internal/model"
	"friend_chat_server/pkg/constants"
)

// UserInfoRespond 用户公开信息
type UserInfoRespond struct {
	UserId    string `json:"user_id"`
	Nickname  string `json:"nickname"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
	Avatar    string `json:"avatar"`
	Signature string `json:"signature"`
	CreatedAt string `json:"created_at"`
}

func NewUserInfoRespond(u *model.UserInfo) UserInfoRespond {
	return UserInfoRespond{
		UserId:    u.Uuid,
		Nickname:  u.Nickname,
		Telephone: u.Telephone,
		Email:     u.Email,
		Avatar:    u.Avatar,
		Signature: u.Signature,
		CreatedAt: u.CreatedAt.Format(constants.TIME_FORMAT),
	}
}

// LoginRespond 登录成功返回用户信息与双 Token
type LoginRespond struct {
	UserInfoRespond
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRespond 刷新得到的新 Access Token
type RefreshTokenRespond struct {
	AccessToken string `json:"access_token"`
}

// SearchUserRespond 按手机号搜索用户，附带与搜索者的关系
type SearchUserRespond struct {
	UserInfoRespond
	IsFriend           bool `json:"is_friend"`
	HasSentRequest     bool `json:"has_sent_request"`
	HasReceivedRequest bool `json:"has_received_request"`
}
