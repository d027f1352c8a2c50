package respond

import (
	"friend_chat_server/internal/model"
	"friend_chat_server/pkg/constants"
)

// FriendRespond 好友列表项
type FriendRespond struct {
	UserId    string `json:"user_id"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	Signature string `json:"signature"`
	IsOnline  bool   `json:"is_online"`
}

// FriendRequestRespond 待处理的好友申请，UserId 为对方
type FriendRequestRespond struct {
	UserId    string `json:"user_id"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	CreatedAt string `json:"created_at"`
}

func NewFriendRequestRespond(u *model.UserInfo, req model.FriendRequest) FriendRequestRespond {
	return FriendRequestRespond{
		UserId:    u.Uuid,
		Nickname:  u.Nickname,
		Avatar:    u.Avatar,
		CreatedAt: req.CreatedAt.Format(constants.TIME_FORMAT),
	}
}

// FriendListRespond 好友、收到的申请、发出的申请
type FriendListRespond struct {
	Friends  []FriendRespond        `json:"friends"`
	Incoming []FriendRequestRespond `json:"incoming"`
	Outgoing []FriendRequestRespond `json:"outgoing"`
}
