package request

// ApplyFriendRequest 发送好友申请
type ApplyFriendRequest struct {
	TargetId string `json:"target_id" binding:"required"`
}

// HandleFriendRequest 通过/拒绝好友申请
type HandleFriendRequest struct {
	RequesterId string `json:"requester_id" binding:"required"`
}
