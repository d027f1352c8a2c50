package request

// CreateGroupRequest 创建群组，MemberIds 为初始成员（不含创建者）
type CreateGroupRequest struct {
	Name        string   `json:"name" binding:"required,max=50"`
	Description string   `json:"description" binding:"max=500"`
	MemberIds   []string `json:"member_ids"`
}

// GroupMemberRequest 添加/移除群成员
type GroupMemberRequest struct {
	UserId string `json:"user_id" binding:"required"`
}

// SendGroupMessageRequest 发送群消息
// ws send_group_message 指令额外携带 group_id
type SendGroupMessageRequest struct {
	GroupId     string `json:"group_id"`
	Content     string `json:"content" binding:"required,max=4000"`
	MessageType string `json:"message_type" binding:"omitempty,oneof=text image file"`
}
