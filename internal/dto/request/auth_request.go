package request

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	Nickname  string `json:"nickname" binding:"required,max=20"`
	Telephone string `json:"telephone" binding:"required,len=11,numeric"`
	Email     string `json:"email" binding:"omitempty,email,max=50"`
	Password  string `json:"password" binding:"required,min=6,max=64"`
}

// LoginRequest 密码登录请求
type LoginRequest struct {
	Telephone string `json:"telephone" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Access Token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
