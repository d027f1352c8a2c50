package middleware

import (
	"net/http"
	"strings"

	"friend_chat_server/pkg/errorx"
	"friend_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// ContextUserID 认证通过后存入 gin.Context 的用户 ID 键
const ContextUserID = "user_id"

// JWTAuth JWT 认证中间件
// 验证 Access Token 并将用户 ID 存入上下文
func JWTAuth() gin.HandlerFunc {
	return auth(false)
}

// JWTAuthWS WebSocket 握手用的认证中间件
// 浏览器无法给 ws 握手带自定义 Header，允许通过 ?token= 传递
func JWTAuthWS() gin.HandlerFunc {
	return auth(true)
}

func auth(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok && allowQuery {
			token = c.Query("token")
			ok = token != ""
		}
		if !ok {
			abortUnauthorized(c, "请先登录")
			return
		}

		claims, err := jwt.ParseToken(token)
		if err != nil {
			abortUnauthorized(c, "Token 已过期或无效，请重新登录")
			return
		}
		if claims.Subject != jwt.SubjectAccessToken {
			abortUnauthorized(c, "请使用 Access Token 访问此接口")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// bearerToken 解析 "Bearer <token>"
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code": errorx.CodeUnauthorized,
		"msg":  msg,
	})
}
