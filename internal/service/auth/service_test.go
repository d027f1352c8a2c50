package auth

import (
	"context"
	"testing"

	"friend_chat_server/internal/dao/redis/redistest"
	"friend_chat_server/pkg/constants"
	"friend_chat_server/pkg/errorx"
	"friend_chat_server/pkg/util/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshToken(t *testing.T) {
	jwt.Init("auth-test-secret", 15, 24)
	ctx := context.Background()
	cache := redistest.New()
	svc := NewAuthService(cache)

	refresh, tokenID, err := jwt.GenerateRefreshToken("UA")
	require.NoError(t, err)

	// 未登录（没有记录 Token ID）
	_, err = svc.RefreshToken(ctx, refresh)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))

	require.NoError(t, cache.Set(ctx, constants.USER_TOKEN_KEY_PREFIX+"UA", tokenID, 0))
	rsp, err := svc.RefreshToken(ctx, refresh)
	require.NoError(t, err)
	claims, err := jwt.ParseToken(rsp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "UA", claims.UserID)
	assert.Equal(t, jwt.SubjectAccessToken, claims.Subject)

	// 再次登录后旧 Refresh Token 失效
	require.NoError(t, cache.Set(ctx, constants.USER_TOKEN_KEY_PREFIX+"UA", "newer", 0))
	_, err = svc.RefreshToken(ctx, refresh)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	jwt.Init("auth-test-secret", 15, 24)
	access, err := jwt.GenerateAccessToken("UA")
	require.NoError(t, err)

	_, err = NewAuthService(nil).RefreshToken(context.Background(), access)
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
	_, err = NewAuthService(nil).RefreshToken(context.Background(), "garbage")
	assert.Equal(t, errorx.CodeUnauthorized, errorx.GetCode(err))
}
