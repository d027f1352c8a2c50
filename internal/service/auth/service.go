// Package auth 提供认证相关的业务逻辑
// 处理 Refresh Token 校验与 Access Token 刷新
package auth

import (
	"context"

	"go.uber.org/zap"

	myredis "friend_chat_server/internal/dao/redis"
	"friend_chat_server/internal/dto/respond"
	"friend_chat_server/pkg/constants"
	"friend_chat_server/pkg/errorx"
	"friend_chat_server/pkg/util/jwt"
)

var errInvalidRefreshToken = errorx.New(errorx.CodeUnauthorized, "Refresh Token 无效或已过期，请重新登录")

// Service 认证服务实现
type Service struct {
	cache myredis.CacheService // 为 nil 时不校验单点登录
}

// NewAuthService 创建认证服务实例
func NewAuthService(cache myredis.CacheService) *Service {
	return &Service{
		cache: cache,
	}
}

// ValidateTokenID 验证用户的 Token ID 是否为最近一次登录签发的
func (s *Service) ValidateTokenID(ctx context.Context, userID, tokenID string) (bool, error) {
	if s.cache == nil {
		return true, nil
	}
	validTokenID, err := s.cache.Get(ctx, constants.USER_TOKEN_KEY_PREFIX+userID)
	if err != nil {
		return false, err
	}
	if validTokenID == "" {
		return false, nil
	}
	return tokenID == validTokenID, nil
}

// RefreshToken 用 Refresh Token 换取新的 Access Token
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*respond.RefreshTokenRespond, error) {
	claims, err := jwt.ParseToken(refreshToken)
	if err != nil || claims.Subject != jwt.SubjectRefreshToken {
		return nil, errInvalidRefreshToken
	}

	ok, err := s.ValidateTokenID(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		zap.L().Error("校验 Token ID 失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, errorx.New(errorx.CodeUnauthorized, "账号已在其他地方登录，请重新登录")
	}

	accessToken, err := jwt.GenerateAccessToken(claims.UserID)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.RefreshTokenRespond{AccessToken: accessToken}, nil
}
