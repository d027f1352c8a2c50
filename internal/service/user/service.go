package user

import (
	"context"
	"regexp"
	"time"

	"go.uber.org/zap"

	"friend_chat_server/internal/dao/mysql/repository"
	myredis "friend_chat_server/internal/dao/redis"
	"friend_chat_server/internal/dto/request"
	"friend_chat_server/internal/dto/respond"
	"friend_chat_server/internal/model"
	"friend_chat_server/pkg/constants"
	"friend_chat_server/pkg/errorx"
	"friend_chat_server/pkg/util/jwt"
	"friend_chat_server/pkg/util/snowflake"
)

var telephonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// RelationQuery 搜索结果需要的好友关系查询，由 relationship 服务实现
type RelationQuery interface {
	IsFriend(ctx context.Context, a, b string) (bool, error)
	HasPending(ctx context.Context, a, b string) (bool, error)
}

// userInfoService 用户业务逻辑实现
type userInfoService struct {
	repos     *repository.Repositories
	cache     myredis.CacheService
	relations RelationQuery
}

// NewUserService cache 可为 nil，此时不记录 Refresh Token ID
func NewUserService(repos *repository.Repositories, cache myredis.CacheService, relations RelationQuery) *userInfoService {
	return &userInfoService{repos: repos, cache: cache, relations: relations}
}

// Register 手机号 + 密码注册
func (u *userInfoService) Register(ctx context.Context, req request.RegisterRequest) (*respond.UserInfoRespond, error) {
	if !telephonePattern.MatchString(req.Telephone) {
		return nil, errorx.New(errorx.CodeInvalidParam, "手机号格式不正确")
	}
	if _, err := u.repos.User.FindByTelephone(ctx, req.Telephone); err == nil {
		return nil, errorx.New(errorx.CodeUserExist, "该手机号已注册")
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	user := &model.UserInfo{
		Uuid:        snowflake.NewUserId(),
		Nickname:    req.Nickname,
		Telephone:   req.Telephone,
		Email:       req.Email,
		RawPassword: req.Password,
	}
	if err := u.repos.User.Create(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, errorx.New(errorx.CodeUserExist, "该手机号已注册")
		}
		zap.L().Error("create user", zap.String("telephone", req.Telephone), zap.Error(err))
		return nil, err
	}

	zap.L().Info("user registered", zap.String("user_id", user.Uuid))
	rsp := respond.NewUserInfoRespond(user)
	return &rsp, nil
}

// Login 密码登录，签发双 Token
// Refresh Token ID 写入 user_token:<uid>，新登录会使旧的 Refresh Token 失效
func (u *userInfoService) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := u.repos.User.FindByTelephone(ctx, req.Telephone)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在，请注册")
		}
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "密码不正确，请重试")
	}

	accessToken, err := jwt.GenerateAccessToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成 Refresh Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	if u.cache != nil {
		key := constants.USER_TOKEN_KEY_PREFIX + user.Uuid
		if err := u.cache.Set(ctx, key, tokenID, time.Duration(constants.REFRESH_TOKEN_EXPIRY_HOURS)*time.Hour); err != nil {
			// 不阻塞登录流程
			zap.L().Error("存储 Token ID 失败", zap.String("user_id", user.Uuid), zap.Error(err))
		}
	}

	return &respond.LoginRespond{
		UserInfoRespond: respond.NewUserInfoRespond(user),
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
	}, nil
}

// GetUserInfo 查询用户公开信息
func (u *userInfoService) GetUserInfo(ctx context.Context, userId string) (*respond.UserInfoRespond, error) {
	user, err := u.repos.User.FindByUuid(ctx, userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return nil, err
	}
	rsp := respond.NewUserInfoRespond(user)
	return &rsp, nil
}

// SearchByTelephone 按手机号精确查找，附带与搜索者的好友/申请状态
func (u *userInfoService) SearchByTelephone(ctx context.Context, searcherId, telephone string) (*respond.SearchUserRespond, error) {
	user, err := u.repos.User.FindByTelephone(ctx, telephone)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "未找到该用户")
		}
		return nil, err
	}

	rsp := &respond.SearchUserRespond{UserInfoRespond: respond.NewUserInfoRespond(user)}
	if user.Uuid == searcherId {
		return rsp, nil
	}
	if rsp.IsFriend, err = u.relations.IsFriend(ctx, searcherId, user.Uuid); err != nil {
		return nil, err
	}
	if rsp.HasSentRequest, err = u.relations.HasPending(ctx, searcherId, user.Uuid); err != nil {
		return nil, err
	}
	if rsp.HasReceivedRequest, err = u.relations.HasPending(ctx, user.Uuid, searcherId); err != nil {
		return nil, err
	}
	return rsp, nil
}
