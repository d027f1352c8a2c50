// Package relationship 好友申请状态机与对称好友关系
//
// 存储模型：
//   - friend_request 一行表示一条待处理申请，通过/拒绝后物理删除
//   - friendship 为单向边，好友关系 = 两条方向相反的边同时存在
//
// 通过申请需要写两条边并删除申请，三步不在同一事务中完成，
// 第一步之后的失败视为完整性错误，由 Reconcile 补齐。
package relationship

import (
	"context"
	"time"

	"friend_chat_server/internal/dao/mysql/repository"
	myredis "friend_chat_server/internal/dao/redis"
	"friend_chat_server/internal/dto/respond"
	"friend_chat_server/internal/infrastructure/metrics"
	"friend_chat_server/internal/infrastructure/mq"
	"friend_chat_server/internal/model"
	"friend_chat_server/internal/service/chat"
	"friend_chat_server/pkg/constants"
	"friend_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// 半写入阶段，用于日志、指标与修复事件
const (
	StageReverseEdge   = "reverse_edge"
	StageDeleteRequest = "delete_request"
)

type relationshipService struct {
	repos      *repository.Repositories
	cache      myredis.AsyncCacheService
	pusher     chat.Pusher
	publisher  mq.Publisher
	cacheTTL   time.Duration
	versionTTL time.Duration // 需比好友集合活得久
}

// NewRelationshipService cache 可为 nil，表示不使用缓存
func NewRelationshipService(repos *repository.Repositories, cache myredis.AsyncCacheService, pusher chat.Pusher, publisher mq.Publisher) *relationshipService {
	return &relationshipService{
		repos:      repos,
		cache:      cache,
		pusher:     pusher,
		publisher:  publisher,
		cacheTTL:   time.Minute * constants.REDIS_TIMEOUT,
		versionTTL: 2 * time.Minute * constants.REDIS_TIMEOUT,
	}
}

// SendRequest requester 向 target 发起好友申请
func (s *relationshipService) SendRequest(ctx context.Context, requesterId, targetId string) error {
	if requesterId == targetId {
		return errorx.ErrInvalidTarget
	}
	if _, err := s.repos.User.FindByUuid(ctx, targetId); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return err
	}

	// 任意一条边存在都视为已是好友，单边由修复任务补齐
	for _, pair := range [][2]string{{requesterId, targetId}, {targetId, requesterId}} {
		exists, err := s.repos.Friendship.Exists(ctx, pair[0], pair[1])
		if err != nil {
			return err
		}
		if exists {
			return errorx.ErrAlreadyFriends
		}
	}

	pending, err := s.HasPending(ctx, requesterId, targetId)
	if err != nil {
		return err
	}
	if pending {
		return errorx.ErrDuplicateRequest
	}
	reciprocal, err := s.HasPending(ctx, targetId, requesterId)
	if err != nil {
		return err
	}
	if reciprocal {
		return errorx.ErrReciprocalPending
	}

	err = s.repos.FriendRequest.Create(ctx, &model.FriendRequest{RequesterId: requesterId, TargetId: targetId})
	if err != nil {
		// 并发重复提交
		if repository.IsDuplicateKey(err) {
			return errorx.ErrDuplicateRequest
		}
		return err
	}

	// 插入前的检查没有加锁，双向同时申请时两条都能写入
	// 写入后再查一次反向申请，看到则撤回自己这条
	reciprocal, err = s.HasPending(ctx, targetId, requesterId)
	if err != nil {
		return err
	}
	if reciprocal {
		if _, err := s.repos.FriendRequest.Delete(ctx, requesterId, targetId); err != nil {
			return err
		}
		zap.L().Info("friend request withdrawn, reciprocal pending", zap.String("requester", requesterId), zap.String("target", targetId))
		return errorx.ErrReciprocalPending
	}
	zap.L().Info("friend request sent", zap.String("requester", requesterId), zap.String("target", targetId))
	return nil
}

// Accept acceptor 通过 requester 的申请
// 写入顺序：acceptor->requester 边，requester->acceptor 边，删除申请
func (s *relationshipService) Accept(ctx context.Context, acceptorId, requesterId string) error {
	if _, err := s.repos.FriendRequest.Find(ctx, requesterId, acceptorId); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.ErrRequestNotFound
		}
		return err
	}

	// 第一条边失败时没有任何持久化变化，按普通错误返回
	if err := s.createEdge(ctx, acceptorId, requesterId); err != nil {
		return err
	}
	if err := s.createEdge(ctx, requesterId, acceptorId); err != nil {
		return s.integrityError(ctx, StageReverseEdge, acceptorId, requesterId, err)
	}
	if _, err := s.repos.FriendRequest.Delete(ctx, requesterId, acceptorId); err != nil {
		s.invalidate(ctx, acceptorId, requesterId)
		return s.integrityError(ctx, StageDeleteRequest, acceptorId, requesterId, err)
	}

	s.invalidate(ctx, acceptorId, requesterId)
	zap.L().Info("friend request accepted", zap.String("acceptor", acceptorId), zap.String("requester", requesterId))
	return nil
}

// Reject rejector 拒绝 requester 的申请，不建立好友边
func (s *relationshipService) Reject(ctx context.Context, rejectorId, requesterId string) error {
	n, err := s.repos.FriendRequest.Delete(ctx, requesterId, rejectorId)
	if err != nil {
		return err
	}
	if n == 0 {
		return errorx.ErrRequestNotFound
	}
	zap.L().Info("friend request rejected", zap.String("rejector", rejectorId), zap.String("requester", requesterId))
	return nil
}

// IsFriend a、b 互为好友（两条边都存在）
// 先查 friend_ids:<a> 缓存，未命中回源并异步回填
func (s *relationshipService) IsFriend(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return false, nil
	}
	key := constants.FRIEND_IDS_KEY_PREFIX + a
	fill := false
	var version string
	if s.cache != nil {
		isMember, exists, err := s.cache.IsSetMember(ctx, key, b)
		if err == nil && exists {
			return isMember, nil
		}
		if err != nil {
			zap.L().Warn("friend cache lookup failed", zap.String("key", key), zap.Error(err))
		} else if version, err = s.cache.Get(ctx, constants.FRIEND_VER_KEY_PREFIX+a); err == nil {
			// 版本号必须在回源之前读取
			fill = true
		}
	}

	ids, err := s.repos.Friendship.FindMutualFriendIds(ctx, a)
	if err != nil {
		return false, err
	}
	if fill {
		s.fillCache(a, version, ids)
	}

	for _, id := range ids {
		if id == b {
			return true, nil
		}
	}
	return false, nil
}

// HasPending 是否存在 a -> b 的待处理申请
func (s *relationshipService) HasPending(ctx context.Context, a, b string) (bool, error) {
	_, err := s.repos.FriendRequest.Find(ctx, a, b)
	if err == nil {
		return true, nil
	}
	if errorx.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// ListFriends 好友（按成为好友的先后）、收到的申请、发出的申请
func (s *relationshipService) ListFriends(ctx context.Context, userId string) (*respond.FriendListRespond, error) {
	ids, err := s.repos.Friendship.FindMutualFriendIds(ctx, userId)
	if err != nil {
		return nil, err
	}
	incoming, err := s.repos.FriendRequest.FindIncoming(ctx, userId)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.repos.FriendRequest.FindOutgoing(ctx, userId)
	if err != nil {
		return nil, err
	}

	lookup := make([]string, 0, len(ids)+len(incoming)+len(outgoing))
	lookup = append(lookup, ids...)
	for _, req := range incoming {
		lookup = append(lookup, req.RequesterId)
	}
	for _, req := range outgoing {
		lookup = append(lookup, req.TargetId)
	}
	users, err := s.usersById(ctx, lookup)
	if err != nil {
		return nil, err
	}

	rsp := &respond.FriendListRespond{
		Friends:  make([]respond.FriendRespond, 0, len(ids)),
		Incoming: make([]respond.FriendRequestRespond, 0, len(incoming)),
		Outgoing: make([]respond.FriendRequestRespond, 0, len(outgoing)),
	}
	for _, id := range ids {
		u, ok := users[id]
		if !ok {
			continue
		}
		rsp.Friends = append(rsp.Friends, respond.FriendRespond{
			UserId:    u.Uuid,
			Nickname:  u.Nickname,
			Avatar:    u.Avatar,
			Signature: u.Signature,
			IsOnline:  s.pusher.IsOnline(u.Uuid),
		})
	}
	for _, req := range incoming {
		if u, ok := users[req.RequesterId]; ok {
			rsp.Incoming = append(rsp.Incoming, respond.NewFriendRequestRespond(u, req))
		}
	}
	for _, req := range outgoing {
		if u, ok := users[req.TargetId]; ok {
			rsp.Outgoing = append(rsp.Outgoing, respond.NewFriendRequestRespond(u, req))
		}
	}
	return rsp, nil
}

func (s *relationshipService) usersById(ctx context.Context, ids []string) (map[string]*model.UserInfo, error) {
	out := make(map[string]*model.UserInfo, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := s.repos.User.FindByUuids(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].Uuid] = &users[i]
	}
	return out, nil
}

// createEdge 边已存在视为成功，保证重试幂等
func (s *relationshipService) createEdge(ctx context.Context, userId, friendId string) error {
	err := s.repos.Friendship.Create(ctx, userId, friendId)
	if err != nil && !repository.IsDuplicateKey(err) {
		return err
	}
	return nil
}

// integrityError 记录半写入并发布修复事件，返回独立错误码
func (s *relationshipService) integrityError(ctx context.Context, stage, acceptorId, requesterId string, cause error) error {
	zap.L().Error("friendship partially written",
		zap.Bool("integrity", true),
		zap.String("stage", stage),
		zap.String("acceptor", acceptorId),
		zap.String("requester", requesterId),
		zap.Error(cause))
	metrics.IncFriendshipIntegrityError(stage)

	event := mq.IntegrityEvent{
		Stage:       stage,
		AcceptorId:  acceptorId,
		RequesterId: requesterId,
		Error:       cause.Error(),
		OccurredAt:  time.Now(),
	}
	if err := s.publisher.Publish(ctx, mq.RoutingKeyFriendshipIntegrity, event); err != nil {
		zap.L().Error("publish integrity event", zap.String("stage", stage), zap.Error(err))
	}
	return errorx.Wrap(cause, errorx.CodeIntegrityError, "好友关系未完整建立，系统将自动修复")
}

// invalidate 先递增版本号再删除双方的好友 ID 缓存
// 排队中的回填若读到旧版本会被丢弃
func (s *relationshipService) invalidate(ctx context.Context, userIds ...string) {
	if s.cache == nil || len(userIds) == 0 {
		return
	}
	keys := make([]string, 0, len(userIds))
	for _, id := range userIds {
		if _, err := s.cache.Incr(ctx, constants.FRIEND_VER_KEY_PREFIX+id, s.versionTTL); err != nil {
			zap.L().Warn("bump friend cache version", zap.String("user_id", id), zap.Error(err))
		}
		keys = append(keys, constants.FRIEND_IDS_KEY_PREFIX+id)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		zap.L().Warn("invalidate friend cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

// fillCache 异步回填，version 为回源前读到的版本号
func (s *relationshipService) fillCache(userId, version string, ids []string) {
	key := constants.FRIEND_IDS_KEY_PREFIX + userId
	versionKey := constants.FRIEND_VER_KEY_PREFIX + userId
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		applied, err := s.cache.ReplaceSetIfVersion(ctx, key, versionKey, version, s.cacheTTL, ids...)
		if err != nil {
			zap.L().Warn("fill friend cache", zap.String("key", key), zap.Error(err))
			return
		}
		if !applied {
			zap.L().Debug("friend cache changed during fill, skipped", zap.String("key", key))
		}
	})
}
