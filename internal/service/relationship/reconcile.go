package relationship

import (
	"context"
	"time"

	"friend_chat_server/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

// ReconcileResult 一轮修复的结果
type ReconcileResult struct {
	EdgesRepaired   int `json:"edges_repaired"`
	RequestsCleared int `json:"requests_cleared"`
}

// Reconcile 修复 Accept 半写入留下的不一致
//   - 只有单向边的好友关系：补齐反向边（通过申请时先写 acceptor 一侧，单边即意味着已同意）
//   - 双方已是好友但申请仍残留：删除申请
func (s *relationshipService) Reconcile(ctx context.Context, batchSize int) (ReconcileResult, error) {
	var result ReconcileResult
	if batchSize <= 0 {
		batchSize = 100
	}

	edges, err := s.repos.Friendship.FindOneSided(ctx, batchSize)
	if err != nil {
		return result, err
	}
	for _, e := range edges {
		if err := s.createEdge(ctx, e.FriendId, e.UserId); err != nil {
			zap.L().Error("repair reverse edge", zap.String("user", e.UserId), zap.String("friend", e.FriendId), zap.Error(err))
			continue
		}
		s.invalidate(ctx, e.UserId, e.FriendId)
		result.EdgesRepaired++
	}

	// 补边之后再查残留申请，同一轮即可清理
	requests, err := s.repos.FriendRequest.FindShadowed(ctx, batchSize)
	if err != nil {
		return result, err
	}
	for _, req := range requests {
		n, err := s.repos.FriendRequest.Delete(ctx, req.RequesterId, req.TargetId)
		if err != nil {
			zap.L().Error("clear shadowed request", zap.String("requester", req.RequesterId), zap.String("target", req.TargetId), zap.Error(err))
			continue
		}
		result.RequestsCleared += int(n)
	}

	metrics.AddFriendshipRepairs("edge", result.EdgesRepaired)
	metrics.AddFriendshipRepairs("request", result.RequestsCleared)
	if result.EdgesRepaired > 0 || result.RequestsCleared > 0 {
		zap.L().Info("friendship reconciled", zap.Int("edges", result.EdgesRepaired), zap.Int("requests", result.RequestsCleared))
	}
	return result, nil
}

// RunReconciler 按固定间隔执行 Reconcile，阻塞直到 ctx 取消
func (s *relationshipService) RunReconciler(ctx context.Context, interval time.Duration, batchSize int) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Reconcile(ctx, batchSize); err != nil && ctx.Err() == nil {
				zap.L().Error("friendship reconcile failed", zap.Error(err))
			}
		}
	}
}
