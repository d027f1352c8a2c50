package repository

import (
	"context"

	"friend_chat_server/internal/model"

	"gorm.io/gorm"
)

// friendRequestRepository FriendRequestRepository 的 gorm 实现
type friendRequestRepository struct {
	db *gorm.DB
}

// NewFriendRequestRepository 创建好友申请 Repository
func NewFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &friendRequestRepository{db: db}
}

func (r *friendRequestRepository) Find(ctx context.Context, requesterId, targetId string) (*model.FriendRequest, error) {
	var req model.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ?", requesterId, targetId).
		First(&req).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询好友申请 %s->%s", requesterId, targetId)
	}
	return &req, nil
}

func (r *friendRequestRepository) FindIncoming(ctx context.Context, targetId string) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	if err := r.db.WithContext(ctx).Where("target_id = ?", targetId).Order("id").Find(&reqs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询收到的好友申请 target_id=%s", targetId)
	}
	return reqs, nil
}

func (r *friendRequestRepository) FindOutgoing(ctx context.Context, requesterId string) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	if err := r.db.WithContext(ctx).Where("requester_id = ?", requesterId).Order("id").Find(&reqs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询发出的好友申请 requester_id=%s", requesterId)
	}
	return reqs, nil
}

// FindShadowed 查找双方已互为好友但未清理的申请
func (r *friendRequestRepository) FindShadowed(ctx context.Context, limit int) ([]model.FriendRequest, error) {
	var reqs []model.FriendRequest
	err := r.db.WithContext(ctx).
		Table("friend_request AS r").
		Select("r.*").
		Joins("JOIN friendship f1 ON f1.user_id = r.requester_id AND f1.friend_id = r.target_id").
		Joins("JOIN friendship f2 ON f2.user_id = r.target_id AND f2.friend_id = r.requester_id").
		Limit(limit).
		Scan(&reqs).Error
	if err != nil {
		return nil, wrapDBError(err, "查询残留好友申请")
	}
	return reqs, nil
}

func (r *friendRequestRepository) Create(ctx context.Context, req *model.FriendRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return wrapDBErrorf(err, "创建好友申请 %s->%s", req.RequesterId, req.TargetId)
	}
	return nil
}

func (r *friendRequestRepository) Delete(ctx context.Context, requesterId, targetId string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ?", requesterId, targetId).
		Delete(&model.FriendRequest{})
	if res.Error != nil {
		return 0, wrapDBErrorf(res.Error, "删除好友申请 %s->%s", requesterId, targetId)
	}
	return res.RowsAffected, nil
}

// friendshipRepository FriendshipRepository 的 gorm 实现
type friendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository 创建好友边 Repository
func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

func (r *friendshipRepository) Create(ctx context.Context, userId, friendId string) error {
	edge := &model.Friendship{UserId: userId, FriendId: friendId}
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		return wrapDBErrorf(err, "创建好友边 %s->%s", userId, friendId)
	}
	return nil
}

func (r *friendshipRepository) Exists(ctx context.Context, userId, friendId string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userId, friendId).
		Count(&count).Error; err != nil {
		return false, wrapDBErrorf(err, "查询好友边 %s->%s", userId, friendId)
	}
	return count > 0, nil
}

func (r *friendshipRepository) FindMutualFriendIds(ctx context.Context, userId string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("friendship AS f1").
		Joins("JOIN friendship f2 ON f2.user_id = f1.friend_id AND f2.friend_id = f1.user_id").
		Where("f1.user_id = ?", userId).
		Order("f1.id").
		Pluck("f1.friend_id", &ids).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询好友列表 user_id=%s", userId)
	}
	return ids, nil
}

func (r *friendshipRepository) FindOneSided(ctx context.Context, limit int) ([]model.Friendship, error) {
	var edges []model.Friendship
	err := r.db.WithContext(ctx).
		Table("friendship AS f1").
		Select("f1.*").
		Joins("LEFT JOIN friendship f2 ON f2.user_id = f1.friend_id AND f2.friend_id = f1.user_id").
		Where("f2.id IS NULL").
		Limit(limit).
		Scan(&edges).Error
	if err != nil {
		return nil, wrapDBError(err, "查询单向好友边")
	}
	return edges, nil
}
