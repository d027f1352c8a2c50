package repository

import (
	"context"
	"time"

	"friend_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建群组 Repository
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) FindByUuid(ctx context.Context, uuid string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	if err := r.db.WithContext(ctx).First(&group, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群组 uuid=%s", uuid)
	}
	return &group, nil
}

func (r *groupRepository) FindByUuidForUpdate(ctx context.Context, uuid string) (*model.GroupInfo, error) {
	var group model.GroupInfo
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&group, "uuid = ?", uuid).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "锁定群组 uuid=%s", uuid)
	}
	return &group, nil
}

func (r *groupRepository) FindByUuids(ctx context.Context, uuids []string) ([]model.GroupInfo, error) {
	var groups []model.GroupInfo
	if len(uuids) == 0 {
		return groups, nil
	}
	if err := r.db.WithContext(ctx).Where("uuid IN ?", uuids).Order("updated_at DESC").Find(&groups).Error; err != nil {
		return nil, wrapDBError(err, "批量查询群组")
	}
	return groups, nil
}

func (r *groupRepository) Create(ctx context.Context, group *model.GroupInfo) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return wrapDBError(err, "创建群组")
	}
	return nil
}

func (r *groupRepository) Touch(ctx context.Context, uuid string) error {
	if err := r.db.WithContext(ctx).Model(&model.GroupInfo{}).
		Where("uuid = ?", uuid).
		Update("updated_at", time.Now()).Error; err != nil {
		return wrapDBErrorf(err, "更新群组时间 uuid=%s", uuid)
	}
	return nil
}

// Delete 空群不保留，直接物理删除
func (r *groupRepository) Delete(ctx context.Context, uuid string) error {
	if err := r.db.WithContext(ctx).Unscoped().Where("uuid = ?", uuid).Delete(&model.GroupInfo{}).Error; err != nil {
		return wrapDBErrorf(err, "删除群组 uuid=%s", uuid)
	}
	return nil
}
