// Package repository 提供数据访问层的具体实现
// 本文件实现 GroupMemberRepository 与 GroupMessageRepository
package repository

import (
	"context"

	"friend_chat_server/internal/model"

	"gorm.io/gorm"
)

// groupMemberRepository GroupMemberRepository 接口的实现
type groupMemberRepository struct {
	db *gorm.DB // GORM 数据库实例
}

// NewGroupMemberRepository 创建 GroupMemberRepository 实例
func NewGroupMemberRepository(db *gorm.DB) GroupMemberRepository {
	return &groupMemberRepository{db: db}
}

// FindByGroupUuid 根据群组UUID查找所有成员，按入群先后排序
func (r *groupMemberRepository) FindByGroupUuid(ctx context.Context, groupUuid string) ([]model.GroupMember, error) {
	var members []model.GroupMember
	if err := r.db.WithContext(ctx).Where("group_uuid = ?", groupUuid).Order("id").Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员 group_uuid=%s", groupUuid)
	}
	return members, nil
}

// FindByGroupAndUser 根据群组和用户查找成员关系
// 用于检查用户是否已在群中
func (r *groupMemberRepository) FindByGroupAndUser(ctx context.Context, groupUuid, userUuid string) (*model.GroupMember, error) {
	var member model.GroupMember
	if err := r.db.WithContext(ctx).Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return &member, nil
}

// FindGroupUuidsByUser 查询用户加入的所有群组 ID
// Pluck: 只获取指定字段的值
func (r *groupMemberRepository) FindGroupUuidsByUser(ctx context.Context, userUuid string) ([]string, error) {
	var uuids []string
	if err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("user_uuid = ?", userUuid).
		Pluck("group_uuid", &uuids).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户所在群 user_uuid=%s", userUuid)
	}
	return uuids, nil
}

// Create 添加群成员
func (r *groupMemberRepository) Create(ctx context.Context, member *model.GroupMember) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return wrapDBErrorf(err, "创建群成员 group_uuid=%s user_uuid=%s", member.GroupUuid, member.UserUuid)
	}
	return nil
}

// Delete 删除单个群成员，返回删除行数
func (r *groupMemberRepository) Delete(ctx context.Context, groupUuid, userUuid string) (int64, error) {
	res := r.db.WithContext(ctx).Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).Delete(&model.GroupMember{})
	if res.Error != nil {
		return 0, wrapDBErrorf(res.Error, "删除群成员 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return res.RowsAffected, nil
}

// CountByGroup 群成员数，退出后据此判断是否解散
func (r *groupMemberRepository) CountByGroup(ctx context.Context, groupUuid string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.GroupMember{}).Where("group_uuid = ?", groupUuid).Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计群成员 group_uuid=%s", groupUuid)
	}
	return count, nil
}

func (r *groupMemberRepository) UpdateRole(ctx context.Context, groupUuid, userUuid string, role int8) error {
	if err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_uuid = ? AND user_uuid = ?", groupUuid, userUuid).
		Update("role", role).Error; err != nil {
		return wrapDBErrorf(err, "更新群成员角色 group_uuid=%s user_uuid=%s", groupUuid, userUuid)
	}
	return nil
}

// groupMessageRepository GroupMessageRepository 接口的实现
type groupMessageRepository struct {
	db *gorm.DB
}

// NewGroupMessageRepository 创建 GroupMessageRepository 实例
func NewGroupMessageRepository(db *gorm.DB) GroupMessageRepository {
	return &groupMessageRepository{db: db}
}

func (r *groupMessageRepository) Create(ctx context.Context, msg *model.GroupMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return wrapDBError(err, "保存群消息")
	}
	return nil
}

func (r *groupMessageRepository) FindByGroupUuid(ctx context.Context, groupUuid string, offset, limit int) ([]model.GroupMessage, error) {
	var msgs []model.GroupMessage
	if err := r.db.WithContext(ctx).Where("group_uuid = ?", groupUuid).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询群消息 group_uuid=%s", groupUuid)
	}
	return msgs, nil
}

func (r *groupMessageRepository) CountByGroupUuid(ctx context.Context, groupUuid string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.GroupMessage{}).Where("group_uuid = ?", groupUuid).Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计群消息 group_uuid=%s", groupUuid)
	}
	return count, nil
}

// DeleteByGroupUuid 随群组一起物理删除
func (r *groupMessageRepository) DeleteByGroupUuid(ctx context.Context, groupUuid string) error {
	if err := r.db.WithContext(ctx).Unscoped().Where("group_uuid = ?", groupUuid).Delete(&model.GroupMessage{}).Error; err != nil {
		return wrapDBErrorf(err, "删除群消息 group_uuid=%s", groupUuid)
	}
	return nil
}
