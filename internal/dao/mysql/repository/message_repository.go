package repository

import (
	"context"
	"time"

	"friend_chat_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建私聊消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// conversation 限定 a、b 两人之间的消息
func (r *messageRepository) conversation(ctx context.Context, a, b string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("(send_id = ? AND receive_id = ?) OR (send_id = ? AND receive_id = ?)", a, b, b, a)
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return wrapDBError(err, "保存消息")
	}
	return nil
}

func (r *messageRepository) FindByUuid(ctx context.Context, uuid string) (*model.Message, error) {
	var msg model.Message
	if err := r.db.WithContext(ctx).First(&msg, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 uuid=%s", uuid)
	}
	return &msg, nil
}

// FindConversation 按 created_at, id 倒序分页
func (r *messageRepository) FindConversation(ctx context.Context, a, b string, offset, limit int) ([]model.Message, error) {
	var msgs []model.Message
	if err := r.conversation(ctx, a, b).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询会话消息 %s<->%s", a, b)
	}
	return msgs, nil
}

func (r *messageRepository) CountConversation(ctx context.Context, a, b string) (int64, error) {
	var count int64
	if err := r.conversation(ctx, a, b).Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计会话消息 %s<->%s", a, b)
	}
	return count, nil
}

func (r *messageRepository) FindLatestBetween(ctx context.Context, a, b string) (*model.Message, error) {
	var msg model.Message
	if err := r.conversation(ctx, a, b).Order("created_at DESC, id DESC").First(&msg).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询最新消息 %s<->%s", a, b)
	}
	return &msg, nil
}

func (r *messageRepository) CountUnreadBySender(ctx context.Context, receiverId string) (map[string]int64, error) {
	var rows []struct {
		SendId string
		Cnt    int64
	}
	if err := r.db.WithContext(ctx).Model(&model.Message{}).
		Select("send_id, COUNT(*) AS cnt").
		Where("receive_id = ? AND is_read = ?", receiverId, false).
		Group("send_id").
		Scan(&rows).Error; err != nil {
		return nil, wrapDBErrorf(err, "统计未读消息 receive_id=%s", receiverId)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SendId] = row.Cnt
	}
	return counts, nil
}

// MarkRead 只更新 is_read = false 的行，保证每条消息只被置为已读一次
func (r *messageRepository) MarkRead(ctx context.Context, senderId, receiverId string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("send_id = ? AND receive_id = ? AND is_read = ?", senderId, receiverId, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	if res.Error != nil {
		return 0, wrapDBErrorf(res.Error, "标记已读 %s->%s", senderId, receiverId)
	}
	return res.RowsAffected, nil
}

func (r *messageRepository) DeleteByUuid(ctx context.Context, uuid string) error {
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).Delete(&model.Message{}).Error; err != nil {
		return wrapDBErrorf(err, "删除消息 uuid=%s", uuid)
	}
	return nil
}
