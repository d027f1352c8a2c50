// Package message 私聊消息投递
// 先鉴权，再落库，最后尽力推送；推送结果不影响已落库的消息
package message

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"friend_chat_server/internal/dao/mysql/repository"
	"friend_chat_server/internal/dto/request"
	"friend_chat_server/internal/dto/respond"
	"friend_chat_server/internal/model"
	"friend_chat_server/internal/service/chat"
	"friend_chat_server/pkg/constants"
	"friend_chat_server/pkg/errorx"
	"friend_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// FriendChecker 好友关系查询，由 relationship 服务实现
type FriendChecker interface {
	IsFriend(ctx context.Context, a, b string) (bool, error)
}

type messageService struct {
	repos   *repository.Repositories
	friends FriendChecker
	pusher  chat.Pusher
}

func NewMessageService(repos *repository.Repositories, friends FriendChecker, pusher chat.Pusher) *messageService {
	return &messageService{repos: repos, friends: friends, pusher: pusher}
}

// ValidateContent 校验消息内容与类型，返回规范化后的类型
func ValidateContent(content, messageType string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}
	if utf8.RuneCountInString(content) > constants.MAX_CONTENT_LENGTH {
		return "", errorx.Newf(errorx.CodeInvalidParam, "消息内容不能超过%d个字符", constants.MAX_CONTENT_LENGTH)
	}
	if !model.ValidMessageType(messageType) {
		return "", errorx.New(errorx.CodeInvalidParam, "不支持的消息类型")
	}
	if messageType == "" {
		messageType = model.MessageTypeText
	}
	return messageType, nil
}

// Send 发送私聊消息
// 返回落库后的消息，发送方客户端用它做本地回显
func (s *messageService) Send(ctx context.Context, senderId string, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	messageType, err := ValidateContent(req.Content, req.MessageType)
	if err != nil {
		return nil, err
	}
	if err := s.ensureFriends(ctx, senderId, req.RecipientId); err != nil {
		return nil, err
	}

	msg := &model.Message{
		Uuid:      snowflake.NewMessageId(),
		SendId:    senderId,
		ReceiveId: req.RecipientId,
		Type:      messageType,
		Content:   req.Content,
	}
	if err := s.repos.Message.Create(ctx, msg); err != nil {
		zap.L().Error("save message", zap.String("sender", senderId), zap.String("recipient", req.RecipientId), zap.Error(err))
		return nil, err
	}

	rsp := respond.NewMessageRespond(msg)
	s.pusher.PushToUser(ctx, req.RecipientId, chat.NewEvent(chat.EventMessageDelivered, rsp))
	return &rsp, nil
}

// GetConversation 读取与 withUser 的会话并把对方发来的未读消息置为已读
// 按时间倒序取第 page 页，页内升序返回；返回的是置已读之前的状态
func (s *messageService) GetConversation(ctx context.Context, readerId, withUserId string, page request.PageRequest) (*respond.ConversationRespond, error) {
	if err := s.ensureFriends(ctx, readerId, withUserId); err != nil {
		return nil, err
	}
	pageNo, limit, offset := page.Normalize()

	total, err := s.repos.Message.CountConversation(ctx, readerId, withUserId)
	if err != nil {
		return nil, err
	}
	msgs, err := s.repos.Message.FindConversation(ctx, readerId, withUserId, offset, limit)
	if err != nil {
		return nil, err
	}

	rsp := &respond.ConversationRespond{
		Messages: make([]respond.MessageRespond, len(msgs)),
		Page:     pageNo,
		Limit:    limit,
		Total:    total,
		HasMore:  int64(offset+len(msgs)) < total,
	}
	for i := range msgs {
		rsp.Messages[len(msgs)-1-i] = respond.NewMessageRespond(&msgs[i])
	}

	if _, err := s.repos.Message.MarkRead(ctx, withUserId, readerId, time.Now()); err != nil {
		zap.L().Error("mark conversation read", zap.String("reader", readerId), zap.String("with", withUserId), zap.Error(err))
	}
	return rsp, nil
}

// MarkRead counterpart 发给 reader 的未读消息全部置为已读
func (s *messageService) MarkRead(ctx context.Context, readerId, counterpartId string) (*respond.MarkReadRespond, error) {
	n, err := s.repos.Message.MarkRead(ctx, counterpartId, readerId, time.Now())
	if err != nil {
		return nil, err
	}
	return &respond.MarkReadRespond{UserId: counterpartId, Count: n}, nil
}

// ListConversations 与每个好友的最后一条消息及未读数，按最后消息时间倒序
// 没有消息往来的好友不出现
func (s *messageService) ListConversations(ctx context.Context, userId string) ([]respond.ConversationSummaryRespond, error) {
	friendIds, err := s.repos.Friendship.FindMutualFriendIds(ctx, userId)
	if err != nil {
		return nil, err
	}
	if len(friendIds) == 0 {
		return []respond.ConversationSummaryRespond{}, nil
	}
	unread, err := s.repos.Message.CountUnreadBySender(ctx, userId)
	if err != nil {
		return nil, err
	}
	users, err := s.repos.User.FindByUuids(ctx, friendIds)
	if err != nil {
		return nil, err
	}

	out := make([]respond.ConversationSummaryRespond, 0, len(users))
	lastAt := make(map[string]time.Time, len(users))
	for _, u := range users {
		last, err := s.repos.Message.FindLatestBetween(ctx, userId, u.Uuid)
		if err != nil {
			if errorx.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		lastAt[u.Uuid] = last.CreatedAt
		out = append(out, respond.ConversationSummaryRespond{
			Friend: respond.FriendRespond{
				UserId:    u.Uuid,
				Nickname:  u.Nickname,
				Avatar:    u.Avatar,
				Signature: u.Signature,
				IsOnline:  s.pusher.IsOnline(u.Uuid),
			},
			LastMessage: respond.NewMessageRespond(last),
			UnreadCount: unread[u.Uuid],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lastAt[out[i].Friend.UserId].After(lastAt[out[j].Friend.UserId])
	})
	return out, nil
}

// DeleteMessage 只能删除自己发送的消息
func (s *messageService) DeleteMessage(ctx context.Context, userId, messageId string) error {
	msg, err := s.repos.Message.FindByUuid(ctx, messageId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return errorx.New(errorx.CodeNotFound, "消息不存在")
		}
		return err
	}
	if msg.SendId != userId {
		return errorx.ErrForbidden
	}
	return s.repos.Message.DeleteByUuid(ctx, messageId)
}

func (s *messageService) ensureFriends(ctx context.Context, a, b string) error {
	ok, err := s.friends.IsFriend(ctx, a, b)
	if err != nil {
		return err
	}
	if !ok {
		return errorx.ErrNotFriends
	}
	return nil
}
