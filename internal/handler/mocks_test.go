package handler

import (
	"context"
	"time"

	"friend_chat_server/internal/dto/request"
	"friend_chat_server/internal/dto/respond"
	"friend_chat_server/internal/service/relationship"

	"github.com/stretchr/testify/mock"
)

type relationshipServiceMock struct {
	mock.Mock
}

func (m *relationshipServiceMock) SendRequest(ctx context.Context, requesterId, targetId string) error {
	return m.Called(ctx, requesterId, targetId).Error(0)
}

func (m *relationshipServiceMock) Accept(ctx context.Context, acceptorId, requesterId string) error {
	return m.Called(ctx, acceptorId, requesterId).Error(0)
}

func (m *relationshipServiceMock) Reject(ctx context.Context, rejectorId, requesterId string) error {
	return m.Called(ctx, rejectorId, requesterId).Error(0)
}

func (m *relationshipServiceMock) IsFriend(ctx context.Context, a, b string) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func (m *relationshipServiceMock) HasPending(ctx context.Context, a, b string) (bool, error) {
	args := m.Called(ctx, a, b)
	return args.Bool(0), args.Error(1)
}

func (m *relationshipServiceMock) ListFriends(ctx context.Context, userId string) (*respond.FriendListRespond, error) {
	args := m.Called(ctx, userId)
	rsp, _ := args.Get(0).(*respond.FriendListRespond)
	return rsp, args.Error(1)
}

func (m *relationshipServiceMock) Reconcile(ctx context.Context, batchSize int) (relationship.ReconcileResult, error) {
	args := m.Called(ctx, batchSize)
	return args.Get(0).(relationship.ReconcileResult), args.Error(1)
}

func (m *relationshipServiceMock) RunReconciler(ctx context.Context, interval time.Duration, batchSize int) {
	m.Called(ctx, interval, batchSize)
}

type messageServiceMock struct {
	mock.Mock
}

func (m *messageServiceMock) Send(ctx context.Context, senderId string, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	args := m.Called(ctx, senderId, req)
	rsp, _ := args.Get(0).(*respond.MessageRespond)
	return rsp, args.Error(1)
}

func (m *messageServiceMock) GetConversation(ctx context.Context, readerId, withUserId string, page request.PageRequest) (*respond.ConversationRespond, error) {
	args := m.Called(ctx, readerId, withUserId, page)
	rsp, _ := args.Get(0).(*respond.ConversationRespond)
	return rsp, args.Error(1)
}

func (m *messageServiceMock) MarkRead(ctx context.Context, readerId, counterpartId string) (*respond.MarkReadRespond, error) {
	args := m.Called(ctx, readerId, counterpartId)
	rsp, _ := args.Get(0).(*respond.MarkReadRespond)
	return rsp, args.Error(1)
}

func (m *messageServiceMock) ListConversations(ctx context.Context, userId string) ([]respond.ConversationSummaryRespond, error) {
	args := m.Called(ctx, userId)
	rsp, _ := args.Get(0).([]respond.ConversationSummaryRespond)
	return rsp, args.Error(1)
}

func (m *messageServiceMock) DeleteMessage(ctx context.Context, userId, messageId string) error {
	return m.Called(ctx, userId, messageId).Error(0)
}

type groupServiceMock struct {
	mock.Mock
}

func (m *groupServiceMock) CreateGroup(ctx context.Context, creatorId string, req request.CreateGroupRequest) (*respond.GroupDetailRespond, error) {
	args := m.Called(ctx, creatorId, req)
	rsp, _ := args.Get(0).(*respond.GroupDetailRespond)
	return rsp, args.Error(1)
}

func (m *groupServiceMock) ListMyGroups(ctx context.Context, userId string) ([]respond.GroupRespond, error) {
	args := m.Called(ctx, userId)
	rsp, _ := args.Get(0).([]respond.GroupRespond)
	return rsp, args.Error(1)
}

func (m *groupServiceMock) GetGroup(ctx context.Context, userId, groupId string) (*respond.GroupDetailRespond, error) {
	args := m.Called(ctx, userId, groupId)
	rsp, _ := args.Get(0).(*respond.GroupDetailRespond)
	return rsp, args.Error(1)
}

func (m *groupServiceMock) AddMember(ctx context.Context, operatorId, groupId, userId string) error {
	return m.Called(ctx, operatorId, groupId, userId).Error(0)
}

func (m *groupServiceMock) RemoveMember(ctx context.Context, operatorId, groupId, userId string) error {
	return m.Called(ctx, operatorId, groupId, userId).Error(0)
}

func (m *groupServiceMock) Leave(ctx context.Context, userId, groupId string) (*respond.LeaveGroupRespond, error) {
	args := m.Called(ctx, userId, groupId)
	rsp, _ := args.Get(0).(*respond.LeaveGroupRespond)
	return rsp, args.Error(1)
}

func (m *groupServiceMock) SendGroupMessage(ctx context.Context, senderId, groupId string, req request.SendGroupMessageRequest) (*respond.GroupMessageRespond, error) {
	args := m.Called(ctx, senderId, groupId, req)
	rsp, _ := args.Get(0).(*respond.GroupMessageRespond)
	return rsp, args.Error(1)
}

func (m *groupServiceMock) GetGroupMessages(ctx context.Context, userId, groupId string, page request.PageRequest) (*respond.GroupMessagesRespond, error) {
	args := m.Called(ctx, userId, groupId, page)
	rsp, _ := args.Get(0).(*respond.GroupMessagesRespond)
	return rsp, args.Error(1)
}
