// Package repotest 提供 repository 接口的内存实现，供 service 层测试使用
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"friend_chat_server/internal/dao/mysql/repository"
	"friend_chat_server/internal/model"
	"friend_chat_server/pkg/errorx"

	"gorm.io/gorm"
)

// Store 内存数据库，所有表共用一把锁
type Store struct {
	mu  sync.Mutex
	seq uint

	users    map[string]*model.UserInfo
	requests []model.FriendRequest
	edges    []model.Friendship
	messages []model.Message
	groups   map[string]*model.GroupInfo
	members  []model.GroupMember
	groupMsg []model.GroupMessage

	// FailFriendshipCreate 非空时在插入好友边前调用，返回错误即模拟写入失败
	FailFriendshipCreate func(userId, friendId string) error
	// FailRequestDelete 非空时在删除好友申请前调用
	FailRequestDelete func(requesterId, targetId string) error
	// BeforeRequestCreate 非空时在插入好友申请前调用，可用来模拟并发写入
	BeforeRequestCreate func(requesterId, targetId string)
}

// New 创建空的内存 Store
func New() *Store {
	return &Store{
		users:  make(map[string]*model.UserInfo),
		groups: make(map[string]*model.GroupInfo),
	}
}

// Repositories 返回基于内存 Store 的 Repositories 聚合
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:          userRepo{s},
		FriendRequest: requestRepo{s},
		Friendship:    friendshipRepo{s},
		Message:       messageRepo{s},
		Group:         groupRepo{s},
		GroupMember:   memberRepo{s},
		GroupMessage:  groupMessageRepo{s},
	}
}

// AddUser 直接写入用户，测试准备数据用
func (s *Store) AddUser(uuid, nickname, telephone string) *model.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	u := &model.UserInfo{Uuid: uuid, Nickname: nickname, Telephone: telephone}
	u.ID = s.seq
	u.CreatedAt = s.now()
	s.users[uuid] = u
	return u
}

// AddEdge 直接写入单向好友边
func (s *Store) AddEdge(userId, friendId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.edges = append(s.edges, model.Friendship{Id: s.seq, UserId: userId, FriendId: friendId, CreatedAt: s.now()})
}

// AddRequest 直接写入好友申请
func (s *Store) AddRequest(requesterId, targetId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.requests = append(s.requests, model.FriendRequest{Id: s.seq, RequesterId: requesterId, TargetId: targetId, CreatedAt: s.now()})
}

// EdgeCount 好友边总数
func (s *Store) EdgeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.edges)
}

// RequestCount 待处理申请总数
func (s *Store) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// MessageCount 私聊消息总数
func (s *Store) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// now 保证同一 Store 内时间严格递增，排序稳定
func (s *Store) now() time.Time {
	return time.Unix(1_700_000_000, 0).Add(time.Duration(s.seq) * time.Millisecond)
}

func notFound(msg string) error {
	return errorx.Wrap(gorm.ErrRecordNotFound, errorx.CodeNotFound, msg)
}

func duplicate(msg string) error {
	return errorx.Wrap(gorm.ErrDuplicatedKey, errorx.CodeDuplicateKey, msg)
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return append([]T(nil), items[offset:end]...)
}

// ==================== users ====================

type userRepo struct{ s *Store }

func (r userRepo) FindByUuid(_ context.Context, uuid string) (*model.UserInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[uuid]
	if !ok {
		return nil, notFound("查询用户")
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) FindByTelephone(_ context.Context, telephone string) (*model.UserInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Telephone == telephone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("查询用户")
}

func (r userRepo) FindByUuids(_ context.Context, uuids []string) ([]model.UserInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.UserInfo{}
	for _, id := range uuids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r userRepo) Create(_ context.Context, user *model.UserInfo) error {
	if err := user.HashPassword(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.Uuid]; ok {
		return duplicate("创建用户")
	}
	for _, u := range r.s.users {
		if u.Telephone == user.Telephone {
			return duplicate("创建用户")
		}
	}
	r.s.seq++
	user.ID = r.s.seq
	user.CreatedAt = r.s.now()
	cp := *user
	r.s.users[user.Uuid] = &cp
	return nil
}

// ==================== friend requests ====================

type requestRepo struct{ s *Store }

func (r requestRepo) Find(_ context.Context, requesterId, targetId string) (*model.FriendRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, req := range r.s.requests {
		if req.RequesterId == requesterId && req.TargetId == targetId {
			cp := req
			return &cp, nil
		}
	}
	return nil, notFound("查询好友申请")
}

func (r requestRepo) filter(keep func(model.FriendRequest) bool) []model.FriendRequest {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.FriendRequest{}
	for _, req := range r.s.requests {
		if keep(req) {
			out = append(out, req)
		}
	}
	return out
}

func (r requestRepo) FindIncoming(_ context.Context, targetId string) ([]model.FriendRequest, error) {
	return r.filter(func(req model.FriendRequest) bool { return req.TargetId == targetId }), nil
}

func (r requestRepo) FindOutgoing(_ context.Context, requesterId string) ([]model.FriendRequest, error) {
	return r.filter(func(req model.FriendRequest) bool { return req.RequesterId == requesterId }), nil
}

func (r requestRepo) FindShadowed(_ context.Context, limit int) ([]model.FriendRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.FriendRequest{}
	for _, req := range r.s.requests {
		if r.s.hasEdge(req.RequesterId, req.TargetId) && r.s.hasEdge(req.TargetId, req.RequesterId) {
			out = append(out, req)
		}
	}
	return page(out, 0, limit), nil
}

func (r requestRepo) Create(_ context.Context, req *model.FriendRequest) error {
	if hook := r.s.BeforeRequestCreate; hook != nil {
		hook(req.RequesterId, req.TargetId)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.requests {
		if existing.RequesterId == req.RequesterId && existing.TargetId == req.TargetId {
			return duplicate("创建好友申请")
		}
	}
	r.s.seq++
	req.Id = r.s.seq
	req.CreatedAt = r.s.now()
	r.s.requests = append(r.s.requests, *req)
	return nil
}

func (r requestRepo) Delete(_ context.Context, requesterId, targetId string) (int64, error) {
	if hook := r.s.FailRequestDelete; hook != nil {
		if err := hook(requesterId, targetId); err != nil {
			return 0, errorx.Wrap(err, errorx.CodeDBError, "删除好友申请")
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	kept := r.s.requests[:0]
	for _, req := range r.s.requests {
		if req.RequesterId == requesterId && req.TargetId == targetId {
			n++
			continue
		}
		kept = append(kept, req)
	}
	r.s.requests = kept
	return n, nil
}

// ==================== friendship ====================

type friendshipRepo struct{ s *Store }

// hasEdge 调用方需持有锁
func (s *Store) hasEdge(userId, friendId string) bool {
	for _, e := range s.edges {
		if e.UserId == userId && e.FriendId == friendId {
			return true
		}
	}
	return false
}

func (r friendshipRepo) Create(_ context.Context, userId, friendId string) error {
	if hook := r.s.FailFriendshipCreate; hook != nil {
		if err := hook(userId, friendId); err != nil {
			return errorx.Wrap(err, errorx.CodeDBError, "创建好友边")
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.hasEdge(userId, friendId) {
		return duplicate("创建好友边")
	}
	r.s.seq++
	r.s.edges = append(r.s.edges, model.Friendship{Id: r.s.seq, UserId: userId, FriendId: friendId, CreatedAt: r.s.now()})
	return nil
}

func (r friendshipRepo) Exists(_ context.Context, userId, friendId string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.hasEdge(userId, friendId), nil
}

func (r friendshipRepo) FindMutualFriendIds(_ context.Context, userId string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := []string{}
	for _, e := range r.s.edges {
		if e.UserId == userId && r.s.hasEdge(e.FriendId, userId) {
			ids = append(ids, e.FriendId)
		}
	}
	return ids, nil
}

func (r friendshipRepo) FindOneSided(_ context.Context, limit int) ([]model.Friendship, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Friendship{}
	for _, e := range r.s.edges {
		if !r.s.hasEdge(e.FriendId, e.UserId) {
			out = append(out, e)
		}
	}
	return page(out, 0, limit), nil
}

// ==================== messages ====================

type messageRepo struct{ s *Store }

func between(m model.Message, a, b string) bool {
	return (m.SendId == a && m.ReceiveId == b) || (m.SendId == b && m.ReceiveId == a)
}

func (r messageRepo) Create(_ context.Context, msg *model.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	msg.ID = r.s.seq
	msg.CreatedAt = r.s.now()
	msg.UpdatedAt = msg.CreatedAt
	r.s.messages = append(r.s.messages, *msg)
	return nil
}

func (r messageRepo) FindByUuid(_ context.Context, uuid string) (*model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.messages {
		if m.Uuid == uuid {
			cp := m
			return &cp, nil
		}
	}
	return nil, notFound("查询消息")
}

// newestFirst 调用方需持有锁
func (r messageRepo) newestFirst(a, b string) []model.Message {
	out := []model.Message{}
	for i := len(r.s.messages) - 1; i >= 0; i-- {
		if between(r.s.messages[i], a, b) {
			out = append(out, r.s.messages[i])
		}
	}
	return out
}

func (r messageRepo) FindConversation(_ context.Context, a, b string, offset, limit int) ([]model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.newestFirst(a, b), offset, limit), nil
}

func (r messageRepo) CountConversation(_ context.Context, a, b string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.newestFirst(a, b))), nil
}

func (r messageRepo) FindLatestBetween(_ context.Context, a, b string) (*model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	msgs := r.newestFirst(a, b)
	if len(msgs) == 0 {
		return nil, notFound("查询最新消息")
	}
	return &msgs[0], nil
}

func (r messageRepo) CountUnreadBySender(_ context.Context, receiverId string) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int64{}
	for _, m := range r.s.messages {
		if m.ReceiveId == receiverId && !m.IsRead {
			counts[m.SendId]++
		}
	}
	return counts, nil
}

func (r messageRepo) MarkRead(_ context.Context, senderId, receiverId string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for i := range r.s.messages {
		m := &r.s.messages[i]
		if m.SendId == senderId && m.ReceiveId == receiverId && !m.IsRead {
			m.IsRead = true
			m.ReadAt.Time, m.ReadAt.Valid = at, true
			n++
		}
	}
	return n, nil
}

func (r messageRepo) DeleteByUuid(_ context.Context, uuid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.messages[:0]
	for _, m := range r.s.messages {
		if m.Uuid != uuid {
			kept = append(kept, m)
		}
	}
	r.s.messages = kept
	return nil
}

// ==================== groups ====================

type groupRepo struct{ s *Store }

func (r groupRepo) FindByUuid(_ context.Context, uuid string) (*model.GroupInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	g, ok := r.s.groups[uuid]
	if !ok {
		return nil, notFound("查询群组")
	}
	cp := *g
	return &cp, nil
}

// FindByUuidForUpdate 内存事务本身串行，不需要行锁
func (r groupRepo) FindByUuidForUpdate(ctx context.Context, uuid string) (*model.GroupInfo, error) {
	return r.FindByUuid(ctx, uuid)
}

func (r groupRepo) FindByUuids(_ context.Context, uuids []string) ([]model.GroupInfo, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.GroupInfo{}
	for _, id := range uuids {
		if g, ok := r.s.groups[id]; ok {
			out = append(out, *g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r groupRepo) Create(_ context.Context, group *model.GroupInfo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[group.Uuid]; ok {
		return duplicate("创建群组")
	}
	r.s.seq++
	group.ID = r.s.seq
	group.CreatedAt = r.s.now()
	group.UpdatedAt = group.CreatedAt
	cp := *group
	r.s.groups[group.Uuid] = &cp
	return nil
}

func (r groupRepo) Touch(_ context.Context, uuid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if g, ok := r.s.groups[uuid]; ok {
		r.s.seq++
		g.UpdatedAt = r.s.now()
	}
	return nil
}

func (r groupRepo) Delete(_ context.Context, uuid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.groups, uuid)
	return nil
}

// ==================== group members ====================

type memberRepo struct{ s *Store }

func (r memberRepo) FindByGroupUuid(_ context.Context, groupUuid string) ([]model.GroupMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.GroupMember{}
	for _, m := range r.s.members {
		if m.GroupUuid == groupUuid {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memberRepo) FindByGroupAndUser(_ context.Context, groupUuid, userUuid string) (*model.GroupMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.GroupUuid == groupUuid && m.UserUuid == userUuid {
			cp := m
			return &cp, nil
		}
	}
	return nil, notFound("查询群成员")
}

func (r memberRepo) FindGroupUuidsByUser(_ context.Context, userUuid string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []string{}
	for _, m := range r.s.members {
		if m.UserUuid == userUuid {
			out = append(out, m.GroupUuid)
		}
	}
	return out, nil
}

func (r memberRepo) Create(_ context.Context, member *model.GroupMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members {
		if m.GroupUuid == member.GroupUuid && m.UserUuid == member.UserUuid {
			return duplicate("创建群成员")
		}
	}
	r.s.seq++
	member.Id = r.s.seq
	member.CreatedAt = r.s.now()
	r.s.members = append(r.s.members, *member)
	return nil
}

func (r memberRepo) Delete(_ context.Context, groupUuid, userUuid string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	kept := r.s.members[:0]
	for _, m := range r.s.members {
		if m.GroupUuid == groupUuid && m.UserUuid == userUuid {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.s.members = kept
	return n, nil
}

func (r memberRepo) CountByGroup(_ context.Context, groupUuid string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.members {
		if m.GroupUuid == groupUuid {
			n++
		}
	}
	return n, nil
}

func (r memberRepo) UpdateRole(_ context.Context, groupUuid, userUuid string, role int8) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.members {
		if r.s.members[i].GroupUuid == groupUuid && r.s.members[i].UserUuid == userUuid {
			r.s.members[i].Role = role
		}
	}
	return nil
}

// ==================== group messages ====================

type groupMessageRepo struct{ s *Store }

func (r groupMessageRepo) Create(_ context.Context, msg *model.GroupMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.seq++
	msg.ID = r.s.seq
	msg.CreatedAt = r.s.now()
	msg.UpdatedAt = msg.CreatedAt
	r.s.groupMsg = append(r.s.groupMsg, *msg)
	return nil
}

func (r groupMessageRepo) newestFirst(groupUuid string) []model.GroupMessage {
	out := []model.GroupMessage{}
	for i := len(r.s.groupMsg) - 1; i >= 0; i-- {
		if r.s.groupMsg[i].GroupUuid == groupUuid {
			out = append(out, r.s.groupMsg[i])
		}
	}
	return out
}

func (r groupMessageRepo) FindByGroupUuid(_ context.Context, groupUuid string, offset, limit int) ([]model.GroupMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return page(r.newestFirst(groupUuid), offset, limit), nil
}

func (r groupMessageRepo) CountByGroupUuid(_ context.Context, groupUuid string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.newestFirst(groupUuid))), nil
}

func (r groupMessageRepo) DeleteByGroupUuid(_ context.Context, groupUuid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.groupMsg[:0]
	for _, m := range r.s.groupMsg {
		if m.GroupUuid != groupUuid {
			kept = append(kept, m)
		}
	}
	r.s.groupMsg = kept
	return nil
}
