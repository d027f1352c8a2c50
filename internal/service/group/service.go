package group

import (
	"context"

	"go.uber.org/zap"

	"friend_chat_server/internal/dao/mysql/repository"
	"friend_chat_server/internal/dto/request"
	"friend_chat_server/internal/dto/respond"
	"friend_chat_server/internal/model"
	"friend_chat_server/internal/service/chat"
	"friend_chat_server/internal/service/message"
	"friend_chat_server/pkg/constants"
	"friend_chat_server/pkg/errorx"
	"friend_chat_server/pkg/util/snowflake"
)

// groupService 群组业务逻辑实现
// 成员增删由管理员操作，任何成员可以退出；没有成员的群直接删除
type groupService struct {
	repos  *repository.Repositories
	pusher chat.Pusher
}

// NewGroupService 构造函数，注入所有依赖
func NewGroupService(repos *repository.Repositories, pusher chat.Pusher) *groupService {
	return &groupService{
		repos:  repos,
		pusher: pusher,
	}
}

// CreateGroup 创建群组，创建者为唯一管理员，MemberIds 作为普通成员加入
func (g *groupService) CreateGroup(ctx context.Context, creatorId string, req request.CreateGroupRequest) (*respond.GroupDetailRespond, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "群名称不能为空")
	}

	memberIds := make([]string, 0, len(req.MemberIds))
	seen := map[string]bool{creatorId: true}
	for _, id := range req.MemberIds {
		if !seen[id] {
			seen[id] = true
			memberIds = append(memberIds, id)
		}
	}
	if len(memberIds) > 0 {
		users, err := g.repos.User.FindByUuids(ctx, memberIds)
		if err != nil {
			return nil, err
		}
		if len(users) != len(memberIds) {
			return nil, errorx.New(errorx.CodeUserNotExist, "部分成员不存在")
		}
	}

	group := &model.GroupInfo{
		Uuid:        snowflake.NewGroupId(),
		Name:        req.Name,
		Description: req.Description,
		CreatorId:   creatorId,
		IsActive:    true,
	}
	err := g.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		if err := txRepos.Group.Create(ctx, group); err != nil {
			return err
		}
		if err := txRepos.GroupMember.Create(ctx, &model.GroupMember{GroupUuid: group.Uuid, UserUuid: creatorId, Role: model.GroupRoleAdmin}); err != nil {
			return err
		}
		for _, id := range memberIds {
			if err := txRepos.GroupMember.Create(ctx, &model.GroupMember{GroupUuid: group.Uuid, UserUuid: id, Role: model.GroupRoleMember}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		zap.L().Error("create group", zap.String("creator", creatorId), zap.Error(err))
		return nil, err
	}

	zap.L().Info("group created", zap.String("group_id", group.Uuid), zap.String("creator", creatorId), zap.Int("members", len(memberIds)+1))
	return g.detail(ctx, group)
}

// ListMyGroups 我所在的群，最近活跃的在前
func (g *groupService) ListMyGroups(ctx context.Context, userId string) ([]respond.GroupRespond, error) {
	groupIds, err := g.repos.GroupMember.FindGroupUuidsByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	if len(groupIds) == 0 {
		return []respond.GroupRespond{}, nil
	}
	groups, err := g.repos.Group.FindByUuids(ctx, groupIds)
	if err != nil {
		return nil, err
	}
	out := make([]respond.GroupRespond, 0, len(groups))
	for i := range groups {
		out = append(out, respond.NewGroupRespond(&groups[i]))
	}
	return out, nil
}

// GetGroup 群详情，只有成员可以查看
func (g *groupService) GetGroup(ctx context.Context, userId, groupId string) (*respond.GroupDetailRespond, error) {
	group, err := g.findGroup(ctx, groupId)
	if err != nil {
		return nil, err
	}
	if _, err := findMember(ctx, g.repos, groupId, userId); err != nil {
		return nil, err
	}
	return g.detail(ctx, group)
}

// AddMember 管理员添加成员
// 先锁群组行，避免与最后一名成员退出并发时写入已解散的群
func (g *groupService) AddMember(ctx context.Context, operatorId, groupId, userId string) error {
	err := g.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		if err := lockGroup(ctx, txRepos, groupId); err != nil {
			return err
		}
		if err := requireAdmin(ctx, txRepos, groupId, operatorId); err != nil {
			return err
		}
		if _, err := txRepos.User.FindByUuid(ctx, userId); err != nil {
			if errorx.IsNotFound(err) {
				return errorx.New(errorx.CodeUserNotExist, "用户不存在")
			}
			return err
		}
		err := txRepos.GroupMember.Create(ctx, &model.GroupMember{GroupUuid: groupId, UserUuid: userId, Role: model.GroupRoleMember})
		if repository.IsDuplicateKey(err) {
			return errorx.ErrAlreadyMember
		}
		return err
	})
	if err != nil {
		return err
	}
	g.touch(ctx, groupId)
	return nil
}

// RemoveMember 管理员移除成员，移除自己等同于退出
func (g *groupService) RemoveMember(ctx context.Context, operatorId, groupId, userId string) error {
	if operatorId == userId {
		if _, err := g.findGroup(ctx, groupId); err != nil {
			return err
		}
		if err := requireAdmin(ctx, g.repos, groupId, operatorId); err != nil {
			return err
		}
		_, err := g.Leave(ctx, userId, groupId)
		return err
	}

	err := g.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		if err := lockGroup(ctx, txRepos, groupId); err != nil {
			return err
		}
		if err := requireAdmin(ctx, txRepos, groupId, operatorId); err != nil {
			return err
		}
		n, err := txRepos.GroupMember.Delete(ctx, groupId, userId)
		if err != nil {
			return err
		}
		if n == 0 {
			return errorx.ErrMemberNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	g.touch(ctx, groupId)
	return nil
}

// Leave 退出群组
// 最后一名成员退出时删除群及其消息；最后一名管理员退出时最早入群的成员成为管理员
// 群组行加锁后再删除并计数，并发退出时后一个事务能看到前一个的结果
func (g *groupService) Leave(ctx context.Context, userId, groupId string) (*respond.LeaveGroupRespond, error) {
	rsp := &respond.LeaveGroupRespond{GroupId: groupId}
	err := g.repos.Transaction(ctx, func(txRepos *repository.Repositories) error {
		if err := lockGroup(ctx, txRepos, groupId); err != nil {
			return err
		}
		n, err := txRepos.GroupMember.Delete(ctx, groupId, userId)
		if err != nil {
			return err
		}
		if n == 0 {
			return errorx.ErrNotAMember
		}

		count, err := txRepos.GroupMember.CountByGroup(ctx, groupId)
		if err != nil {
			return err
		}
		if count == 0 {
			rsp.GroupDeleted = true
			if err := txRepos.GroupMessage.DeleteByGroupUuid(ctx, groupId); err != nil {
				return err
			}
			return txRepos.Group.Delete(ctx, groupId)
		}

		remaining, err := txRepos.GroupMember.FindByGroupUuid(ctx, groupId)
		if err != nil {
			return err
		}
		for _, m := range remaining {
			if m.IsAdmin() {
				return nil
			}
		}
		return txRepos.GroupMember.UpdateRole(ctx, groupId, remaining[0].UserUuid, model.GroupRoleAdmin)
	})
	if err != nil {
		return nil, err
	}

	if rsp.GroupDeleted {
		zap.L().Info("group deleted after last member left", zap.String("group_id", groupId))
	} else {
		g.touch(ctx, groupId)
	}
	return rsp, nil
}

// SendGroupMessage 落库后推送给除发送者外的所有在线成员
// 单个成员推送失败不影响其他成员
func (g *groupService) SendGroupMessage(ctx context.Context, senderId, groupId string, req request.SendGroupMessageRequest) (*respond.GroupMessageRespond, error) {
	messageType, err := message.ValidateContent(req.Content, req.MessageType)
	if err != nil {
		return nil, err
	}
	if _, err := g.findGroup(ctx, groupId); err != nil {
		return nil, err
	}
	if _, err := findMember(ctx, g.repos, groupId, senderId); err != nil {
		return nil, err
	}

	msg := &model.GroupMessage{
		Uuid:      snowflake.NewMessageId(),
		GroupUuid: groupId,
		SendId:    senderId,
		Type:      messageType,
		Content:   req.Content,
	}
	if err := g.repos.GroupMessage.Create(ctx, msg); err != nil {
		zap.L().Error("save group message", zap.String("group_id", groupId), zap.String("sender", senderId), zap.Error(err))
		return nil, err
	}
	g.touch(ctx, groupId)

	rsp := respond.NewGroupMessageRespond(msg)
	members, err := g.repos.GroupMember.FindByGroupUuid(ctx, groupId)
	if err != nil {
		// 消息已落库，成员读取失败只影响实时推送
		zap.L().Warn("load members for fan-out", zap.String("group_id", groupId), zap.Error(err))
		return &rsp, nil
	}
	event := chat.NewEvent(chat.EventGroupMessageDelivered, rsp)
	delivered := 0
	for _, m := range members {
		if m.UserUuid == senderId {
			continue
		}
		if g.pusher.PushToUser(ctx, m.UserUuid, event) {
			delivered++
		}
	}
	zap.L().Debug("group fan-out", zap.String("group_id", groupId), zap.Int("members", len(members)-1), zap.Int("delivered", delivered))
	return &rsp, nil
}

// GetGroupMessages 群消息分页，只有成员可以查看
func (g *groupService) GetGroupMessages(ctx context.Context, userId, groupId string, page request.PageRequest) (*respond.GroupMessagesRespond, error) {
	if _, err := g.findGroup(ctx, groupId); err != nil {
		return nil, err
	}
	if _, err := findMember(ctx, g.repos, groupId, userId); err != nil {
		return nil, err
	}
	pageNo, limit, offset := page.Normalize()

	total, err := g.repos.GroupMessage.CountByGroupUuid(ctx, groupId)
	if err != nil {
		return nil, err
	}
	msgs, err := g.repos.GroupMessage.FindByGroupUuid(ctx, groupId, offset, limit)
	if err != nil {
		return nil, err
	}
	rsp := &respond.GroupMessagesRespond{
		Messages: make([]respond.GroupMessageRespond, len(msgs)),
		Page:     pageNo,
		Limit:    limit,
		Total:    total,
		HasMore:  int64(offset+len(msgs)) < total,
	}
	for i := range msgs {
		rsp.Messages[len(msgs)-1-i] = respond.NewGroupMessageRespond(&msgs[i])
	}
	return rsp, nil
}

func (g *groupService) findGroup(ctx context.Context, groupId string) (*model.GroupInfo, error) {
	group, err := g.repos.Group.FindByUuid(ctx, groupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

// lockGroup 锁定群组行，群不存在返回 GroupNotFound
func lockGroup(ctx context.Context, repos *repository.Repositories, groupId string) error {
	if _, err := repos.Group.FindByUuidForUpdate(ctx, groupId); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.ErrGroupNotFound
		}
		return err
	}
	return nil
}

func findMember(ctx context.Context, repos *repository.Repositories, groupId, userId string) (*model.GroupMember, error) {
	member, err := repos.GroupMember.FindByGroupAndUser(ctx, groupId, userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.ErrNotAMember
		}
		return nil, err
	}
	return member, nil
}

// requireAdmin 非成员与普通成员一律返回 Forbidden
func requireAdmin(ctx context.Context, repos *repository.Repositories, groupId, userId string) error {
	member, err := findMember(ctx, repos, groupId, userId)
	if err != nil {
		if errorx.HasCode(err, errorx.CodeNotAMember) {
			return errorx.ErrForbidden
		}
		return err
	}
	if !member.IsAdmin() {
		return errorx.ErrForbidden
	}
	return nil
}

func (g *groupService) detail(ctx context.Context, group *model.GroupInfo) (*respond.GroupDetailRespond, error) {
	members, err := g.repos.GroupMember.FindByGroupUuid(ctx, group.Uuid)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserUuid)
	}
	users, err := g.repos.User.FindByUuids(ctx, ids)
	if err != nil {
		return nil, err
	}
	byId := make(map[string]model.UserInfo, len(users))
	for _, u := range users {
		byId[u.Uuid] = u
	}

	rsp := &respond.GroupDetailRespond{
		GroupRespond: respond.NewGroupRespond(group),
		Members:      make([]respond.GroupMemberRespond, 0, len(members)),
	}
	for _, m := range members {
		role := "member"
		if m.IsAdmin() {
			role = "admin"
		}
		u := byId[m.UserUuid]
		rsp.Members = append(rsp.Members, respond.GroupMemberRespond{
			UserId:   m.UserUuid,
			Nickname: u.Nickname,
			Avatar:   u.Avatar,
			Role:     role,
			JoinedAt: m.CreatedAt.Format(constants.TIME_FORMAT),
		})
	}
	return rsp, nil
}

// touch 刷新群活跃时间，失败不影响主流程
func (g *groupService) touch(ctx context.Context, groupId string) {
	if err := g.repos.Group.Touch(ctx, groupId); err != nil {
		zap.L().Warn("touch group", zap.String("group_id", groupId), zap.Error(err))
	}
}
