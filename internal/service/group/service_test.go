package group

import (
	"context"
	"sync"
	"testing"

	"friend_chat_server/internal/dao/mysql/repository/repotest"
	"friend_chat_server/internal/dto/request"
	"friend_chat_server/internal/service/chat"
	"friend_chat_server/internal/service/chat/chattest"
	"friend_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*groupService, *chattest.RecordingPusher) {
	t.Helper()
	store := repotest.New()
	store.AddUser("UA", "alice", "13800000001")
	store.AddUser("UB", "bob", "13800000002")
	store.AddUser("UC", "carol", "13800000003")
	store.AddUser("UD", "dave", "13800000004")
	pusher := chattest.NewRecordingPusher()
	return NewGroupService(store.Repositories(), pusher), pusher
}

func createGroup(t *testing.T, svc *groupService, creator string, members ...string) string {
	t.Helper()
	g, err := svc.CreateGroup(context.Background(), creator, request.CreateGroupRequest{Name: "weekend", MemberIds: members})
	require.NoError(t, err)
	return g.GroupId
}

func TestCreateGroupCreatorIsSoleAdmin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, "UA", request.CreateGroupRequest{Name: "weekend", MemberIds: []string{"UB", "UA", "UB"}})
	require.NoError(t, err)
	require.Len(t, g.Members, 2)
	assert.Equal(t, "UA", g.Members[0].UserId)
	assert.Equal(t, "admin", g.Members[0].Role)
	assert.Equal(t, "member", g.Members[1].Role)
	assert.True(t, g.IsActive)

	_, err = svc.CreateGroup(ctx, "UA", request.CreateGroupRequest{Name: "x", MemberIds: []string{"U404"}})
	assert.Equal(t, errorx.CodeUserNotExist, errorx.GetCode(err))

	groups, err := svc.ListMyGroups(ctx, "UB")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, g.GroupId, groups[0].GroupId)

	_, err = svc.GetGroup(ctx, "UC", g.GroupId)
	assert.ErrorIs(t, err, errorx.ErrNotAMember)
	_, err = svc.GetGroup(ctx, "UA", "G404")
	assert.ErrorIs(t, err, errorx.ErrGroupNotFound)
}

func TestMembershipIsAdminOnly(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	gid := createGroup(t, svc, "UA", "UB")

	assert.ErrorIs(t, svc.AddMember(ctx, "UB", gid, "UC"), errorx.ErrForbidden)
	assert.ErrorIs(t, svc.AddMember(ctx, "UC", gid, "UD"), errorx.ErrForbidden)
	assert.ErrorIs(t, svc.RemoveMember(ctx, "UB", gid, "UA"), errorx.ErrForbidden)

	require.NoError(t, svc.AddMember(ctx, "UA", gid, "UC"))
	assert.ErrorIs(t, svc.AddMember(ctx, "UA", gid, "UC"), errorx.ErrAlreadyMember)
	assert.Equal(t, errorx.CodeUserNotExist, errorx.GetCode(svc.AddMember(ctx, "UA", gid, "U404")))

	require.NoError(t, svc.RemoveMember(ctx, "UA", gid, "UC"))
	assert.ErrorIs(t, svc.RemoveMember(ctx, "UA", gid, "UC"), errorx.ErrMemberNotFound)
	assert.ErrorIs(t, svc.AddMember(ctx, "UA", "G404", "UC"), errorx.ErrGroupNotFound)
}

func TestLeavePromotesAndDeletes(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	gid := createGroup(t, svc, "UA", "UB", "UC")
	_, err := svc.SendGroupMessage(ctx, "UA", gid, request.SendGroupMessageRequest{Content: "hi"})
	require.NoError(t, err)

	rsp, err := svc.Leave(ctx, "UA", gid)
	require.NoError(t, err)
	assert.False(t, rsp.GroupDeleted)

	g, err := svc.GetGroup(ctx, "UB", gid)
	require.NoError(t, err)
	require.Len(t, g.Members, 2)
	assert.Equal(t, "UB", g.Members[0].UserId)
	assert.Equal(t, "admin", g.Members[0].Role)

	_, err = svc.Leave(ctx, "UA", gid)
	assert.ErrorIs(t, err, errorx.ErrNotAMember)

	_, err = svc.Leave(ctx, "UC", gid)
	require.NoError(t, err)
	rsp, err = svc.Leave(ctx, "UB", gid)
	require.NoError(t, err)
	assert.True(t, rsp.GroupDeleted)

	// 群已删除，任何引用它的操作都返回 GroupNotFound
	_, err = svc.GetGroup(ctx, "UB", gid)
	assert.ErrorIs(t, err, errorx.ErrGroupNotFound)
	_, err = svc.Leave(ctx, "UB", gid)
	assert.ErrorIs(t, err, errorx.ErrGroupNotFound)
	_, err = svc.SendGroupMessage(ctx, "UB", gid, request.SendGroupMessageRequest{Content: "anyone?"})
	assert.ErrorIs(t, err, errorx.ErrGroupNotFound)
	assert.ErrorIs(t, svc.AddMember(ctx, "UB", gid, "UC"), errorx.ErrGroupNotFound)
}

func TestAdminRemovingSelfLeaves(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	gid := createGroup(t, svc, "UA")

	require.NoError(t, svc.RemoveMember(ctx, "UA", gid, "UA"))
	_, err := svc.GetGroup(ctx, "UA", gid)
	assert.ErrorIs(t, err, errorx.ErrGroupNotFound)
}

func TestSendGroupMessageFanOut(t *testing.T) {
	svc, pusher := newService(t)
	ctx := context.Background()
	gid := createGroup(t, svc, "UA", "UB", "UC")
	pusher.SetOnline("UA", true)
	pusher.SetOnline("UB", true)

	msg, err := svc.SendGroupMessage(ctx, "UA", gid, request.SendGroupMessageRequest{Content: "hello group"})
	require.NoError(t, err)

	assert.Len(t, pusher.PushesTo("UB"), 1)
	assert.Empty(t, pusher.PushesTo("UC"))
	assert.Empty(t, pusher.PushesTo("UA"))
	assert.Equal(t, chat.EventGroupMessageDelivered, pusher.PushesTo("UB")[0].Event.Type)

	for _, member := range []string{"UA", "UB", "UC"} {
		history, err := svc.GetGroupMessages(ctx, member, gid, request.PageRequest{})
		require.NoError(t, err)
		require.Len(t, history.Messages, 1)
		assert.Equal(t, msg.MessageId, history.Messages[0].MessageId)
	}

	_, err = svc.SendGroupMessage(ctx, "UD", gid, request.SendGroupMessageRequest{Content: "let me in"})
	assert.ErrorIs(t, err, errorx.ErrNotAMember)
	_, err = svc.GetGroupMessages(ctx, "UD", gid, request.PageRequest{})
	assert.ErrorIs(t, err, errorx.ErrNotAMember)
}

func TestGetGroupMessagesPaging(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	gid := createGroup(t, svc, "UA")
	for _, c := range []string{"g1", "g2", "g3"} {
		_, err := svc.SendGroupMessage(ctx, "UA", gid, request.SendGroupMessageRequest{Content: c})
		require.NoError(t, err)
	}

	page, err := svc.GetGroupMessages(ctx, "UA", gid, request.PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "g2", page.Messages[0].Content)
	assert.Equal(t, "g3", page.Messages[1].Content)
	assert.True(t, page.HasMore)
}

func TestConcurrentLastLeavesDeleteGroup(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for round := 0; round < 50; round++ {
		gid := createGroup(t, svc, "UA", "UB")

		var wg sync.WaitGroup
		results := make([]bool, 2)
		for i, user := range []string{"UA", "UB"} {
			wg.Add(1)
			go func(i int, user string) {
				defer wg.Done()
				rsp, err := svc.Leave(ctx, user, gid)
				if assert.NoError(t, err) {
					results[i] = rsp.GroupDeleted
				}
			}(i, user)
		}
		wg.Wait()

		// 恰好一个退出操作解散了群
		assert.NotEqual(t, results[0], results[1])
		_, err := svc.GetGroup(ctx, "UA", gid)
		assert.ErrorIs(t, err, errorx.ErrGroupNotFound)
	}
}

func TestAddMemberRacingFinalLeave(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for round := 0; round < 50; round++ {
		gid := createGroup(t, svc, "UA")

		var wg sync.WaitGroup
		var addErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			addErr = svc.AddMember(ctx, "UA", gid, "UB")
		}()
		go func() {
			defer wg.Done()
			_, err := svc.Leave(ctx, "UA", gid)
			assert.NoError(t, err)
		}()
		wg.Wait()

		groups, err := svc.ListMyGroups(ctx, "UB")
		require.NoError(t, err)
		if addErr == nil {
			// 加人先执行：UB 接任管理员，群保留
			require.Len(t, groups, 1)
			g, err := svc.GetGroup(ctx, "UB", gid)
			require.NoError(t, err)
			require.Len(t, g.Members, 1)
			assert.Equal(t, "admin", g.Members[0].Role)
			_, err = svc.Leave(ctx, "UB", gid)
			require.NoError(t, err)
		} else {
			assert.ErrorIs(t, addErr, errorx.ErrGroupNotFound)
			assert.Empty(t, groups)
		}
	}
}
