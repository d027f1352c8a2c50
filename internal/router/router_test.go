package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"friend_chat_server/internal/dao/mysql/repository/repotest"
	wsgateway "friend_chat_server/internal/gateway/websocket"
	"friend_chat_server/internal/handler"
	"friend_chat_server/internal/infrastructure/mq"
	"friend_chat_server/internal/service"
	"friend_chat_server/internal/service/chat"
	"friend_chat_server/pkg/errorx"
	"friend_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	jwt.Init("router-test-secret-router-test-secret", 5, 1)
	if err := handler.InitTrans("en"); err != nil {
		panic(err)
	}
}

type apiResponse struct {
	Code int             `json:"code"`
	Msg  json.RawMessage `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type wsEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// testServer 内存存储 + 单机投递，走完整的 HTTP 与 WebSocket 链路
type testServer struct {
	t        *testing.T
	srv      *httptest.Server
	registry *wsgateway.Registry
	store    *repotest.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repotest.New()
	registry := wsgateway.NewRegistry()
	chatServer := chat.NewChatServer(registry, chat.NewChannelBroker(registry), chat.ConnOptions{})
	svc := service.NewServices(service.Deps{
		Repos:     store.Repositories(),
		Pusher:    chatServer,
		Publisher: mq.NewPublisher("", "chat.integrity"),
	})
	handlers := handler.NewHandlers(svc, chatServer, store.Repositories())

	engine := gin.New()
	NewRouter(handlers, 0, 0).RegisterRoutes(engine)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, registry: registry, store: store}
}

func (s *testServer) call(method, path, token string, body any) apiResponse {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var rsp apiResponse
	require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&rsp))
	return rsp
}

func (s *testServer) ok(method, path, token string, body any, out any) {
	s.t.Helper()
	rsp := s.call(method, path, token, body)
	require.Equal(s.t, errorx.CodeSuccess, rsp.Code, "%s %s: %s", method, path, rsp.Msg)
	if out != nil {
		require.NoError(s.t, json.Unmarshal(rsp.Data, out))
	}
}

type account struct {
	id    string
	token string
}

// signup 注册并登录
func (s *testServer) signup(nickname, telephone string) account {
	s.t.Helper()
	s.ok(http.MethodPost, "/user/register", "", map[string]string{
		"nickname": nickname, "telephone": telephone, "password": "secret123",
	}, nil)
	var login struct {
		UserId      string `json:"user_id"`
		AccessToken string `json:"access_token"`
	}
	s.ok(http.MethodPost, "/user/login", "", map[string]string{
		"telephone": telephone, "password": "secret123",
	}, &login)
	return account{id: login.UserId, token: login.AccessToken}
}

func (s *testServer) befriend(a, b account) {
	s.t.Helper()
	s.ok(http.MethodPost, "/friend/apply", a.token, map[string]string{"target_id": b.id}, nil)
	s.ok(http.MethodPost, "/friend/accept", b.token, map[string]string{"requester_id": a.id}, nil)
}

func (s *testServer) dial(a account) *websocket.Conn {
	s.t.Helper()
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/wss?token=" + a.token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(s.t, func() bool { return s.registry.IsOnline(a.id) }, 2*time.Second, 5*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) (wsEvent, error) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	var ev wsEvent
	err := conn.ReadJSON(&ev)
	return ev, err
}

type message struct {
	MessageId string `json:"message_id"`
	SenderId  string `json:"sender_id"`
	Content   string `json:"content"`
	IsRead    bool   `json:"is_read"`
}

type conversation struct {
	Messages []message `json:"messages"`
	Total    int64     `json:"total"`
}

func TestRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/friend/list", "/message/conversations", "/group/mine", "/user/search?telephone=13800000001"} {
		req, err := http.NewRequest(http.MethodGet, s.srv.URL+path, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.srv.URL, "http")+"/wss", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	resp, err := http.Get(s.srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDirectMessageToOnlineFriend(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "13800000001")
	bob := s.signup("bob", "13800000002")
	s.befriend(alice, bob)

	var friends struct {
		Friends []struct {
			UserId   string `json:"user_id"`
			IsOnline bool   `json:"is_online"`
		} `json:"friends"`
	}
	s.ok(http.MethodGet, "/friend/list", alice.token, nil, &friends)
	require.Len(t, friends.Friends, 1)
	assert.Equal(t, bob.id, friends.Friends[0].UserId)

	bobConn := s.dial(bob)

	var sent message
	s.ok(http.MethodPost, "/message/send", alice.token, map[string]string{"recipient_id": bob.id, "content": "hello"}, &sent)

	ev, err := readEvent(t, bobConn, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, chat.EventMessageDelivered, ev.Type)
	var pushed message
	require.NoError(t, json.Unmarshal(ev.Data, &pushed))
	assert.Equal(t, "hello", pushed.Content)
	assert.Equal(t, sent.MessageId, pushed.MessageId)

	// 首次读取时未读，读取后置为已读
	var first conversation
	s.ok(http.MethodGet, "/message/conversation/"+alice.id, bob.token, nil, &first)
	require.Len(t, first.Messages, 1)
	assert.Equal(t, "hello", first.Messages[0].Content)
	assert.False(t, first.Messages[0].IsRead)

	var second conversation
	s.ok(http.MethodGet, "/message/conversation/"+alice.id, bob.token, nil, &second)
	require.Len(t, second.Messages, 1)
	assert.True(t, second.Messages[0].IsRead)
}

func TestDirectMessageToOfflineFriend(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "13800000001")
	bob := s.signup("bob", "13800000002")
	s.befriend(alice, bob)

	s.ok(http.MethodPost, "/message/send", alice.token, map[string]string{"recipient_id": bob.id, "content": "hello"}, nil)

	var conv conversation
	s.ok(http.MethodGet, "/message/conversation/"+alice.id, bob.token, nil, &conv)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "hello", conv.Messages[0].Content)
}

func TestDirectMessageRequiresFriendship(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "13800000001")
	bob := s.signup("bob", "13800000002")

	rsp := s.call(http.MethodPost, "/message/send", alice.token, map[string]string{"recipient_id": bob.id, "content": "hello"})
	assert.Equal(t, errorx.CodeNotFriends, rsp.Code)
	assert.Equal(t, 0, s.store.MessageCount())

	// 待处理的申请不算好友
	s.ok(http.MethodPost, "/friend/apply", alice.token, map[string]string{"target_id": bob.id}, nil)
	rsp = s.call(http.MethodPost, "/message/send", alice.token, map[string]string{"recipient_id": bob.id, "content": "hello"})
	assert.Equal(t, errorx.CodeNotFriends, rsp.Code)
	rsp = s.call(http.MethodPost, "/friend/apply", bob.token, map[string]string{"target_id": alice.id})
	assert.Equal(t, errorx.CodeReciprocalPending, rsp.Code)
}

func TestSendMessageOverWebSocket(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "13800000001")
	bob := s.signup("bob", "13800000002")
	s.befriend(alice, bob)

	aliceConn := s.dial(alice)
	bobConn := s.dial(bob)

	require.NoError(t, aliceConn.WriteJSON(map[string]any{
		"type": chat.IntentSendMessage,
		"data": map[string]string{"recipient_id": bob.id, "content": "over ws"},
	}))

	ack, err := readEvent(t, aliceConn, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, chat.EventMessageSent, ack.Type)

	ev, err := readEvent(t, bobConn, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, chat.EventMessageDelivered, ev.Type)

	require.NoError(t, bobConn.WriteJSON(map[string]any{
		"type": chat.IntentMarkRead,
		"data": map[string]string{"user_id": alice.id},
	}))
	// 同一连接的指令按顺序处理，收到下一条指令的回执即说明 mark_read 已完成
	require.NoError(t, bobConn.WriteJSON(map[string]any{"type": "typing", "data": map[string]string{}}))
	ev, err = readEvent(t, bobConn, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, chat.EventError, ev.Type)

	var list []struct {
		UnreadCount int64 `json:"unread_count"`
	}
	s.ok(http.MethodGet, "/message/conversations", bob.token, nil, &list)
	require.Len(t, list, 1)
	assert.EqualValues(t, 0, list[0].UnreadCount)
}

func TestGroupFanOut(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice", "13800000001")
	bob := s.signup("bob", "13800000002")
	carol := s.signup("carol", "13800000003")

	var group struct {
		GroupId string `json:"group_id"`
	}
	s.ok(http.MethodPost, "/group/create", alice.token, map[string]any{
		"name": "weekend", "member_ids": []string{bob.id, carol.id},
	}, &group)

	bobConn := s.dial(bob)
	require.False(t, s.registry.IsOnline(carol.id))

	s.ok(http.MethodPost, "/group/"+group.GroupId+"/messages", alice.token, map[string]string{"content": "hi all"}, nil)

	ev, err := readEvent(t, bobConn, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, chat.EventGroupMessageDelivered, ev.Type)
	_, err = readEvent(t, bobConn, 200*time.Millisecond)
	assert.Error(t, err, "bob should receive exactly one push")

	for _, member := range []account{alice, bob, carol} {
		var history conversation
		s.ok(http.MethodGet, "/group/"+group.GroupId+"/messages", member.token, nil, &history)
		require.Len(t, history.Messages, 1)
		assert.Equal(t, "hi all", history.Messages[0].Content)
	}

	// 最后一人退出后群组被删除
	for _, member := range []account{alice, bob, carol} {
		s.ok(http.MethodPost, "/group/"+group.GroupId+"/leave", member.token, nil, nil)
	}
	rsp := s.call(http.MethodGet, "/group/"+group.GroupId, alice.token, nil)
	assert.Equal(t, errorx.CodeGroupNotFound, rsp.Code)
}
