package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	wsgateway "friend_chat_server/internal/gateway/websocket"
	"friend_chat_server/pkg/errorx"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConnPushAfterClose(t *testing.T) {
	uc := NewUserConn(nil, "U1", ConnOptions{SendBufferSize: 1})

	require.NoError(t, uc.Push([]byte("a")))
	assert.ErrorIs(t, uc.Push([]byte("b")), ErrSendBufferFull)

	uc.Close()
	uc.Close()
	assert.ErrorIs(t, uc.Push([]byte("c")), ErrConnClosed)
}

func TestChannelBrokerDeliver(t *testing.T) {
	registry := wsgateway.NewRegistry()
	broker := NewChannelBroker(registry)

	delivered, err := broker.Deliver(context.Background(), "U1", []byte("x"))
	assert.NoError(t, err)
	assert.False(t, delivered)

	uc := NewUserConn(nil, "U1", ConnOptions{})
	registry.Register("U1", uc)
	delivered, err = broker.Deliver(context.Background(), "U1", []byte("x"))
	assert.NoError(t, err)
	assert.True(t, delivered)
	assert.Equal(t, []byte("x"), <-uc.send)

	uc.Close()
	delivered, err = broker.Deliver(context.Background(), "U1", []byte("y"))
	assert.ErrorIs(t, err, ErrConnClosed)
	assert.False(t, delivered)
}

func TestPushToUserOfflineIsNotAnError(t *testing.T) {
	server := NewChatServer(wsgateway.NewRegistry(), NewChannelBroker(wsgateway.NewRegistry()), ConnOptions{})
	assert.False(t, server.PushToUser(context.Background(), "U404", NewEvent(EventMessageDelivered, "hi")))
}

func TestErrorEventHidesInternalErrors(t *testing.T) {
	ev := ErrorEvent(IntentSendMessage, errorx.Wrap(errors.New("db down"), errorx.CodeDBError, "保存消息"))
	data := ev.Data.(ErrorData)
	assert.Equal(t, errorx.CodeServerBusy, data.Code)
	assert.Equal(t, IntentSendMessage, data.Intent)

	ev = ErrorEvent(IntentSendMessage, errorx.ErrNotFriends)
	assert.Equal(t, errorx.CodeNotFriends, ev.Data.(ErrorData).Code)
}

// ==================== kafka broker ====================

type fakeTransport struct {
	mu      sync.Mutex
	written []kafka.Message
	inbox   chan kafka.Message
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{inbox: make(chan kafka.Message, 4)}
}

func (f *fakeTransport) WriteMessage(_ context.Context, key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, kafka.Message{Key: key, Value: value})
	return nil
}

func (f *fakeTransport) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-f.inbox:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (f *fakeTransport) Close() {}

func TestKafkaBrokerPublishesForRemoteUsers(t *testing.T) {
	registry := wsgateway.NewRegistry()
	transport := newFakeTransport()
	broker := NewKafkaBroker(registry, transport)

	delivered, err := broker.Deliver(context.Background(), "U2", []byte(`{"type":"message_delivered"}`))
	require.NoError(t, err)
	assert.True(t, delivered)

	require.Len(t, transport.written, 1)
	assert.Equal(t, "U2", string(transport.written[0].Key))
	var env pushEnvelope
	require.NoError(t, json.Unmarshal(transport.written[0].Value, &env))
	assert.Equal(t, "U2", env.UserId)
	assert.JSONEq(t, `{"type":"message_delivered"}`, string(env.Payload))
}

func TestKafkaBrokerLocalFastPath(t *testing.T) {
	registry := wsgateway.NewRegistry()
	transport := newFakeTransport()
	broker := NewKafkaBroker(registry, transport)

	uc := NewUserConn(nil, "U1", ConnOptions{})
	registry.Register("U1", uc)

	delivered, err := broker.Deliver(context.Background(), "U1", []byte("x"))
	require.NoError(t, err)
	assert.True(t, delivered)
	assert.Empty(t, transport.written)
	assert.Equal(t, []byte("x"), <-uc.send)
}

func TestKafkaBrokerConsumesForLocalUsers(t *testing.T) {
	registry := wsgateway.NewRegistry()
	transport := newFakeTransport()
	broker := NewKafkaBroker(registry, transport)

	uc := NewUserConn(nil, "U3", ConnOptions{})
	registry.Register("U3", uc)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		broker.Start(ctx)
		close(stopped)
	}()

	value, _ := json.Marshal(pushEnvelope{UserId: "U3", Payload: json.RawMessage(`{"type":"group_message_delivered"}`)})
	transport.inbox <- kafka.Message{Value: value}
	// 本机不在线的用户直接丢弃
	other, _ := json.Marshal(pushEnvelope{UserId: "U9", Payload: json.RawMessage(`{}`)})
	transport.inbox <- kafka.Message{Value: other}

	select {
	case got := <-uc.send:
		assert.JSONEq(t, `{"type":"group_message_delivered"}`, string(got))
	case <-time.After(2 * time.Second):
		t.Fatal("push not dispatched")
	}

	cancel()
	<-stopped
}

func TestChatServerStartReturnsInKafkaMode(t *testing.T) {
	registry := wsgateway.NewRegistry()
	transport := newFakeTransport()
	server := NewChatServer(registry, NewKafkaBroker(registry, transport), ConnOptions{})

	uc := NewUserConn(nil, "U5", ConnOptions{})
	registry.Register("U5", uc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := make(chan struct{})
	go func() {
		server.Start(ctx)
		close(started)
	}()
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("Start blocked on the kafka consumer")
	}

	// 消费循环在后台运行
	value, _ := json.Marshal(pushEnvelope{UserId: "U5", Payload: json.RawMessage(`{"type":"message_delivered"}`)})
	transport.inbox <- kafka.Message{Value: value}
	select {
	case got := <-uc.send:
		assert.JSONEq(t, `{"type":"message_delivered"}`, string(got))
	case <-time.After(2 * time.Second):
		t.Fatal("push not dispatched")
	}
}

func TestIsOnlineIsLocalInKafkaMode(t *testing.T) {
	registry := wsgateway.NewRegistry()
	transport := newFakeTransport()
	server := NewChatServer(registry, NewKafkaBroker(registry, transport), ConnOptions{})
	registry.Register("U1", NewUserConn(nil, "U1", ConnOptions{}))

	assert.True(t, server.IsOnline("U1"))
	// U2 连在其他实例：推送经 Kafka 交付，但在线状态只看本机
	assert.True(t, server.PushToUser(context.Background(), "U2", NewEvent(EventMessageDelivered, "hi")))
	assert.False(t, server.IsOnline("U2"))
	require.Len(t, transport.written, 1)
}

// ==================== websocket lifecycle ====================

type echoHandler struct{}

func (echoHandler) HandleIntent(_ context.Context, userId string, intent Intent) *Event {
	ev := NewEvent(EventMessageSent, map[string]string{"from": userId, "intent": intent.Type})
	return &ev
}

func newWSServer(t *testing.T, cs *ChatServer, userId string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		cs.Attach(context.Background(), userId, conn)
	}))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev map[string]any
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestAttachLifecycle(t *testing.T) {
	registry := wsgateway.NewRegistry()
	cs := NewChatServer(registry, NewChannelBroker(registry), ConnOptions{})
	cs.SetIntentHandler(echoHandler{})

	srv := newWSServer(t, cs, "U1")
	defer srv.Close()

	client := dial(t, srv)
	require.Eventually(t, func() bool { return cs.IsOnline("U1") }, 2*time.Second, 10*time.Millisecond)

	// 上行指令由 handler 处理，回包只发给本连接
	require.NoError(t, client.WriteJSON(map[string]any{"type": IntentMarkRead, "data": map[string]string{"userId": "U2"}}))
	ev := readEvent(t, client)
	assert.Equal(t, EventMessageSent, ev["type"])
	assert.Equal(t, "U1", ev["data"].(map[string]any)["from"])

	// 非法 JSON 返回 error 事件，连接保持
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("not json")))
	ev = readEvent(t, client)
	assert.Equal(t, EventError, ev["type"])

	// 服务端推送
	assert.True(t, cs.PushToUser(context.Background(), "U1", NewEvent(EventMessageDelivered, map[string]string{"content": "hello"})))
	ev = readEvent(t, client)
	assert.Equal(t, EventMessageDelivered, ev["type"])

	require.NoError(t, client.Close())
	assert.Eventually(t, func() bool { return !cs.IsOnline("U1") }, 2*time.Second, 10*time.Millisecond)
}

func TestAttachSupersedesPreviousConnection(t *testing.T) {
	registry := wsgateway.NewRegistry()
	cs := NewChatServer(registry, NewChannelBroker(registry), ConnOptions{})

	srv := newWSServer(t, cs, "U1")
	defer srv.Close()

	first := dial(t, srv)
	require.Eventually(t, func() bool { return cs.IsOnline("U1") }, 2*time.Second, 10*time.Millisecond)
	h1, _ := registry.Lookup("U1")

	second := dial(t, srv)
	defer second.Close()
	require.Eventually(t, func() bool {
		h, ok := registry.Lookup("U1")
		return ok && h.ConnId() != h1.ConnId()
	}, 2*time.Second, 10*time.Millisecond)

	// 旧连接被服务端关闭
	require.NoError(t, first.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := first.ReadMessage()
	assert.Error(t, err)

	assert.Equal(t, 1, registry.Count())
	assert.True(t, cs.PushToUser(context.Background(), "U1", NewEvent(EventMessageDelivered, "x")))
	assert.Equal(t, EventMessageDelivered, readEvent(t, second)["type"])
}
