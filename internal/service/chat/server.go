package chat

import (
	"context"
	"encoding/json"

	wsgateway "friend_chat_server/internal/gateway/websocket"
	"friend_chat_server/internal/infrastructure/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Pusher Service 层依赖的推送能力，由 ChatServer 实现
type Pusher interface {
	PushToUser(ctx context.Context, userId string, event Event) bool
	IsOnline(userId string) bool
}

var _ Pusher = (*ChatServer)(nil)

// ChatServer 聊天服务器聚合结构
// 持有本机连接注册表与投递方式，对 Service 层提供尽力而为的推送
type ChatServer struct {
	registry *wsgateway.Registry
	broker   MessageBroker
	handler  IntentHandler
	connOpts ConnOptions
}

// NewChatServer 创建聊天服务器实例
func NewChatServer(registry *wsgateway.Registry, broker MessageBroker, opts ConnOptions) *ChatServer {
	return &ChatServer{
		registry: registry,
		broker:   broker,
		connOpts: opts.withDefaults(),
	}
}

// SetIntentHandler 注入上行指令处理器
// handler 依赖 Service，Service 又依赖 ChatServer 推送，因此在组装完成后注入
func (s *ChatServer) SetIntentHandler(h IntentHandler) {
	s.handler = h
}

// Registry 本机连接注册表
func (s *ChatServer) Registry() *wsgateway.Registry {
	return s.registry
}

// IsOnline 用户是否在本机在线
// Kafka 模式下不感知其他实例上的连接，连在别的实例的用户返回 false
func (s *ChatServer) IsOnline(userId string) bool {
	return s.registry.IsOnline(userId)
}

// PushToUser 尽力推送，失败只记录日志，不影响已落库的消息
// 返回是否已交付
func (s *ChatServer) PushToUser(ctx context.Context, userId string, event Event) bool {
	payload, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("marshal push event", zap.String("type", event.Type), zap.Error(err))
		metrics.IncPush(event.Type, metrics.PushFailed)
		return false
	}

	delivered, err := s.broker.Deliver(ctx, userId, payload)
	switch {
	case err != nil:
		zap.L().Warn("push failed", zap.String("user_id", userId), zap.String("type", event.Type), zap.Error(err))
		metrics.IncPush(event.Type, metrics.PushFailed)
	case !delivered:
		zap.L().Debug("recipient offline", zap.String("user_id", userId), zap.String("type", event.Type))
		metrics.IncPush(event.Type, metrics.PushOffline)
	default:
		metrics.IncPush(event.Type, metrics.PushDelivered)
	}
	return delivered
}

// Attach 接管已升级的连接：注册、启动读写协程
// 同一用户的旧连接被顶替并关闭；连接断开时自动注销
func (s *ChatServer) Attach(ctx context.Context, userId string, conn *websocket.Conn) *UserConn {
	uc := NewUserConn(conn, userId, s.connOpts)
	s.attach(ctx, uc)
	go uc.writePump()
	go func() {
		uc.readPump(ctx, s.handler)
		s.detach(uc)
	}()
	return uc
}

func (s *ChatServer) attach(_ context.Context, uc *UserConn) {
	if old := s.registry.Register(uc.UserId(), uc); old != nil {
		if oldConn, ok := old.(interface{ Close() }); ok {
			oldConn.Close()
		}
		metrics.DecWSActive()
		zap.L().Info("ws connection superseded", zap.String("user_id", uc.UserId()), zap.String("old_conn", old.ConnId()))
	}
	metrics.IncWSActive()
	zap.L().Info("ws connected", zap.String("user_id", uc.UserId()), zap.String("conn_id", uc.ConnId()))
}

// detach 注销并关闭，可与推送并发执行
func (s *ChatServer) detach(uc *UserConn) {
	if _, ok := s.registry.Deregister(uc); ok {
		metrics.DecWSActive()
		zap.L().Info("ws disconnected", zap.String("user_id", uc.UserId()), zap.String("conn_id", uc.ConnId()))
	}
	uc.Close()
}

// Start 在独立协程中启动投递后台任务，立即返回
// Kafka 模式的消费循环会一直运行到 ctx 取消
func (s *ChatServer) Start(ctx context.Context) {
	go s.broker.Start(ctx)
}

// Close 关闭投递资源
func (s *ChatServer) Close() {
	s.broker.Close()
}
