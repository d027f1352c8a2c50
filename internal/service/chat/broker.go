package chat

import (
	"context"

	wsgateway "friend_chat_server/internal/gateway/websocket"
)

// 投递模式
const (
	ModeChannel = "channel"
	ModeKafka   = "kafka"
)

// MessageBroker 把已序列化的事件送达某个用户的在线连接
//   - ChannelBroker: 单机，直接查本机注册表
//   - KafkaBroker:   多实例，本机不在线时经 Kafka 广播给其他实例
type MessageBroker interface {
	// Deliver 返回事件是否已交付（本机推送成功或已写入 Kafka）
	// 用户不在线返回 (false, nil)
	Deliver(ctx context.Context, userId string, payload []byte) (bool, error)
	// Start 启动后台消费，ctx 取消时退出
	Start(ctx context.Context)
	Close()
}

// deliverLocal 查本机注册表并推送
func deliverLocal(registry *wsgateway.Registry, userId string, payload []byte) (bool, error) {
	h, ok := registry.Lookup(userId)
	if !ok {
		return false, nil
	}
	if err := h.Push(payload); err != nil {
		return false, err
	}
	return true, nil
}
