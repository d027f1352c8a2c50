package chat

import (
	"context"

	wsgateway "friend_chat_server/internal/gateway/websocket"
)

// ChannelBroker 单机模式，不依赖外部消息队列
type ChannelBroker struct {
	registry *wsgateway.Registry
}

// NewChannelBroker 创建单机投递
func NewChannelBroker(registry *wsgateway.Registry) *ChannelBroker {
	return &ChannelBroker{registry: registry}
}

func (b *ChannelBroker) Deliver(_ context.Context, userId string, payload []byte) (bool, error) {
	return deliverLocal(b.registry, userId, payload)
}

func (b *ChannelBroker) Start(context.Context) {}

func (b *ChannelBroker) Close() {}

var _ MessageBroker = (*ChannelBroker)(nil)
