package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	wsgateway "friend_chat_server/internal/gateway/websocket"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaTransport KafkaBroker 依赖的读写能力，由 mq.KafkaClient 实现
type KafkaTransport interface {
	WriteMessage(ctx context.Context, key, value []byte) error
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close()
}

// pushEnvelope Kafka 中流转的推送事件
type pushEnvelope struct {
	UserId  string          `json:"userId"`
	Payload json.RawMessage `json:"payload"`
}

// KafkaBroker 多实例模式
// 目标用户在本机时直接推送；否则按 userId 作为 key 写入推送主题，
// 每个实例以独立消费组读取全量事件，只投递给本机在线的用户
type KafkaBroker struct {
	registry  *wsgateway.Registry
	transport KafkaTransport
}

// NewKafkaBroker 创建多实例投递
func NewKafkaBroker(registry *wsgateway.Registry, transport KafkaTransport) *KafkaBroker {
	return &KafkaBroker{
		registry:  registry,
		transport: transport,
	}
}

func (b *KafkaBroker) Deliver(ctx context.Context, userId string, payload []byte) (bool, error) {
	if _, ok := b.registry.Lookup(userId); ok {
		return deliverLocal(b.registry, userId, payload)
	}
	value, err := json.Marshal(pushEnvelope{UserId: userId, Payload: payload})
	if err != nil {
		return false, err
	}
	if err := b.transport.WriteMessage(ctx, []byte(userId), value); err != nil {
		return false, err
	}
	return true, nil
}

// Start 启动消费循环，阻塞直到 ctx 取消
func (b *KafkaBroker) Start(ctx context.Context) {
	for {
		msg, err := b.transport.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			zap.L().Error("kafka read push event", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		b.dispatch(msg.Value)
	}
}

// dispatch 本机在线则推送，不在线直接丢弃（消息已落库）
func (b *KafkaBroker) dispatch(value []byte) {
	var env pushEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		zap.L().Error("decode push envelope", zap.Error(err))
		return
	}
	if _, err := deliverLocal(b.registry, env.UserId, env.Payload); err != nil {
		zap.L().Warn("push from kafka failed", zap.String("user_id", env.UserId), zap.Error(err))
	}
}

func (b *KafkaBroker) Close() {
	b.transport.Close()
}

var _ MessageBroker = (*KafkaBroker)(nil)
