// Package mq 封装消息中间件
// kafka_client.go: 跨实例实时推送使用的 Kafka Writer/Reader
// integrity_publisher.go: 好友关系完整性事件的 RabbitMQ 发布
package mq

import (
	"context"
	"time"

	"friend_chat_server/internal/config"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaClient Kafka 客户端，纯技术组件，不包含聊天业务逻辑
type KafkaClient struct {
	Producer *kafka.Writer
	Consumer *kafka.Reader
}

// NewKafkaClient 按配置创建 Writer 与 Reader
// 每个实例使用独立的消费组，保证每个实例都能收到全量推送事件
func NewKafkaClient(conf *config.KafkaConfig) *KafkaClient {
	timeout := conf.Timeout * time.Second
	groupID := "chat_push_" + uuid.NewString()

	client := &KafkaClient{
		Producer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.PushTopic,
			Balancer:               &kafka.Hash{}, // 同一用户的事件落在同一分区，保证顺序
			WriteTimeout:           timeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: false,
		},
		Consumer: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{conf.HostPort},
			Topic:          conf.PushTopic,
			CommitInterval: timeout,
			GroupID:        groupID,
			StartOffset:    kafka.LastOffset,
		}),
	}
	zap.L().Info("Kafka client initialized",
		zap.String("broker", conf.HostPort),
		zap.String("topic", conf.PushTopic),
		zap.String("group", groupID))
	return client
}

// WriteMessage 写入一条消息
func (k *KafkaClient) WriteMessage(ctx context.Context, key, value []byte) error {
	return k.Producer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

// ReadMessage 阻塞读取下一条消息，ctx 取消时返回错误
func (k *KafkaClient) ReadMessage(ctx context.Context) (kafka.Message, error) {
	return k.Consumer.ReadMessage(ctx)
}

// Close 关闭 Writer 与 Reader
func (k *KafkaClient) Close() {
	if err := k.Producer.Close(); err != nil {
		zap.L().Error("close kafka producer", zap.Error(err))
	}
	if err := k.Consumer.Close(); err != nil {
		zap.L().Error("close kafka consumer", zap.Error(err))
	}
}
