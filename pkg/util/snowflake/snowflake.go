package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"friend_chat_server/internal/config"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
)

// Init 初始化雪花算法节点，重复调用无副作用
func Init() {
	nodeOnce.Do(func() {
		machineID := config.GetConfig().SnowflakeConfig.MachineID
		if machineID < 0 || machineID > 1023 {
			zap.L().Warn("Invalid MachineID in config, using default value 1", zap.Int64("machineID", machineID))
			machineID = 1
		}
		var err error
		node, err = snowflake.NewNode(machineID)
		if err != nil {
			zap.L().Fatal("Failed to initialize snowflake node", zap.Error(err))
		}
		zap.L().Info("Snowflake node initialized", zap.Int64("machineID", machineID))
	})
}

// GenerateID 生成雪花 ID (int64)
func GenerateID() int64 {
	Init()
	return node.Generate().Int64()
}

// GenerateIDString 生成雪花 ID (string)，避免前端精度丢失
func GenerateIDString() string {
	Init()
	return node.Generate().String()
}

// 业务 ID 前缀
const (
	PrefixUser    = "U"
	PrefixGroup   = "G"
	PrefixMessage = "M"
)

// NewUserId 生成用户 ID，如 U1790152300921094144
func NewUserId() string {
	return PrefixUser + GenerateIDString()
}

// NewGroupId 生成群组 ID
func NewGroupId() string {
	return PrefixGroup + GenerateIDString()
}

// NewMessageId 生成私聊/群聊消息 ID
func NewMessageId() string {
	return PrefixMessage + GenerateIDString()
}
