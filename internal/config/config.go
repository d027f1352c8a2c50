// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName   string `toml:"appName"`   // 应用名称，用于日志标识等
	Host      string `toml:"host"`      // 服务器监听地址，如 "0.0.0.0"
	Port      int    `toml:"port"`      // 服务器监听端口，如 8000
	Mode      string `toml:"mode"`      // 运行模式：debug / release
	SslEnable bool   `toml:"sslEnable"` // 是否直接以 HTTPS 方式监听
	CertFile  string `toml:"certFile"`  // TLS 证书路径
	KeyFile   string `toml:"keyFile"`   // TLS 私钥路径
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
	MaxOpenConns int    `toml:"maxOpenConns"`
	MaxIdleConns int    `toml:"maxIdleConns"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"` // 无密码留空
	Db           int    `toml:"db"`
	WorkerNum    int    `toml:"workerNum"`    // 异步缓存任务 Worker 数
	TaskChanSize int    `toml:"taskChanSize"` // 异步缓存任务缓冲区
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig 实时推送的投递模式配置
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // "channel"（单机）或 "kafka"（多实例）
	HostPort    string        `toml:"hostPort"`    // 如 "localhost:9092"
	PushTopic   string        `toml:"pushTopic"`   // 推送事件主题
	Timeout     time.Duration `toml:"timeout"`     // 读写超时（秒）
}

// RabbitMQConfig 好友关系完整性事件的发布配置
// url 为空时使用 noop 发布器
type RabbitMQConfig struct {
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret             string `toml:"secret"`             // JWT 签名密钥，建议 32 字符以上
	AccessTokenExpiry  int    `toml:"accessTokenExpiry"`  // Access Token 有效期（分钟）
	RefreshTokenExpiry int    `toml:"refreshTokenExpiry"` // Refresh Token 有效期（小时）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 范围 0-1023，多实例部署时每台机器需唯一
}

// WsConfig WebSocket 连接配置
type WsConfig struct {
	SendBufferSize int     `toml:"sendBufferSize"` // 单连接待发送缓冲
	ReadLimit      int64   `toml:"readLimit"`      // 单帧最大字节数
	RateLimit      float64 `toml:"rateLimit"`      // 每秒允许的上行指令数
	RateBurst      int     `toml:"rateBurst"`
}

// ReconcileConfig 好友关系修复任务配置
type ReconcileConfig struct {
	IntervalSeconds int `toml:"intervalSeconds"` // 0 表示不启动
	BatchSize       int `toml:"batchSize"`
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	RabbitMQConfig  `toml:"rabbitmqConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
	WsConfig        `toml:"wsConfig"`
	ReconcileConfig `toml:"reconcileConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件，找到第一个可用的即停止
func LoadConfig() error {
	paths := []string{
		"configs/config_local.toml", // 本地开发配置（优先）
		"configs/config.toml",
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
		config.applyDefaults()
	}
	return config
}

// applyDefaults 为未配置的字段填充默认值
func (c *Config) applyDefaults() {
	if c.AppName == "" {
		c.AppName = "friend_chat_server"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8000
	}
	if c.Mode == "" {
		c.Mode = "debug"
	}
	if c.MessageMode == "" {
		c.MessageMode = "channel"
	}
	if c.PushTopic == "" {
		c.PushTopic = "chat_push"
	}
	if c.KafkaConfig.Timeout == 0 {
		c.KafkaConfig.Timeout = 1
	}
	if c.Exchange == "" {
		c.Exchange = "chat.integrity"
	}
	if c.RedisConfig.WorkerNum == 0 {
		c.RedisConfig.WorkerNum = 15
	}
	if c.TaskChanSize == 0 {
		c.TaskChanSize = 3000
	}
	if c.AccessTokenExpiry == 0 {
		c.AccessTokenExpiry = 60
	}
	if c.RefreshTokenExpiry == 0 {
		c.RefreshTokenExpiry = 168
	}
	if c.RateLimit == 0 {
		c.RateLimit = 10
	}
	if c.RateBurst == 0 {
		c.RateBurst = 20
	}
	if c.BatchSize == 0 {
		c.BatchSize = 100
	}
}
