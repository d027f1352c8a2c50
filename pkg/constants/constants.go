package constants

import "time"

const (
	CHANNEL_SIZE               = 100    // 连接发送缓冲默认大小
	REDIS_TIMEOUT              = 30     // 好友 ID 集合缓存时间（分钟）
	REFRESH_TOKEN_EXPIRY_HOURS = 168    // Refresh Token 有效期（小时），168小时 = 7天
	DEFAULT_PAGE_SIZE          = 50     // 消息分页默认条数
	MAX_PAGE_SIZE              = 200    // 消息分页最大条数
	MAX_PAGE_NUMBER            = 100000 // 分页最大页码
	MAX_CONTENT_LENGTH         = 4000   // 单条消息最大字符数
	WS_READ_LIMIT              = 8192   // 单帧最大字节数
	TIME_FORMAT                = "2006-01-02 15:04:05"
)

const (
	WS_WRITE_WAIT  = 10 * time.Second
	WS_PONG_WAIT   = 60 * time.Second
	WS_PING_PERIOD = WS_PONG_WAIT * 9 / 10
)

// 缓存键前缀
const (
	FRIEND_IDS_KEY_PREFIX = "friend_ids:"
	FRIEND_VER_KEY_PREFIX = "friend_ids_ver:" // 好友集合版本号，失效时递增
	USER_TOKEN_KEY_PREFIX = "user_token:"
)
