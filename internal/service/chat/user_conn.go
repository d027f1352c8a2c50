package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"friend_chat_server/internal/infrastructure/metrics"
	"friend_chat_server/pkg/constants"
	"friend_chat_server/pkg/errorx"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrConnClosed 连接已关闭，推送被丢弃
	ErrConnClosed = errors.New("chat: connection closed")
	// ErrSendBufferFull 客户端消费过慢，推送被丢弃
	ErrSendBufferFull = errors.New("chat: send buffer full")
)

// Upgrader 允许跨域握手，前后端分离部署时前端与后端不同源
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// IntentHandler 处理一条上行指令，返回需要回给本连接的事件（可为 nil）
type IntentHandler interface {
	HandleIntent(ctx context.Context, userId string, intent Intent) *Event
}

// ConnOptions 单连接参数
type ConnOptions struct {
	SendBufferSize int
	ReadLimit      int64
	RateLimit      float64 // 每秒上行指令数
	RateBurst      int
}

func (o ConnOptions) withDefaults() ConnOptions {
	if o.SendBufferSize <= 0 {
		o.SendBufferSize = constants.CHANNEL_SIZE
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = constants.WS_READ_LIMIT
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 10
	}
	if o.RateBurst <= 0 {
		o.RateBurst = 20
	}
	return o
}

// UserConn 一个用户的一条 WebSocket 连接
// send 通道从不关闭，关闭连接通过 done 广播，Push 因此不会向已关闭通道写入
type UserConn struct {
	id      string
	userId  string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter
	opts    ConnOptions
}

// NewUserConn 包装已升级的连接，身份来自握手时的 Token
func NewUserConn(conn *websocket.Conn, userId string, opts ConnOptions) *UserConn {
	opts = opts.withDefaults()
	return &UserConn{
		id:      uuid.NewString(),
		userId:  userId,
		conn:    conn,
		send:    make(chan []byte, opts.SendBufferSize),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		opts:    opts,
	}
}

func (c *UserConn) ConnId() string { return c.id }

func (c *UserConn) UserId() string { return c.userId }

// Done 连接关闭后可读
func (c *UserConn) Done() <-chan struct{} { return c.done }

// Push 非阻塞入队
func (c *UserConn) Push(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		return ErrSendBufferFull
	}
}

// pushEvent 序列化并推送给本连接
func (c *UserConn) pushEvent(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		zap.L().Error("marshal ws event", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	if err := c.Push(payload); err != nil {
		zap.L().Debug("drop ws event", zap.String("user_id", c.userId), zap.String("type", ev.Type), zap.Error(err))
	}
}

// Close 关闭连接，可重复调用
func (c *UserConn) Close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// writePump 唯一的写协程：发送队列中的事件并定时 ping
func (c *UserConn) writePump() {
	ticker := time.NewTicker(constants.WS_PING_PERIOD)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(constants.WS_WRITE_WAIT))
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(constants.WS_WRITE_WAIT))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				zap.L().Debug("ws write failed", zap.String("user_id", c.userId), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(constants.WS_WRITE_WAIT))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 唯一的读协程：解析上行指令交给 handler，返回即代表连接断开
func (c *UserConn) readPump(ctx context.Context, handler IntentHandler) {
	c.conn.SetReadLimit(c.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(constants.WS_PONG_WAIT))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(constants.WS_PONG_WAIT))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.L().Info("ws closed unexpectedly", zap.String("user_id", c.userId), zap.Error(err))
			}
			return
		}

		var intent Intent
		if err := json.Unmarshal(data, &intent); err != nil || intent.Type == "" {
			c.pushEvent(ErrorEvent("", errorx.ErrInvalidParam))
			continue
		}
		metrics.IncWSEvent(intent.Type)

		if !c.limiter.Allow() {
			c.pushEvent(ErrorEvent(intent.Type, errorx.ErrTooManyRequests))
			continue
		}
		if handler == nil {
			continue
		}
		if reply := handler.HandleIntent(ctx, c.userId, intent); reply != nil {
			c.pushEvent(*reply)
		}
	}
}
