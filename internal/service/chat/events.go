// Package chat 实现实时通道
// 连接生命周期、上行指令解析、下行事件推送以及跨实例投递
package chat

import (
	"encoding/json"

	"friend_chat_server/pkg/errorx"
)

// 下行事件
const (
	EventMessageDelivered      = "message_delivered"
	EventGroupMessageDelivered = "group_message_delivered"
	EventMessageSent           = "message_sent"
	EventError                 = "error"
)

// 上行指令
const (
	IntentSendMessage      = "send_message"
	IntentSendGroupMessage = "send_group_message"
	IntentMarkRead         = "mark_read"
)

// Event 服务端推送给客户端的事件
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Intent 客户端通过长连接发来的指令，Data 按 Type 再解析
type Intent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ErrorData error 事件的负载，code 与 HTTP 接口一致
type ErrorData struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Intent string `json:"intent,omitempty"`
}

// NewEvent 构造事件
func NewEvent(eventType string, data any) Event {
	return Event{Type: eventType, Data: data}
}

// ErrorEvent 把错误转换为 error 事件，基础设施错误不暴露细节
func ErrorEvent(intent string, err error) Event {
	code, msg := errorx.Public(err)
	return NewEvent(EventError, ErrorData{Code: code, Msg: msg, Intent: intent})
}
