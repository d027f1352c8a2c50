package handler

import (
	"context"
	"encoding/json"

	"friend_chat_server/internal/dto/request"
	"friend_chat_server/internal/service"
	"friend_chat_server/internal/service/chat"
	"friend_chat_server/pkg/errorx"

	"go.uber.org/zap"
)

// IntentDispatcher 把长连接上行指令分发到业务层
// 与 HTTP 接口共用请求结构体和校验规则
type IntentDispatcher struct {
	messageSvc service.MessageService
	groupSvc   service.GroupService
}

var _ chat.IntentHandler = (*IntentDispatcher)(nil)

// NewIntentDispatcher 创建指令分发器
func NewIntentDispatcher(messageSvc service.MessageService, groupSvc service.GroupService) *IntentDispatcher {
	return &IntentDispatcher{messageSvc: messageSvc, groupSvc: groupSvc}
}

// HandleIntent 返回回给发送方连接的事件，mark_read 成功时无回执
func (d *IntentDispatcher) HandleIntent(ctx context.Context, userId string, intent chat.Intent) *chat.Event {
	var (
		reply any
		err   error
	)
	switch intent.Type {
	case chat.IntentSendMessage:
		var req request.SendMessageRequest
		if err = decodeIntent(intent, &req); err == nil {
			reply, err = d.messageSvc.Send(ctx, userId, req)
		}
	case chat.IntentSendGroupMessage:
		var req request.SendGroupMessageRequest
		if err = decodeIntent(intent, &req); err == nil {
			if req.GroupId == "" {
				err = errorx.New(errorx.CodeInvalidParam, "group_id 不能为空")
			} else {
				reply, err = d.groupSvc.SendGroupMessage(ctx, userId, req.GroupId, req)
			}
		}
	case chat.IntentMarkRead:
		var req request.MarkReadRequest
		if err = decodeIntent(intent, &req); err == nil {
			_, err = d.messageSvc.MarkRead(ctx, userId, req.UserId)
		}
		if err == nil {
			return nil
		}
	default:
		err = errorx.New(errorx.CodeInvalidParam, "未知指令: "+intent.Type)
	}

	if err != nil {
		if code, _ := errorx.Public(err); code == errorx.CodeServerBusy {
			zap.L().Error("handle ws intent", zap.String("user_id", userId), zap.String("intent", intent.Type), zap.Error(err))
		}
		ev := chat.ErrorEvent(intent.Type, err)
		return &ev
	}
	ev := chat.NewEvent(chat.EventMessageSent, reply)
	return &ev
}

func decodeIntent(intent chat.Intent, obj any) error {
	if len(intent.Data) == 0 {
		return errorx.ErrInvalidParam
	}
	if err := json.Unmarshal(intent.Data, obj); err != nil {
		return errorx.ErrInvalidParam
	}
	if err := validateStruct(obj); err != nil {
		return errorx.New(errorx.CodeInvalidParam, err.Error())
	}
	return nil
}
