package errorx

import (
	"errors"
	"fmt"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
type CodeError struct {
	Code  int    // 业务错误码
	Msg   string // 错误消息
	cause error  // 被包装的底层错误
}

// Error 存在底层错误时返回 "消息: 底层错误"，否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, CodeNotFound, "用户不存在")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, CodeNotFound, "用户 %s 不存在", userId)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// HasCode 判断错误链上最外层的 CodeError 是否为指定错误码
func HasCode(err error, code int) bool {
	if err == nil {
		return false
	}
	var codeErr *CodeError
	return errors.As(err, &codeErr) && codeErr.Code == code
}

// 业务状态码常量定义
const (
	CodeSuccess         = 1000 // 成功
	CodeInvalidParam    = 1001 // 请求参数错误
	CodeUserExist       = 1002 // 用户已存在
	CodeUserNotExist    = 1003 // 用户不存在
	CodeInvalidPassword = 1004 // 密码错误
	CodeServerBusy      = 1005 // 服务繁忙
	CodeUnauthorized    = 1006 // 未授权/认证失败
	CodeForbidden       = 1007 // 无权限
	CodeNotFound        = 1008 // 资源不存在
	CodeDuplicateKey    = 1009 // 唯一键冲突
	CodeDBError         = 1010 // 数据库错误
	CodeCacheError      = 1011 // 缓存错误
	CodeTooManyRequests = 1012 // 请求过于频繁

	// 好友关系
	CodeInvalidTarget     = 1101 // 不能对自己发起申请
	CodeAlreadyFriends    = 1102 // 已经是好友
	CodeDuplicateRequest  = 1103 // 申请已发送，等待对方处理
	CodeReciprocalPending = 1104 // 对方已向你发出申请
	CodeRequestNotFound   = 1105 // 好友申请不存在

	// 私聊
	CodeNotFriends = 1201 // 非好友

	// 群组
	CodeGroupNotFound  = 1301 // 群组不存在
	CodeNotAMember     = 1302 // 不是群成员
	CodeAlreadyMember  = 1303 // 已是群成员
	CodeMemberNotFound = 1304 // 群成员不存在

	// CodeIntegrityError 好友关系双写只完成了一半，需要后台修复
	CodeIntegrityError = 1500
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 errors.Is 比较
var (
	ErrInvalidParam    = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy      = New(CodeServerBusy, "服务繁忙")
	ErrForbidden       = New(CodeForbidden, "无权执行该操作")
	ErrTooManyRequests = New(CodeTooManyRequests, "请求过于频繁，请稍后重试")

	ErrInvalidTarget     = New(CodeInvalidTarget, "不能添加自己为好友")
	ErrAlreadyFriends    = New(CodeAlreadyFriends, "你们已经是好友")
	ErrDuplicateRequest  = New(CodeDuplicateRequest, "好友申请已发送，请等待对方处理")
	ErrReciprocalPending = New(CodeReciprocalPending, "对方已向你发送好友申请，请直接通过")
	ErrRequestNotFound   = New(CodeRequestNotFound, "好友申请不存在")

	ErrNotFriends = New(CodeNotFriends, "只能给好友发送消息")

	ErrGroupNotFound  = New(CodeGroupNotFound, "群组不存在")
	ErrNotAMember     = New(CodeNotAMember, "你不是该群成员")
	ErrAlreadyMember  = New(CodeAlreadyMember, "该用户已是群成员")
	ErrMemberNotFound = New(CodeMemberNotFound, "该用户不是群成员")
)

// IsNotFound 检查错误是否为"未找到"类型（包括 gorm.ErrRecordNotFound）
func IsNotFound(err error) bool {
	var codeErr *CodeError
	if errors.As(err, &codeErr) && codeErr.Code == CodeNotFound {
		return true
	}
	return err != nil && err.Error() == "record not found"
}

// IsInternal 数据库、缓存等基础设施错误，不应把细节返回给客户端
func IsInternal(code int) bool {
	switch code {
	case CodeServerBusy, CodeDBError, CodeCacheError:
		return true
	}
	return false
}

// Public 返回可以展示给客户端的错误码与消息
// 基础设施错误统一为服务繁忙
func Public(err error) (int, string) {
	var codeErr *CodeError
	if !errors.As(err, &codeErr) || IsInternal(codeErr.Code) {
		return ErrServerBusy.Code, ErrServerBusy.Msg
	}
	return codeErr.Code, codeErr.Msg
}
