package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrapf(cause, CodeDBError, "创建消息 uuid=%s", "M1")

	assert.Equal(t, CodeDBError, GetCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "创建消息 uuid=M1: connection refused", err.Error())
}

func TestGetCodeDefaultsToServerBusy(t *testing.T) {
	assert.Equal(t, CodeServerBusy, GetCode(errors.New("boom")))
}

func TestHasCodeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("accept: %w", ErrRequestNotFound)

	assert.True(t, HasCode(err, CodeRequestNotFound))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(nil, CodeRequestNotFound))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(Wrap(errors.New("record not found"), CodeNotFound, "查询用户")))
	assert.True(t, IsNotFound(errors.New("record not found")))
	assert.False(t, IsNotFound(ErrServerBusy))
	assert.False(t, IsNotFound(nil))
}

func TestPublicHidesInternalErrors(t *testing.T) {
	code, msg := Public(Wrap(errors.New("dial tcp: refused"), CodeDBError, "查询用户"))
	assert.Equal(t, CodeServerBusy, code)
	assert.Equal(t, ErrServerBusy.Msg, msg)

	code, msg = Public(errors.New("plain"))
	assert.Equal(t, CodeServerBusy, code)
	assert.Equal(t, ErrServerBusy.Msg, msg)

	code, msg = Public(fmt.Errorf("send: %w", ErrNotFriends))
	assert.Equal(t, CodeNotFriends, code)
	assert.Equal(t, ErrNotFriends.Msg, msg)
}
