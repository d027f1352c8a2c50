package request

import (
	"math"
	"testing"

	"friend_chat_server/pkg/constants"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		req        PageRequest
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", PageRequest{}, 1, constants.DEFAULT_PAGE_SIZE, 0},
		{"second page", PageRequest{Page: 2, Limit: 20}, 2, 20, 20},
		{"limit capped", PageRequest{Page: 1, Limit: 10000}, 1, constants.MAX_PAGE_SIZE, 0},
		{"huge page capped", PageRequest{Page: math.MaxInt, Limit: constants.MAX_PAGE_SIZE}, constants.MAX_PAGE_NUMBER, constants.MAX_PAGE_SIZE, (constants.MAX_PAGE_NUMBER - 1) * constants.MAX_PAGE_SIZE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit, offset := tt.req.Normalize()
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
			assert.GreaterOrEqual(t, offset, 0)
		})
	}
}
