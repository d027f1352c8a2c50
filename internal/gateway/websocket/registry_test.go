package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct{ id string }

func (f *fakeHandle) ConnId() string { return f.id }
func (f *fakeHandle) Push(payload []byte) error { return nil }

func TestRegisterLastWins(t *testing.T) {
	r := NewRegistry()
	h1, h2 := &fakeHandle{"h1"}, &fakeHandle{"h2"}

	assert.Nil(t, r.Register("U1", h1))
	superseded := r.Register("U1", h2)
	assert.Same(t, h1, superseded)

	got, ok := r.Lookup("U1")
	require.True(t, ok)
	assert.Same(t, h2, got)

	// 旧连接注销不影响新连接
	_, ok = r.Deregister(h1)
	assert.False(t, ok)
	got, ok = r.Lookup("U1")
	require.True(t, ok)
	assert.Same(t, h2, got)
	assert.Equal(t, 1, r.Count())
}

func TestRegisterSameHandleTwice(t *testing.T) {
	r := NewRegistry()
	h := &fakeHandle{"h"}
	r.Register("U1", h)
	assert.Nil(t, r.Register("U1", h))
	assert.Equal(t, 1, r.Count())
}

func TestDeregisterIdempotent(t *testing.T) {
	r := NewRegistry()
	h := &fakeHandle{"h"}
	r.Register("U1", h)

	userId, ok := r.Deregister(h)
	assert.True(t, ok)
	assert.Equal(t, "U1", userId)

	_, ok = r.Deregister(h)
	assert.False(t, ok)
	assert.False(t, r.IsOnline("U1"))
	assert.Zero(t, r.Count())
}

func TestHandleMovedToAnotherUser(t *testing.T) {
	r := NewRegistry()
	h := &fakeHandle{"h"}
	r.Register("U1", h)
	r.Register("U2", h)

	assert.False(t, r.IsOnline("U1"))
	assert.True(t, r.IsOnline("U2"))

	userId, ok := r.Deregister(h)
	assert.True(t, ok)
	assert.Equal(t, "U2", userId)
	assert.Zero(t, r.Count())
}

func TestConcurrentLifecycles(t *testing.T) {
	r := NewRegistry()
	const users, rounds = 50, 100

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userId := fmt.Sprintf("U%d", i)
			for j := 0; j < rounds; j++ {
				h := &fakeHandle{fmt.Sprintf("%s-%d", userId, j)}
				r.Register(userId, h)
				if got, ok := r.Lookup(userId); ok {
					_ = got.ConnId()
				}
				r.Deregister(h)
			}
		}(i)
	}
	wg.Wait()

	assert.Zero(t, r.Count())
	r.mu.RLock()
	defer r.mu.RUnlock()
	assert.Empty(t, r.byHandle)
}
