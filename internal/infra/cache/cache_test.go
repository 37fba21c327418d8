package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
	"github.com/saulomartins80/finnextho-bfa-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, "value1", val)
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	_, ok := c.Get("nonexistent")
	assert.False(t, ok)
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get("key1")
	assert.False(t, ok, "expected cache entry to be expired")
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	c := cache.New[int](0)
	defer c.Close()

	c.Set("k", 42)
	time.Sleep(10 * time.Millisecond)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestCache_SetWithTTLOverridesDefault(t *testing.T) {
	c := cache.New[string](0)
	defer c.Close()

	c.SetWithTTL("short", "x", 20*time.Millisecond)
	c.Set("forever", "y")
	time.Sleep(50 * time.Millisecond)

	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("forever")
	assert.True(t, ok)
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_ConcurrentSameKey(t *testing.T) {
	c := cache.New[int](0)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Set("same", n)
		}(i)
		go func() {
			defer wg.Done()
			c.Get("same")
		}()
	}
	wg.Wait()

	_, ok := c.Get("same")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestConversationStore_RoundTripAndTTL(t *testing.T) {
	s := cache.NewConversationStore(time.Minute)
	defer s.Close()
	ctx := context.Background()

	conv := &chatdomain.ConversationContext{
		UserID: "u1",
		Turns:  []chatdomain.ConversationTurn{{Sender: chatdomain.SenderUser, Content: "gastei 50"}},
	}
	require.NoError(t, s.SetConversationContext(ctx, "chat-1", conv, 30*time.Millisecond))

	got, err := s.GetConversationContext(ctx, "chat-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "chat-1", got.ChatID)
	assert.Len(t, got.Turns, 1)
	assert.False(t, got.UpdatedAt.IsZero())

	// mutating the caller's slice must not leak into the store
	conv.Turns[0].Content = "changed"
	got, _ = s.GetConversationContext(ctx, "chat-1")
	assert.Equal(t, "gastei 50", got.Turns[0].Content)

	time.Sleep(60 * time.Millisecond)
	got, err = s.GetConversationContext(ctx, "chat-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
