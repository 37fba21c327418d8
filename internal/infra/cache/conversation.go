package cache

import (
	"context"
	"time"

	chatdomain "github.com/saulomartins80/finnextho-bfa-go/internal/chat/domain"
)

// ConversationStore keeps conversation context per chatId with a per-entry TTL.
// It implements chat/port.ConversationContextStore.
type ConversationStore struct {
	items *InMemory[chatdomain.ConversationContext]
}

// NewConversationStore creates a store whose entries expire after defaultTTL
// unless SetConversationContext is given a different ttl.
func NewConversationStore(defaultTTL time.Duration) *ConversationStore {
	return &ConversationStore{items: New[chatdomain.ConversationContext](defaultTTL)}
}

// SetConversationContext stores a copy of conv under chatID.
func (s *ConversationStore) SetConversationContext(_ context.Context, chatID string, conv *chatdomain.ConversationContext, ttl time.Duration) error {
	if conv == nil {
		s.items.Delete(chatID)
		return nil
	}
	c := *conv
	c.ChatID = chatID
	c.Turns = append([]chatdomain.ConversationTurn(nil), conv.Turns...)
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	s.items.SetWithTTL(chatID, c, ttl)
	return nil
}

// GetConversationContext returns the stored context, or nil when absent or expired.
func (s *ConversationStore) GetConversationContext(_ context.Context, chatID string) (*chatdomain.ConversationContext, error) {
	c, ok := s.items.Get(chatID)
	if !ok {
		return nil, nil
	}
	c.Turns = append([]chatdomain.ConversationTurn(nil), c.Turns...)
	return &c, nil
}

// Close stops the background sweep.
func (s *ConversationStore) Close() { s.items.Close() }
