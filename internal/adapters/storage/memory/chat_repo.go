package memory

import (
	"context"
	"sync"

	"kaupod/internal/domain/chat"
)

type chatRepo struct {
	mu     sync.RWMutex
	byUser map[string][]chat.Message
}

func NewChatRepo() chat.Repository {
	return &chatRepo{
		byUser: make(map[string][]chat.Message),
	}
}

func (r *chatRepo) Get(ctx context.Context, userID string) ([]chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs, ok := r.byUser[userID]
	if !ok {
		return nil, nil
	}

	out := make([]chat.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (r *chatRepo) Save(ctx context.Context, userID string, messages []chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := make([]chat.Message, len(messages))
	copy(msgs, messages)
	r.byUser[userID] = msgs
	return nil
}
