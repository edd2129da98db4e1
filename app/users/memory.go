package users

import (
	"context"
	"sync"
	"time"
)

var _ Repository = (*MemoryRepository)(nil)

// MemoryRepository keeps users in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	users  map[int64]*Record
	nextID int64
	now    func() time.Time
}

// NewMemoryRepository creates an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[int64]*Record),
		now:   time.Now,
	}
}

// Get returns a copy of the stored user or ErrNotFound.
func (r *MemoryRepository) Get(_ context.Context, telegramID int64) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.users[telegramID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

// Add stores u unless its Telegram ID is taken.
func (r *MemoryRepository) Add(_ context.Context, u NewUser) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.TelegramID]; ok {
		return nil, ErrAlreadyExists
	}
	r.nextID++
	rec := &Record{
		ID:         r.nextID,
		TelegramID: u.TelegramID,
		FullName:   u.FullName,
		Username:   u.Username,
		Phone:      u.Phone,
		Age:        u.Age,
		CreatedAt:  r.now().UTC(),
	}
	r.users[u.TelegramID] = rec
	cp := *rec
	return &cp, nil
}

// Count returns the number of stored users.
func (r *MemoryRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}
