package storage

import (
	"context"
	"sync"
	"time"

	"gearinhere/internal/domain"
)

// DraftStore keeps drafts editable between generation and publication.
type DraftStore interface {
	Save(ctx context.Context, draft *domain.Draft) error
	Get(ctx context.Context, id string) (*domain.Draft, error)
	Ping(ctx context.Context) error
}

type memoryEntry struct {
	draft     domain.Draft
	expiresAt time.Time
}

// MemoryStore is a process-local DraftStore. Drafts expire after ttl.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]memoryEntry
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		drafts: make(map[string]memoryEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, draft *domain.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.drafts {
		if now.After(e.expiresAt) {
			delete(s.drafts, id)
		}
	}
	s.drafts[draft.ID] = memoryEntry{draft: copyDraft(draft), expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.drafts[id]
	if !ok || s.now().After(e.expiresAt) {
		return nil, domain.ErrDraftNotFound
	}
	d := copyDraft(&e.draft)
	return &d, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// copyDraft detaches the stored value from callers so edits go through Save.
func copyDraft(d *domain.Draft) domain.Draft {
	c := *d
	c.Notices = append([]string(nil), d.Notices...)
	if d.Snapshot != nil {
		snap := *d.Snapshot
		c.Snapshot = &snap
	}
	return c
}
