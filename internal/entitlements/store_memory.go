package entitlements

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for dev and tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]Snapshot
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Snapshot)}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensure(userID), nil
}

func (s *MemoryStore) ConsumeFree(ctx context.Context, userID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ensure(userID)
	if snap.FreeUsage >= FreeLimit {
		return Snapshot{}, ErrQuotaExceeded
	}
	snap.FreeUsage++
	s.data[userID] = snap
	return snap, nil
}

func (s *MemoryStore) SetPlan(ctx context.Context, userID string, plan Plan) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.ensure(userID)
	snap.Plan = plan
	s.data[userID] = snap
	return snap, nil
}

func (s *MemoryStore) ensure(userID string) Snapshot {
	snap, ok := s.data[userID]
	if !ok {
		snap = Snapshot{UserID: userID, Plan: PlanFree}
		s.data[userID] = snap
	}
	return snap
}

var _ Store = (*MemoryStore)(nil)
