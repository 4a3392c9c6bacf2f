package creations

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-process Repo for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Creation
}

// NewMemoryRepo constructs an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Creation)}
}

func (r *MemoryRepo) Create(ctx context.Context, creation Creation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if creation.Likes == nil {
		creation.Likes = []string{}
	}
	r.data[creation.ID] = creation
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, creationID string) (Creation, error) {
	if err := ctx.Err(); err != nil {
		return Creation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	creation, ok := r.data[creationID]
	if !ok {
		return Creation{}, ErrNotFound
	}
	return cloneCreation(creation), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Creation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Creation
	for _, creation := range r.data {
		if creation.UserID == userID {
			out = append(out, cloneCreation(creation))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepo) ListPublished(ctx context.Context) ([]Creation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Creation
	for _, creation := range r.data {
		if creation.Publish && creation.Type == TypeImage {
			out = append(out, cloneCreation(creation))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepo) ToggleLike(ctx context.Context, creationID, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	creation, ok := r.data[creationID]
	if !ok {
		return false, ErrNotFound
	}
	for i, id := range creation.Likes {
		if id == userID {
			creation.Likes = append(creation.Likes[:i], creation.Likes[i+1:]...)
			r.data[creationID] = creation
			return false, nil
		}
	}
	creation.Likes = append(creation.Likes, userID)
	r.data[creationID] = creation
	return true, nil
}

func (r *MemoryRepo) SetPublish(ctx context.Context, creationID string, publish bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	creation, ok := r.data[creationID]
	if !ok {
		return ErrNotFound
	}
	creation.Publish = publish
	r.data[creationID] = creation
	return nil
}

func sortNewestFirst(list []Creation) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

func cloneCreation(creation Creation) Creation {
	likes := make([]string, len(creation.Likes))
	copy(likes, creation.Likes)
	creation.Likes = likes
	return creation
}

var _ Repo = (*MemoryRepo)(nil)
