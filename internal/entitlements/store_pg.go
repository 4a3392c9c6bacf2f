package entitlements

import (
	"context"
	"database/sql"
	"errors"
)

// PGStore implements Store using Postgres.
type PGStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed entitlement store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

// Get returns the user's snapshot, creating a free-tier row if absent.
func (s *PGStore) Get(ctx context.Context, userID string) (Snapshot, error) {
	snap, err := s.read(ctx, userID)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, err
	}

	if _, err := s.DB.ExecContext(ctx, `
INSERT INTO entitlements (user_id, plan, free_usage)
VALUES ($1, 'free', 0)
ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return Snapshot{}, err
	}
	return s.read(ctx, userID)
}

// ConsumeFree increments the free usage counter by one, guarded against the
// limit in the same statement. Concurrent callers cannot both slip past the
// check: the UPDATE matches zero rows once the counter hits the limit.
func (s *PGStore) ConsumeFree(ctx context.Context, userID string) (Snapshot, error) {
	snap := Snapshot{UserID: userID}
	err := s.DB.QueryRowContext(ctx, `
UPDATE entitlements
SET free_usage = free_usage + 1, updated_at = now()
WHERE user_id = $1 AND free_usage < $2
RETURNING plan, free_usage`, userID, FreeLimit).Scan(&snap.Plan, &snap.FreeUsage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrQuotaExceeded
		}
		return Snapshot{}, err
	}
	return snap, nil
}

// SetPlan upserts the user's plan tier.
func (s *PGStore) SetPlan(ctx context.Context, userID string, plan Plan) (Snapshot, error) {
	snap := Snapshot{UserID: userID}
	err := s.DB.QueryRowContext(ctx, `
INSERT INTO entitlements (user_id, plan, free_usage)
VALUES ($1, $2, 0)
ON CONFLICT (user_id) DO UPDATE SET plan = EXCLUDED.plan, updated_at = now()
RETURNING plan, free_usage`, userID, plan).Scan(&snap.Plan, &snap.FreeUsage)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *PGStore) read(ctx context.Context, userID string) (Snapshot, error) {
	snap := Snapshot{UserID: userID}
	err := s.DB.QueryRowContext(ctx, `
SELECT plan, free_usage FROM entitlements WHERE user_id = $1`, userID).
		Scan(&snap.Plan, &snap.FreeUsage)
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

var _ Store = (*PGStore)(nil)
