package entitlements

import "context"

// Store is the per-user quota state repository. ConsumeFree must be an
// atomic conditional increment so that concurrent requests cannot both
// pass the limit check.
type Store interface {
	Get(ctx context.Context, userID string) (Snapshot, error)
	ConsumeFree(ctx context.Context, userID string) (Snapshot, error)
	SetPlan(ctx context.Context, userID string, plan Plan) (Snapshot, error)
}
