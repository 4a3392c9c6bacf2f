package creations

import "context"

// Repo defines persistence operations for creations.
type Repo interface {
	Create(ctx context.Context, creation Creation) error
	GetByID(ctx context.Context, creationID string) (Creation, error)
	ListByUser(ctx context.Context, userID string) ([]Creation, error)
	// ListPublished returns published image creations, newest first.
	ListPublished(ctx context.Context) ([]Creation, error)
	// ToggleLike flips userID's membership in the creation's like set and
	// reports the new membership.
	ToggleLike(ctx context.Context, creationID, userID string) (liked bool, err error)
	// SetPublish updates the publish flag; the creation must be an image.
	SetPublish(ctx context.Context, creationID string, publish bool) error
}
