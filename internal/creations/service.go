package creations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"quickai-backend/internal/entitlements"
	"quickai-backend/internal/events"
	"quickai-backend/internal/shared/metrics"
	"quickai-backend/internal/shared/telemetry"
)

// GenerateFunc produces the content payload for a creation. It is invoked
// only after the entitlement gate has passed.
type GenerateFunc func(ctx context.Context) (string, error)

// Service is the transactional boundary of every generation request:
// gate check, backend call, persist, usage consumption, event fan-out.
type Service struct {
	Repo   Repo
	Ents   entitlements.Store
	Events events.Client
	Feed   *FeedCache
}

// Record runs the full creation workflow. The gate is checked before the
// generation backend is invoked so a rejected request never spends an
// external call, and the free usage counter is consumed only after the
// row is persisted: a failed generation or insert never costs quota.
func (s *Service) Record(ctx context.Context, ident entitlements.Snapshot, draft Draft, gate Gate, generate GenerateFunc) (Creation, error) {
	if ident.UserID == "" {
		return Creation{}, errors.New("user id is required")
	}
	if !draft.Type.Valid() {
		return Creation{}, errors.New("unknown creation type")
	}

	switch gate {
	case GatePremiumOnly:
		if !ident.Plan.Premium() {
			metrics.IncQuotaRejected()
			return Creation{}, entitlements.ErrPlanRequired
		}
	case GateUsageCounted:
		if !ident.Plan.Premium() && ident.FreeUsage >= entitlements.FreeLimit {
			metrics.IncQuotaRejected()
			return Creation{}, entitlements.ErrQuotaExceeded
		}
	}

	metrics.IncGenerationStarted()
	startedAt := time.Now().UTC()

	content, err := generate(ctx)
	if err != nil {
		metrics.IncGenerationFailed()
		return Creation{}, err
	}

	creation := Creation{
		ID:        uuid.NewString(),
		UserID:    ident.UserID,
		Prompt:    draft.Prompt,
		Content:   content,
		Type:      draft.Type,
		Publish:   draft.Publish,
		Likes:     []string{},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, creation); err != nil {
		metrics.IncGenerationFailed()
		return Creation{}, err
	}

	if gate == GateUsageCounted && !ident.Plan.Premium() {
		if _, err := s.Ents.ConsumeFree(ctx, ident.UserID); err != nil {
			// The row is already persisted; a lost increment (or a
			// concurrent request winning the last slot) is logged, not
			// surfaced to the user.
			telemetry.Warn("usage.consume_failed", map[string]any{
				"user_id":     ident.UserID,
				"creation_id": creation.ID,
				"error":       err.Error(),
			})
		}
	}

	metrics.IncGenerationCompleted()
	metrics.ObserveGenerationDurationMs(float64(time.Since(startedAt).Microseconds()) / 1000.0)

	s.publishEvent(ctx, events.KindCreationRecorded, creation)

	return creation, nil
}

// ListMine returns the user's creations, newest first.
func (s *Service) ListMine(ctx context.Context, userID string) ([]Creation, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	list, err := s.Repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Creation{}
	}
	return list, nil
}

// ListPublished returns the community feed: published images, newest first.
// The feed is served from Redis when a cache is configured.
func (s *Service) ListPublished(ctx context.Context) ([]Creation, error) {
	if cached, ok := s.Feed.Get(ctx); ok {
		return cached, nil
	}
	list, err := s.Repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Creation{}
	}
	s.Feed.Set(ctx, list)
	return list, nil
}

// ToggleLike flips the acting user's membership in the creation's like set.
// Any authenticated user may like any creation; toggling twice restores
// the original state.
func (s *Service) ToggleLike(ctx context.Context, userID, creationID string) (bool, error) {
	if userID == "" || creationID == "" {
		return false, errors.New("user id and creation id are required")
	}
	liked, err := s.Repo.ToggleLike(ctx, creationID, userID)
	if err != nil {
		return false, err
	}
	s.Feed.Invalidate(ctx)
	return liked, nil
}

// TogglePublish flips the publish flag of an owned image creation and
// reports the new state.
func (s *Service) TogglePublish(ctx context.Context, userID, creationID string) (bool, error) {
	if userID == "" || creationID == "" {
		return false, errors.New("user id and creation id are required")
	}
	creation, err := s.Repo.GetByID(ctx, creationID)
	if err != nil {
		return false, err
	}
	if creation.UserID != userID {
		return false, ErrNotOwner
	}
	if creation.Type != TypeImage {
		return false, ErrNotPublishable
	}

	next := !creation.Publish
	if err := s.Repo.SetPublish(ctx, creationID, next); err != nil {
		return false, err
	}
	s.Feed.Invalidate(ctx)
	if next {
		creation.Publish = next
		s.publishEvent(ctx, events.KindCreationPublished, creation)
	}
	return next, nil
}

func (s *Service) publishEvent(ctx context.Context, kind string, creation Creation) {
	if s.Events == nil {
		return
	}
	msg := events.Message{
		Kind:       kind,
		CreationID: creation.ID,
		UserID:     creation.UserID,
		Type:       string(creation.Type),
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Version:    1,
	}
	if err := s.Events.Publish(ctx, msg); err != nil {
		telemetry.Warn("event.publish_failed", map[string]any{
			"kind":        kind,
			"creation_id": creation.ID,
			"error":       err.Error(),
		})
	}
}
