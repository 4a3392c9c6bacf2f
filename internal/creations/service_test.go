package creations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"quickai-backend/internal/entitlements"
	"quickai-backend/internal/gen"
)

func newTestService() (*Service, *MemoryRepo, *entitlements.MemoryStore) {
	repo := NewMemoryRepo()
	ents := entitlements.NewMemoryStore()
	svc := &Service{Repo: repo, Ents: ents}
	return svc, repo, ents
}

func staticGenerate(content string) GenerateFunc {
	return func(ctx context.Context) (string, error) {
		return content, nil
	}
}

func countingGenerate(calls *int, content string) GenerateFunc {
	return func(ctx context.Context) (string, error) {
		*calls++
		return content, nil
	}
}

func TestRecord_FreeUserConsumesUsage(t *testing.T) {
	svc, _, ents := newTestService()
	ctx := context.Background()

	snap, _ := ents.Get(ctx, "user-1")
	creation, err := svc.Record(ctx, snap, Draft{Prompt: "write about go", Type: TypeArticle}, GateUsageCounted, staticGenerate("an article"))
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if creation.Content != "an article" {
		t.Fatalf("content = %q", creation.Content)
	}

	after, _ := ents.Get(ctx, "user-1")
	if after.FreeUsage != 1 {
		t.Fatalf("free usage = %d, want 1", after.FreeUsage)
	}
}

func TestRecord_EleventhRequestRejectedBeforeBackend(t *testing.T) {
	svc, repo, ents := newTestService()
	ctx := context.Background()

	for i := 0; i < entitlements.FreeLimit; i++ {
		snap, _ := ents.Get(ctx, "user-1")
		if _, err := svc.Record(ctx, snap, Draft{Prompt: fmt.Sprintf("p%d", i), Type: TypeArticle}, GateUsageCounted, staticGenerate("out")); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	calls := 0
	snap, _ := ents.Get(ctx, "user-1")
	_, err := svc.Record(ctx, snap, Draft{Prompt: "one too many", Type: TypeArticle}, GateUsageCounted, countingGenerate(&calls, "out"))
	if !errors.Is(err, entitlements.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("backend called %d times for a rejected request", calls)
	}

	list, _ := repo.ListByUser(ctx, "user-1")
	if len(list) != entitlements.FreeLimit {
		t.Fatalf("persisted %d creations, want %d", len(list), entitlements.FreeLimit)
	}
}

func TestRecord_PremiumBypassesCounter(t *testing.T) {
	svc, _, ents := newTestService()
	ctx := context.Background()

	ents.SetPlan(ctx, "user-1", entitlements.PlanPremium)

	for i := 0; i < entitlements.FreeLimit+5; i++ {
		snap, _ := ents.Get(ctx, "user-1")
		if _, err := svc.Record(ctx, snap, Draft{Prompt: "p", Type: TypeArticle}, GateUsageCounted, staticGenerate("out")); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	after, _ := ents.Get(ctx, "user-1")
	if after.FreeUsage != 0 {
		t.Fatalf("premium usage incremented to %d", after.FreeUsage)
	}
}

func TestRecord_PremiumGateRejectsFreeWithoutCost(t *testing.T) {
	svc, repo, ents := newTestService()
	ctx := context.Background()

	calls := 0
	snap, _ := ents.Get(ctx, "user-1")
	_, err := svc.Record(ctx, snap, Draft{Prompt: "a cat", Type: TypeImage}, GatePremiumOnly, countingGenerate(&calls, "url"))
	if !errors.Is(err, entitlements.ErrPlanRequired) {
		t.Fatalf("expected ErrPlanRequired, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("backend called %d times", calls)
	}

	after, _ := ents.Get(ctx, "user-1")
	if after.FreeUsage != 0 {
		t.Fatalf("free usage = %d, want 0", after.FreeUsage)
	}
	list, _ := repo.ListByUser(ctx, "user-1")
	if len(list) != 0 {
		t.Fatalf("persisted %d creations, want 0", len(list))
	}
}

func TestRecord_PremiumGateNeverConsumesUsage(t *testing.T) {
	svc, _, ents := newTestService()
	ctx := context.Background()

	ents.SetPlan(ctx, "user-1", entitlements.PlanPremium)
	snap, _ := ents.Get(ctx, "user-1")
	if _, err := svc.Record(ctx, snap, Draft{Prompt: "a cat", Type: TypeImage}, GatePremiumOnly, staticGenerate("url")); err != nil {
		t.Fatalf("record: %v", err)
	}

	after, _ := ents.Get(ctx, "user-1")
	if after.FreeUsage != 0 {
		t.Fatalf("premium-only op consumed usage: %d", after.FreeUsage)
	}
}

func TestRecord_FailedGenerationPersistsNothing(t *testing.T) {
	svc, repo, ents := newTestService()
	ctx := context.Background()

	snap, _ := ents.Get(ctx, "user-1")
	_, err := svc.Record(ctx, snap, Draft{Prompt: "p", Type: TypeArticle}, GateUsageCounted, func(ctx context.Context) (string, error) {
		return "", fmt.Errorf("%w: backend down", gen.ErrGenerationFailed)
	})
	if !errors.Is(err, gen.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}

	list, _ := repo.ListByUser(ctx, "user-1")
	if len(list) != 0 {
		t.Fatalf("persisted %d creations after failure", len(list))
	}
	after, _ := ents.Get(ctx, "user-1")
	if after.FreeUsage != 0 {
		t.Fatalf("failed generation consumed usage: %d", after.FreeUsage)
	}
}

func TestRecord_RejectsUnknownType(t *testing.T) {
	svc, _, ents := newTestService()
	ctx := context.Background()

	snap, _ := ents.Get(ctx, "user-1")
	if _, err := svc.Record(ctx, snap, Draft{Prompt: "p", Type: Type("song")}, GateUsageCounted, staticGenerate("out")); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestToggleLike_SelfInverse(t *testing.T) {
	svc, _, ents := newTestService()
	ctx := context.Background()

	snap, _ := ents.Get(ctx, "owner")
	creation, err := svc.Record(ctx, snap, Draft{Prompt: "p", Type: TypeArticle}, GateUsageCounted, staticGenerate("out"))
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	liked, err := svc.ToggleLike(ctx, "fan", creation.ID)
	if err != nil || !liked {
		t.Fatalf("first toggle: liked=%v err=%v", liked, err)
	}
	liked, err = svc.ToggleLike(ctx, "fan", creation.ID)
	if err != nil || liked {
		t.Fatalf("second toggle: liked=%v err=%v", liked, err)
	}

	got, err := svc.Repo.GetByID(ctx, creation.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Likes) != 0 {
		t.Fatalf("likes = %v, want empty", got.Likes)
	}
}

func TestToggleLike_UnknownCreation_Service(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ToggleLike(context.Background(), "fan", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTogglePublish_OwnerOnlyAndImageOnly(t *testing.T) {
	svc, _, ents := newTestService()
	ctx := context.Background()

	ents.SetPlan(ctx, "owner", entitlements.PlanPremium)
	snap, _ := ents.Get(ctx, "owner")
	image, err := svc.Record(ctx, snap, Draft{Prompt: "a cat", Type: TypeImage}, GatePremiumOnly, staticGenerate("url"))
	if err != nil {
		t.Fatalf("record image: %v", err)
	}
	article, err := svc.Record(ctx, snap, Draft{Prompt: "p", Type: TypeArticle}, GateUsageCounted, staticGenerate("out"))
	if err != nil {
		t.Fatalf("record article: %v", err)
	}

	if _, err := svc.TogglePublish(ctx, "intruder", image.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if _, err := svc.TogglePublish(ctx, "owner", article.ID); !errors.Is(err, ErrNotPublishable) {
		t.Fatalf("expected ErrNotPublishable, got %v", err)
	}

	published, err := svc.TogglePublish(ctx, "owner", image.ID)
	if err != nil || !published {
		t.Fatalf("publish: published=%v err=%v", published, err)
	}

	feed, err := svc.ListPublished(ctx)
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != image.ID {
		t.Fatalf("feed = %v", feed)
	}

	published, err = svc.TogglePublish(ctx, "owner", image.ID)
	if err != nil || published {
		t.Fatalf("unpublish: published=%v err=%v", published, err)
	}
}

func TestListMine_FiltersByOwner(t *testing.T) {
	svc, _, ents := newTestService()
	ctx := context.Background()

	for _, user := range []string{"user-a", "user-a", "user-b"} {
		snap, _ := ents.Get(ctx, user)
		if _, err := svc.Record(ctx, snap, Draft{Prompt: "p", Type: TypeArticle}, GateUsageCounted, staticGenerate("out")); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	mine, err := svc.ListMine(ctx, "user-a")
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("user-a creations = %d, want 2", len(mine))
	}
	for _, c := range mine {
		if c.UserID != "user-a" {
			t.Fatalf("foreign creation in listing: %+v", c)
		}
	}
}
