package creations

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"quickai-backend/internal/entitlements"
	sharedauth "quickai-backend/internal/shared/auth"
	"quickai-backend/internal/shared/server/middleware"
)

func newHandlerEnv(t *testing.T) (*gin.Engine, *Service, *entitlements.MemoryStore) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	ents := entitlements.NewMemoryStore()
	svc := &Service{Repo: NewMemoryRepo(), Ents: ents}

	r := gin.New()
	r.Use(middleware.Auth(ents))
	NewHandler(svc).RegisterRoutes(r.Group("/api/user"))
	return r, svc, ents
}

func authHeader(t *testing.T, userID string) string {
	t.Helper()
	token, err := sharedauth.SignJWT(sharedauth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
	})
	if err != nil {
		t.Fatalf("sign jwt: %v", err)
	}
	return "Bearer " + token
}

func seedCreation(t *testing.T, svc *Service, userID string, typ Type, publish bool) Creation {
	t.Helper()
	creation := Creation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Prompt:    "p",
		Content:   "out",
		Type:      typ,
		Publish:   publish,
		Likes:     []string{},
		CreatedAt: time.Now().UTC(),
	}
	if err := svc.Repo.Create(context.Background(), creation); err != nil {
		t.Fatalf("seed creation: %v", err)
	}
	return creation
}

func do(t *testing.T, r *gin.Engine, method, path, userID string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader(t, userID))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestGetUserCreations_OnlyOwn(t *testing.T) {
	r, svc, _ := newHandlerEnv(t)
	seedCreation(t, svc, "user-a", TypeArticle, false)
	seedCreation(t, svc, "user-b", TypeArticle, false)

	rec := do(t, r, http.MethodGet, "/api/user/get-user-creations", "user-a", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	list, _ := body["creations"].([]any)
	if len(list) != 1 {
		t.Fatalf("creations = %v", body["creations"])
	}
}

func TestGetPublishedCreations_FeedOnlyHasPublishedImages(t *testing.T) {
	r, svc, _ := newHandlerEnv(t)
	seedCreation(t, svc, "user-a", TypeImage, true)
	seedCreation(t, svc, "user-a", TypeImage, false)
	seedCreation(t, svc, "user-a", TypeArticle, true)

	rec := do(t, r, http.MethodGet, "/api/user/get-published-creations", "user-b", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	list, _ := body["creations"].([]any)
	if len(list) != 1 {
		t.Fatalf("feed = %v", body["creations"])
	}
}

func TestToggleLike_MessagesFollowState(t *testing.T) {
	r, svc, _ := newHandlerEnv(t)
	creation := seedCreation(t, svc, "user-a", TypeImage, true)

	rec := do(t, r, http.MethodPost, "/api/user/toggle-like-creations", "user-b", gin.H{"creationId": creation.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if msg := decode(t, rec)["message"]; msg != "Creation liked" {
		t.Fatalf("message = %v", msg)
	}

	rec = do(t, r, http.MethodPost, "/api/user/toggle-like-creations", "user-b", gin.H{"creationId": creation.ID})
	if msg := decode(t, rec)["message"]; msg != "Like removed" {
		t.Fatalf("message = %v", msg)
	}
}

func TestToggleLike_UnknownCreation(t *testing.T) {
	r, _, _ := newHandlerEnv(t)

	rec := do(t, r, http.MethodPost, "/api/user/toggle-like-creations", "user-b", gin.H{"creationId": "missing"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if msg := decode(t, rec)["message"]; msg != "Creation not found" {
		t.Fatalf("message = %v", msg)
	}
}

func TestToggleLike_MissingID(t *testing.T) {
	r, _, _ := newHandlerEnv(t)

	rec := do(t, r, http.MethodPost, "/api/user/toggle-like-creations", "user-b", gin.H{"creationId": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestTogglePublish_NonOwnerSeesNotFound(t *testing.T) {
	r, svc, _ := newHandlerEnv(t)
	creation := seedCreation(t, svc, "user-a", TypeImage, false)

	rec := do(t, r, http.MethodPost, "/api/user/toggle-publish-creation", "user-b", gin.H{"creationId": creation.ID})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestTogglePublish_FlipsState(t *testing.T) {
	r, svc, _ := newHandlerEnv(t)
	creation := seedCreation(t, svc, "user-a", TypeImage, false)

	rec := do(t, r, http.MethodPost, "/api/user/toggle-publish-creation", "user-a", gin.H{"creationId": creation.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["message"] != "Creation published" || body["publish"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestMe_ReturnsPlanAndUsage(t *testing.T) {
	r, _, ents := newHandlerEnv(t)
	ents.SetPlan(context.Background(), "user-a", entitlements.PlanPremium)

	rec := do(t, r, http.MethodGet, "/api/user/me", "user-a", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["plan"] != "premium" {
		t.Fatalf("plan = %v", body["plan"])
	}
	if body["userId"] != "user-a" {
		t.Fatalf("userId = %v", body["userId"])
	}
}
