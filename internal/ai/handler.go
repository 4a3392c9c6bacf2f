package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"quickai-backend/internal/creations"
	"quickai-backend/internal/entitlements"
	"quickai-backend/internal/extract"
	"quickai-backend/internal/gen"
	"quickai-backend/internal/imaging"
	"quickai-backend/internal/shared/server/middleware"
	"quickai-backend/internal/shared/server/respond"
	"quickai-backend/internal/shared/storage/object"
)

const (
	maxResumeBytes = 5 << 20
	maxImageBytes  = 20 << 20

	blogTitleMaxTokens    = 100
	resumeReviewMaxTokens = 1000
)

// Handler exposes the generation endpoints. Every endpoint runs through
// creations.Service.Record, which owns the gate check, persistence and
// usage accounting.
type Handler struct {
	Svc           *creations.Service
	Gen           gen.Gateway
	Imaging       *imaging.Client
	Store         object.ObjectStore
	PublicBaseURL string
}

// NewHandler constructs a Handler.
func NewHandler(svc *creations.Service, gw gen.Gateway, img *imaging.Client, store object.ObjectStore, publicBaseURL string) *Handler {
	return &Handler{
		Svc:           svc,
		Gen:           gw,
		Imaging:       img,
		Store:         store,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// RegisterRoutes attaches the generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate-article", h.generateArticle)
	rg.POST("/generate-blog-title", h.generateBlogTitle)
	rg.POST("/generate-image", h.generateImage)
	rg.POST("/remove-image-background", h.removeImageBackground)
	rg.POST("/remove-image-object", h.removeImageObject)
	rg.POST("/resume-review", h.resumeReview)
}

// RegisterFileRoutes attaches the stored-image route to the engine root.
// Stored images back the community feed, so the route is public.
func (h *Handler) RegisterFileRoutes(r gin.IRouter) {
	r.GET("/files/*key", h.serveFile)
}

type generateArticleRequest struct {
	Prompt string `json:"prompt"`
	Length int    `json:"length"`
}

func (h *Handler) generateArticle(c *gin.Context) {
	snap := middleware.SnapshotFromContext(c)

	var req generateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "prompt is required", nil)
		return
	}
	if req.Length <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "length must be positive", nil)
		return
	}

	draft := creations.Draft{Prompt: req.Prompt, Type: creations.TypeArticle}
	creation, err := h.Svc.Record(c.Request.Context(), snap, draft, creations.GateUsageCounted, func(ctx context.Context) (string, error) {
		return h.Gen.GenerateText(ctx, gen.TextRequest{
			Prompt:    req.Prompt,
			MaxTokens: req.Length,
		})
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondCreation(c, creation)
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func (h *Handler) generateBlogTitle(c *gin.Context) {
	snap := middleware.SnapshotFromContext(c)

	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "prompt is required", nil)
		return
	}

	draft := creations.Draft{Prompt: req.Prompt, Type: creations.TypeBlogTitle}
	creation, err := h.Svc.Record(c.Request.Context(), snap, draft, creations.GateUsageCounted, func(ctx context.Context) (string, error) {
		return h.Gen.GenerateText(ctx, gen.TextRequest{
			Prompt:    req.Prompt,
			MaxTokens: blogTitleMaxTokens,
		})
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondCreation(c, creation)
}

type generateImageRequest struct {
	Prompt  string `json:"prompt"`
	Publish bool   `json:"publish"`
}

func (h *Handler) generateImage(c *gin.Context) {
	snap := middleware.SnapshotFromContext(c)

	var req generateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "prompt is required", nil)
		return
	}

	draft := creations.Draft{Prompt: req.Prompt, Type: creations.TypeImage, Publish: req.Publish}
	creation, err := h.Svc.Record(c.Request.Context(), snap, draft, creations.GatePremiumOnly, func(ctx context.Context) (string, error) {
		image, err := h.Gen.GenerateImage(ctx, gen.ImageRequest{Prompt: req.Prompt})
		if err != nil {
			return "", err
		}
		return h.saveImage(ctx, snap.UserID, "generated.png", image)
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondCreation(c, creation)
}

func (h *Handler) removeImageBackground(c *gin.Context) {
	snap := middleware.SnapshotFromContext(c)

	image, fileName, ok := h.readImageUpload(c)
	if !ok {
		return
	}

	draft := creations.Draft{Prompt: "Remove background from image", Type: creations.TypeImage}
	creation, err := h.Svc.Record(c.Request.Context(), snap, draft, creations.GatePremiumOnly, func(ctx context.Context) (string, error) {
		transformed, err := h.Imaging.RemoveBackground(ctx, image, fileName)
		if err != nil {
			return "", err
		}
		return h.saveImage(ctx, snap.UserID, fileName, transformed)
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondCreation(c, creation)
}

func (h *Handler) removeImageObject(c *gin.Context) {
	snap := middleware.SnapshotFromContext(c)

	objectName := strings.TrimSpace(c.PostForm("object"))
	if objectName == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "object is required", nil)
		return
	}
	if len(strings.Fields(objectName)) > 1 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "object must be a single word", nil)
		return
	}

	image, fileName, ok := h.readImageUpload(c)
	if !ok {
		return
	}

	draft := creations.Draft{Prompt: fmt.Sprintf("Removed %s from image", objectName), Type: creations.TypeImage}
	creation, err := h.Svc.Record(c.Request.Context(), snap, draft, creations.GatePremiumOnly, func(ctx context.Context) (string, error) {
		transformed, err := h.Imaging.RemoveObject(ctx, image, fileName, objectName)
		if err != nil {
			return "", err
		}
		return h.saveImage(ctx, snap.UserID, fileName, transformed)
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondCreation(c, creation)
}

func (h *Handler) resumeReview(c *gin.Context) {
	snap := middleware.SnapshotFromContext(c)

	file, header, err := c.Request.FormFile("resume")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume file is required", nil)
		return
	}
	defer file.Close()

	// Size is rejected before any backend work happens.
	if header.Size > maxResumeBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Resume file size exceeds allowed size (5MB).", nil)
		return
	}

	data, err := readUpload(file, maxResumeBytes)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Resume file size exceeds allowed size (5MB).", nil)
		return
	}

	text, err := extract.TextFromBytes(c.Request.Context(), data, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Only PDF resumes are supported", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read resume file", nil)
		return
	}

	prompt := fmt.Sprintf("Review the following resume and provide constructive feedback on its strengths, weaknesses, and areas for improvement. Resume Content:\n\n%s", text)

	draft := creations.Draft{Prompt: "Review the uploaded resume", Type: creations.TypeResumeReview}
	creation, err := h.Svc.Record(c.Request.Context(), snap, draft, creations.GatePremiumOnly, func(ctx context.Context) (string, error) {
		return h.Gen.GenerateText(ctx, gen.TextRequest{
			Prompt:    prompt,
			MaxTokens: resumeReviewMaxTokens,
		})
	})
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondCreation(c, creation)
}

func (h *Handler) serveFile(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		return
	}

	body, err := h.Store.Open(c.Request.Context(), key)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		return
	}
	defer body.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		c.Abort()
	}
}

// saveImage stores the image bytes and returns its public URL, which is
// what gets persisted as the creation content.
func (h *Handler) saveImage(ctx context.Context, userID, fileName string, image []byte) (string, error) {
	key, _, _, err := h.Store.Save(ctx, userID, fileName, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return h.fileURL(key), nil
}

func (h *Handler) fileURL(key string) string {
	parts := strings.Split(key, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return h.PublicBaseURL + "/files/" + strings.Join(parts, "/")
}

func (h *Handler) readImageUpload(c *gin.Context) ([]byte, string, bool) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "image file is required", nil)
		return nil, "", false
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "image file is too large", nil)
		return nil, "", false
	}

	data, err := readUpload(file, maxImageBytes)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read image file", nil)
		return nil, "", false
	}
	return data, header.Filename, true
}

func readUpload(file multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errors.New("upload exceeds size limit")
	}
	return data, nil
}

func respondCreation(c *gin.Context, creation creations.Creation) {
	c.Set("creationId", creation.ID)
	c.Set("creationType", string(creation.Type))
	respond.OK(c, gin.H{"content": creation.Content, "creation": creation})
}

func (h *Handler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entitlements.ErrQuotaExceeded):
		respond.Error(c, http.StatusForbidden, "quota_exceeded", "Limit reached. Upgrade to continue.", nil)
	case errors.Is(err, entitlements.ErrPlanRequired):
		respond.Error(c, http.StatusPaymentRequired, "plan_required", "This feature is only available for premium subscriptions", nil)
	case errors.Is(err, gen.ErrGenerationFailed):
		respond.Error(c, http.StatusBadGateway, "generation_failed", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "generation request failed", nil)
	}
}
