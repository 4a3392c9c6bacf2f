package creations

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"quickai-backend/internal/shared/server/middleware"
	"quickai-backend/internal/shared/server/respond"
)

// Handler wires the user-facing creation routes to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches user routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/get-user-creations", h.getUserCreations)
	rg.GET("/get-published-creations", h.getPublishedCreations)
	rg.POST("/toggle-like-creations", h.toggleLike)
	rg.POST("/toggle-publish-creation", h.togglePublish)
	rg.GET("/me", h.me)
}

func (h *Handler) getUserCreations(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	list, err := h.Svc.ListMine(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list creations", nil)
		return
	}

	respond.OK(c, gin.H{"creations": list})
}

func (h *Handler) getPublishedCreations(c *gin.Context) {
	list, err := h.Svc.ListPublished(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list creations", nil)
		return
	}

	respond.OK(c, gin.H{"creations": list})
}

type toggleRequest struct {
	CreationID string `json:"creationId"`
}

func (h *Handler) toggleLike(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.CreationID = strings.TrimSpace(req.CreationID)
	if req.CreationID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "creationId is required", nil)
		return
	}

	liked, err := h.Svc.ToggleLike(c.Request.Context(), userID, req.CreationID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Creation not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to toggle like", nil)
		}
		return
	}

	message := "Like removed"
	if liked {
		message = "Creation liked"
	}
	respond.OK(c, gin.H{"message": message})
}

func (h *Handler) togglePublish(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.CreationID = strings.TrimSpace(req.CreationID)
	if req.CreationID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "creationId is required", nil)
		return
	}

	published, err := h.Svc.TogglePublish(c.Request.Context(), userID, req.CreationID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotOwner):
			// Hide existence of other users' creations.
			respond.Error(c, http.StatusNotFound, "not_found", "Creation not found", nil)
		case errors.Is(err, ErrNotPublishable):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Only image creations can be published", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to toggle publish", nil)
		}
		return
	}

	message := "Creation unpublished"
	if published {
		message = "Creation published"
	}
	respond.OK(c, gin.H{"message": message, "publish": published})
}

func (h *Handler) me(c *gin.Context) {
	snap := middleware.SnapshotFromContext(c)

	respond.OK(c, gin.H{
		"userId":    snap.UserID,
		"email":     middleware.UserEmailFromContext(c),
		"name":      middleware.UserNameFromContext(c),
		"picture":   middleware.UserPictureFromContext(c),
		"plan":      snap.Plan,
		"freeUsage": snap.FreeUsage,
	})
}
