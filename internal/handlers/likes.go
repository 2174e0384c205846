package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"clipstream/api/internal/ids"
	"clipstream/api/internal/middleware"
	"clipstream/api/internal/models"
	"clipstream/api/internal/repository"
)

func (h HandlerSet) ToggleVideoLike(c *gin.Context) {
	h.toggleLike(c, models.LikeTargetVideo, c.Param("videoId"))
}

func (h HandlerSet) ToggleCommentLike(c *gin.Context) {
	h.toggleLike(c, models.LikeTargetComment, c.Param("commentId"))
}

func (h HandlerSet) toggleLike(c *gin.Context, target models.LikeTarget, targetID string) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.ensureLikeTarget(c, target, targetID); err != nil {
		return
	}

	liked, err := h.likes.Toggle(c.Request.Context(), models.Like{
		ID:       ids.New(),
		UserID:   user.ID,
		Target:   target,
		TargetID: targetID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	count, err := h.likes.CountForTarget(c.Request.Context(), target, targetID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":     liked,
		"likeCount": count,
	})
}

// ensureLikeTarget verifies the liked record exists, writing the response
// itself on failure.
func (h HandlerSet) ensureLikeTarget(c *gin.Context, target models.LikeTarget, targetID string) error {
	var err error
	switch target {
	case models.LikeTargetVideo:
		_, err = h.videos.GetByID(c.Request.Context(), targetID)
	case models.LikeTargetComment:
		_, err = h.comments.GetByID(c.Request.Context(), targetID)
	}
	if err == nil {
		return nil
	}

	if errors.Is(err, repository.ErrVideoNotFound) || errors.Is(err, repository.ErrCommentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": string(target) + " not found"})
	} else {
		h.respondError(c, err)
	}
	return err
}

func (h HandlerSet) ListLikedVideos(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	videos, err := h.likes.ListLikedVideos(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": toVideoResponses(videos)})
}
