package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clipstream/api/internal/ids"
	"clipstream/api/internal/middleware"
	"clipstream/api/internal/models"
	"clipstream/api/internal/repository"
)

type commentResponse struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type commentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

func (h HandlerSet) AddComment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	videoID := c.Param("videoId")
	if _, err := h.videos.GetByID(c.Request.Context(), videoID); err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	comment := models.Comment{
		ID:      ids.New(),
		VideoID: videoID,
		OwnerID: user.ID,
		Content: req.Content,
	}
	if err := h.comments.Create(c.Request.Context(), comment); err != nil {
		h.respondError(c, err)
		return
	}

	comment.CreatedAt = time.Now().UTC()
	comment.UpdatedAt = comment.CreatedAt
	c.JSON(http.StatusCreated, gin.H{"comment": toCommentResponse(comment)})
}

func (h HandlerSet) ListComments(c *gin.Context) {
	limit, offset := pagination(c)

	comments, err := h.comments.ListByVideo(c.Request.Context(), c.Param("videoId"), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, toCommentResponse(comment))
	}
	c.JSON(http.StatusOK, gin.H{"comments": out})
}

func (h HandlerSet) UpdateComment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	commentID := c.Param("commentId")
	if err := h.comments.UpdateContent(c.Request.Context(), commentID, user.ID, req.Content); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	comment, err := h.comments.GetByID(c.Request.Context(), commentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": toCommentResponse(comment)})
}

func (h HandlerSet) DeleteComment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.comments.Delete(c.Request.Context(), c.Param("commentId"), user.ID); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func toCommentResponse(comment models.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		VideoID:   comment.VideoID,
		OwnerID:   comment.OwnerID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
