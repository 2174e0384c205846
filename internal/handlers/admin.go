package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clipstream/api/internal/repository"
)

// AdminListVideos lists videos regardless of publish state so moderators
// can review what the public listing hides.
func (h HandlerSet) AdminListVideos(c *gin.Context) {
	limit, offset := pagination(c)

	videos, err := h.videoService.List(c.Request.Context(), repository.VideoFilter{
		OwnerID:         c.Query("ownerId"),
		Query:           c.Query("query"),
		IncludeUnlisted: true,
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": toVideoResponses(videos)})
}

func (h HandlerSet) AdminUnpublishVideo(c *gin.Context) {
	if err := h.videoService.Unpublish(c.Request.Context(), c.Param("videoId")); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
