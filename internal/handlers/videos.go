package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"clipstream/api/internal/middleware"
	"clipstream/api/internal/models"
	"clipstream/api/internal/repository"
	"clipstream/api/internal/service"
	"clipstream/api/internal/uploads"
)

type videoResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	FileURL      string    `json:"fileUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h HandlerSet) PublishVideo(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	videoStaged, err := h.stageFormFile(c, "videoFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	thumbStaged, err := h.stageFormFile(c, "thumbnail")
	if err != nil {
		_ = videoStaged.Discard()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.PublishInput{
		Owner:       user,
		VideoFile:   videoStaged,
		Thumbnail:   thumbStaged,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
	}
	if v := c.PostForm("duration"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil && d >= 0 {
			input.Duration = d
		}
	}
	if v := c.PostForm("published"); v != "" {
		published := v == "true"
		input.Published = &published
	}

	video, err := h.videoService.Publish(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"video": toVideoResponse(video)})
}

func (h HandlerSet) GetVideo(c *gin.Context) {
	viewerID := ""
	if viewer, ok := middleware.CurrentUser(c); ok {
		viewerID = viewer.ID
	}

	view, err := h.videoService.Get(c.Request.Context(), c.Param("videoId"), viewerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"video":     toVideoResponse(view.Video),
		"likeCount": view.LikeCount,
		"isLiked":   view.Liked,
	})
}

func (h HandlerSet) ListVideos(c *gin.Context) {
	limit, offset := pagination(c)
	filter := repository.VideoFilter{
		Query:   c.Query("query"),
		OwnerID: c.Query("ownerId"),
		Limit:   limit,
		Offset:  offset,
	}

	videos, err := h.videoService.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": toVideoResponses(videos)})
}

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h HandlerSet) UpdateVideo(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video, err := h.videoService.UpdateDetails(c.Request.Context(), user.ID, c.Param("videoId"), req.Title, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": toVideoResponse(video)})
}

func (h HandlerSet) UpdateThumbnail(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	staged, err := h.stageFormFile(c, "thumbnail")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video, err := h.videoService.ReplaceThumbnail(c.Request.Context(), user.ID, c.Param("videoId"), staged)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": toVideoResponse(video)})
}

func (h HandlerSet) DeleteVideo(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), user.ID, c.Param("videoId")); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) TogglePublish(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	video, err := h.videoService.TogglePublish(c.Request.Context(), user.ID, c.Param("videoId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": toVideoResponse(video)})
}

func (h HandlerSet) stageFormFile(c *gin.Context, field string) (*uploads.Staged, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return h.stager.Save(header)
}

func toVideoResponse(video models.Video) videoResponse {
	return videoResponse{
		ID:           video.ID,
		OwnerID:      video.OwnerID,
		FileURL:      video.FileURL,
		ThumbnailURL: video.ThumbnailURL,
		Title:        video.Title,
		Description:  video.Description,
		Duration:     video.Duration,
		Views:        video.Views,
		Published:    video.Published,
		CreatedAt:    video.CreatedAt,
	}
}

func toVideoResponses(videos []models.Video) []videoResponse {
	out := make([]videoResponse, 0, len(videos))
	for _, video := range videos {
		out = append(out, toVideoResponse(video))
	}
	return out
}
