package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clipstream/api/internal/middleware"
	"clipstream/api/internal/models"
)

func (h HandlerSet) GetChannel(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username required"})
		return
	}

	viewerID := ""
	if viewer, ok := middleware.CurrentUser(c); ok {
		viewerID = viewer.ID
	}

	profile, err := h.userService.Channel(c.Request.Context(), username, viewerID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channel": gin.H{
			"user":         toUserResponse(profile.User),
			"subscribers":  profile.Subscribers,
			"subscribedTo": profile.SubscribedTo,
			"isSubscribed": profile.ViewerSubscribed,
		},
	})
}

type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" binding:"omitempty,email"`
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.userService.UpdateProfile(c.Request.Context(), user.ID, req.FullName, req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(updated)})
}

func (h HandlerSet) UpdateAvatar(c *gin.Context) {
	h.replaceUserAsset(c, models.SlotAvatar, "avatar")
}

func (h HandlerSet) UpdateCover(c *gin.Context) {
	h.replaceUserAsset(c, models.SlotCover, "cover")
}

// replaceUserAsset stages the multipart file and hands it to the asset
// synchronizer, which owns all further cleanup.
func (h HandlerSet) replaceUserAsset(c *gin.Context, slot models.AssetSlot, field string) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	header, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": field + " file required"})
		return
	}

	staged, err := h.stager.Save(header)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.assetService.ReplaceAsset(c.Request.Context(), user.ID, slot, staged)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slot": string(slot),
		"url":  url,
	})
}
