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

func (h HandlerSet) ToggleSubscription(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	channelID := c.Param("channelId")
	if channelID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot subscribe to yourself"})
		return
	}

	if _, err := h.users.GetByID(c.Request.Context(), channelID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
			return
		}
		h.respondError(c, err)
		return
	}

	subscribed, err := h.subs.Toggle(c.Request.Context(), models.Subscription{
		ID:           ids.New(),
		SubscriberID: user.ID,
		ChannelID:    channelID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	count, err := h.subs.CountSubscribers(c.Request.Context(), channelID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscribed":  subscribed,
		"subscribers": count,
	})
}

func (h HandlerSet) ListSubscribers(c *gin.Context) {
	limit, offset := pagination(c)

	users, err := h.subs.ListSubscribers(c.Request.Context(), c.Param("channelId"), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscribers": toUserResponses(users)})
}

func (h HandlerSet) ListSubscribedChannels(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := pagination(c)
	channels, err := h.subs.ListChannels(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"channels": toUserResponses(channels)})
}

func toUserResponses(users []models.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}
	return out
}
