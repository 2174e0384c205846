package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"clipstream/api/internal/config"
	"clipstream/api/internal/middleware"
	"clipstream/api/internal/models"
	"clipstream/api/internal/repository"
	"clipstream/api/internal/service"
	"clipstream/api/internal/storage"
	"clipstream/api/internal/uploads"
)

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	db           *pgxpool.Pool
	cache        *redis.Client
	store        *storage.ObjectStore
	stager       *uploads.Stager
	tokenService *service.TokenService
	userService  *service.UserService
	assetService *service.AssetService
	videoService *service.VideoService
	users        *repository.UserRepository
	videos       *repository.VideoRepository
	comments     *repository.CommentRepository
	likes        *repository.LikeRepository
	subs         *repository.SubscriptionRepository
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	stager *uploads.Stager,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	tokenSvc := service.NewTokenService(userRepo, cfg, log)
	assetSvc := service.NewAssetService(userRepo, store, log)
	userSvc := service.NewUserService(userRepo, subRepo, tokenSvc, log)
	videoSvc := service.NewVideoService(videoRepo, likeRepo, assetSvc, cache, cfg, log)

	return HandlerSet{
		log:          log,
		cfg:          cfg,
		db:           db,
		cache:        cache,
		store:        store,
		stager:       stager,
		tokenService: tokenSvc,
		userService:  userSvc,
		assetService: assetSvc,
		videoService: videoSvc,
		users:        userRepo,
		videos:       videoRepo,
		comments:     commentRepo,
		likes:        likeRepo,
		subs:         subRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	authRequired := middleware.Auth(h.tokenService)
	authOptional := middleware.AuthOptional(h.tokenService)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.SignUp)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", authRequired, h.Logout)
		auth.GET("/me", authRequired, h.Me)

		users := v1.Group("/users")
		users.GET("/c/:username", authOptional, h.GetChannel)
		users.PATCH("/me", authRequired, h.UpdateProfile)
		users.PATCH("/me/avatar", authRequired, h.UpdateAvatar)
		users.PATCH("/me/cover", authRequired, h.UpdateCover)

		videos := v1.Group("/videos")
		videos.GET("", authOptional, h.ListVideos)
		videos.POST("", authRequired, h.PublishVideo)
		videos.GET("/:videoId", authOptional, h.GetVideo)
		videos.PATCH("/:videoId", authRequired, h.UpdateVideo)
		videos.DELETE("/:videoId", authRequired, h.DeleteVideo)
		videos.PATCH("/:videoId/thumbnail", authRequired, h.UpdateThumbnail)
		videos.POST("/:videoId/toggle-publish", authRequired, h.TogglePublish)

		videos.GET("/:videoId/comments", h.ListComments)
		videos.POST("/:videoId/comments", authRequired, h.AddComment)
		comments := v1.Group("/comments", authRequired)
		comments.PATCH("/:commentId", h.UpdateComment)
		comments.DELETE("/:commentId", h.DeleteComment)

		likes := v1.Group("/likes", authRequired)
		likes.POST("/video/:videoId", h.ToggleVideoLike)
		likes.POST("/comment/:commentId", h.ToggleCommentLike)
		likes.GET("/videos", h.ListLikedVideos)

		subs := v1.Group("/subscriptions")
		subs.POST("/:channelId", authRequired, h.ToggleSubscription)
		subs.GET("/:channelId/subscribers", h.ListSubscribers)
		subs.GET("/me/channels", authRequired, h.ListSubscribedChannels)

		admin := v1.Group("/admin",
			authRequired,
			middleware.RequireRoles(models.UserRoleModerator, models.UserRoleAdmin),
		)
		admin.GET("/videos", h.AdminListVideos)
		admin.POST("/videos/:videoId/unpublish", h.AdminUnpublishVideo)
	}
}

// respondError maps the service error taxonomy onto HTTP statuses. Client
// faults echo the message; server faults get a generic body and a log line.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = 20
	offset = 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
