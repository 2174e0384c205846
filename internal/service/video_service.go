package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"clipstream/api/internal/config"
	"clipstream/api/internal/ids"
	"clipstream/api/internal/models"
	"clipstream/api/internal/repository"
	"clipstream/api/internal/storage"
	"clipstream/api/internal/uploads"
)

const viewDedupTTL = 6 * time.Hour

type VideoService struct {
	videos *repository.VideoRepository
	likes  *repository.LikeRepository
	assets *AssetService
	cache  *redis.Client
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewVideoService(
	videos *repository.VideoRepository,
	likes *repository.LikeRepository,
	assets *AssetService,
	cache *redis.Client,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *VideoService {
	return &VideoService{
		videos: videos,
		likes:  likes,
		assets: assets,
		cache:  cache,
		cfg:    cfg,
		log:    log,
	}
}

type PublishInput struct {
	Owner       models.User
	VideoFile   *uploads.Staged
	Thumbnail   *uploads.Staged
	Title       string
	Description string
	Duration    float64
	// Published overrides the configured default when set.
	Published *bool
}

// Publish uploads the video file and thumbnail, then creates the record.
// Both staged files are cleaned up on every path. If the record write fails
// the uploaded assets are orphaned, same trade-off as slot replacement.
func (s *VideoService) Publish(ctx context.Context, input PublishInput) (models.Video, error) {
	if input.Title == "" {
		discardAll(s.log, input.VideoFile, input.Thumbnail)
		return models.Video{}, fmt.Errorf("%w: title required", ErrValidation)
	}

	fileRef, err := s.assets.UploadStaged(ctx, input.VideoFile)
	if err != nil {
		discardAll(s.log, input.Thumbnail)
		return models.Video{}, err
	}
	if fileRef.Kind != storage.KindVideo {
		s.assets.DeleteAsset(ctx, fileRef.URL)
		discardAll(s.log, input.Thumbnail)
		return models.Video{}, fmt.Errorf("%w: file is not a video", ErrValidation)
	}

	thumbRef, err := s.assets.UploadStaged(ctx, input.Thumbnail)
	if err != nil {
		s.assets.DeleteAsset(ctx, fileRef.URL)
		return models.Video{}, err
	}

	published := s.cfg.Media.DefaultPublished
	if input.Published != nil {
		published = *input.Published
	}

	video := models.Video{
		ID:           ids.New(),
		OwnerID:      input.Owner.ID,
		FileURL:      fileRef.URL,
		ThumbnailURL: thumbRef.URL,
		Title:        input.Title,
		Description:  input.Description,
		Duration:     input.Duration,
		Published:    published,
	}

	if err := s.videos.Create(ctx, video); err != nil {
		s.log.Error().Err(err).
			Str("file_ref", fileRef.URL).
			Str("thumb_ref", thumbRef.URL).
			Msg("video record write failed after upload, remote assets orphaned")
		return models.Video{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return video, nil
}

type VideoView struct {
	Video     models.Video
	LikeCount int64
	Liked     bool
}

// Get loads a video for a viewer, counting the view. Unpublished videos are
// visible to their owner only. Signed-in views are deduplicated per viewer
// through redis; anonymous views always count.
func (s *VideoService) Get(ctx context.Context, videoID string, viewerID string) (VideoView, error) {
	video, err := s.getOwned(ctx, videoID, viewerID)
	if err != nil {
		return VideoView{}, err
	}

	s.countView(ctx, &video, viewerID)

	likeCount, err := s.likes.CountForTarget(ctx, models.LikeTargetVideo, video.ID)
	if err != nil {
		return VideoView{}, err
	}

	view := VideoView{Video: video, LikeCount: likeCount}
	if viewerID != "" {
		liked, err := s.likes.Exists(ctx, viewerID, models.LikeTargetVideo, video.ID)
		if err != nil {
			return VideoView{}, err
		}
		view.Liked = liked
	}

	return view, nil
}

func (s *VideoService) List(ctx context.Context, filter repository.VideoFilter) ([]models.Video, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.videos.List(ctx, filter)
}

func (s *VideoService) UpdateDetails(ctx context.Context, ownerID, videoID, title, description string) (models.Video, error) {
	if _, err := s.mustOwn(ctx, videoID, ownerID); err != nil {
		return models.Video{}, err
	}
	if err := s.videos.UpdateDetails(ctx, videoID, title, description); err != nil {
		return models.Video{}, err
	}
	return s.videos.GetByID(ctx, videoID)
}

// ReplaceThumbnail swaps the video's thumbnail with the same ordering
// guarantee as user slots: new asset live, then record updated, then the
// old thumbnail retired best-effort.
func (s *VideoService) ReplaceThumbnail(ctx context.Context, ownerID, videoID string, staged *uploads.Staged) (models.Video, error) {
	video, err := s.mustOwn(ctx, videoID, ownerID)
	if err != nil {
		discardAll(s.log, staged)
		return models.Video{}, err
	}
	previous := video.ThumbnailURL

	ref, err := s.assets.UploadStaged(ctx, staged)
	if err != nil {
		return models.Video{}, err
	}

	if err := s.videos.SetThumbnail(ctx, videoID, ref.URL); err != nil {
		s.log.Error().Err(err).
			Str("video_id", videoID).
			Str("orphaned_ref", ref.URL).
			Msg("thumbnail write failed after upload, remote asset orphaned")
		return models.Video{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if previous != "" {
		s.assets.DeleteAsset(ctx, previous)
	}

	video.ThumbnailURL = ref.URL
	return video, nil
}

// Delete removes the record, then retires the remote file and thumbnail
// best-effort. A storage-side failure never blocks the deletion.
func (s *VideoService) Delete(ctx context.Context, ownerID, videoID string) error {
	video, err := s.mustOwn(ctx, videoID, ownerID)
	if err != nil {
		return err
	}

	if err := s.videos.Delete(ctx, videoID); err != nil {
		return err
	}

	s.assets.DeleteAsset(ctx, video.FileURL)
	s.assets.DeleteAsset(ctx, video.ThumbnailURL)
	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, ownerID, videoID string) (models.Video, error) {
	video, err := s.mustOwn(ctx, videoID, ownerID)
	if err != nil {
		return models.Video{}, err
	}
	if err := s.videos.SetPublished(ctx, videoID, !video.Published); err != nil {
		return models.Video{}, err
	}
	video.Published = !video.Published
	return video, nil
}

// Unpublish takes a video down without an ownership check; the moderation
// middleware gates who reaches it.
func (s *VideoService) Unpublish(ctx context.Context, videoID string) error {
	if err := s.videos.SetPublished(ctx, videoID, false); err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return fmt.Errorf("%w: video %s", ErrNotFound, videoID)
		}
		return err
	}
	return nil
}

func (s *VideoService) getOwned(ctx context.Context, videoID, viewerID string) (models.Video, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return models.Video{}, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
		}
		return models.Video{}, err
	}
	if !video.Published && video.OwnerID != viewerID {
		return models.Video{}, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
	}
	return video, nil
}

func (s *VideoService) mustOwn(ctx context.Context, videoID, ownerID string) (models.Video, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return models.Video{}, fmt.Errorf("%w: video %s", ErrNotFound, videoID)
		}
		return models.Video{}, err
	}
	if video.OwnerID != ownerID {
		return models.Video{}, fmt.Errorf("%w: not the owner", ErrForbidden)
	}
	return video, nil
}

func (s *VideoService) countView(ctx context.Context, video *models.Video, viewerID string) {
	if viewerID != "" && s.cache != nil {
		key := fmt.Sprintf("views:%s:%s", video.ID, viewerID)
		set, err := s.cache.SetNX(ctx, key, 1, viewDedupTTL).Result()
		if err != nil {
			s.log.Warn().Err(err).Str("video_id", video.ID).Msg("view dedup check failed")
		} else if !set {
			return
		}
	}

	if err := s.videos.IncrementViews(ctx, video.ID); err != nil {
		s.log.Warn().Err(err).Str("video_id", video.ID).Msg("view increment failed")
		return
	}
	video.Views++
}

func discardAll(log zerolog.Logger, staged ...*uploads.Staged) {
	for _, s := range staged {
		if s == nil {
			continue
		}
		if err := s.Discard(); err != nil {
			log.Warn().Err(err).Str("path", s.Path).Msg("discard staged file failed")
		}
	}
}
