package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"clipstream/api/internal/models"
	"clipstream/api/internal/repository"
	"clipstream/api/internal/storage"
	"clipstream/api/internal/uploads"
)

// remoteStore is the slice of the object store the synchronizer depends on.
type remoteStore interface {
	Upload(ctx context.Context, localPath string) (storage.Reference, error)
	Remove(ctx context.Context, key string, kind storage.Kind) error
	ParseReference(ref string) (storage.Reference, error)
}

// slotStore reads and writes user asset slots.
type slotStore interface {
	GetByID(ctx context.Context, id string) (models.User, error)
	SetAssetSlot(ctx context.Context, id string, slot models.AssetSlot, url string) error
}

// AssetService keeps user records and remote storage consistent: a new
// asset is confirmed live before the reference moves, and the reference
// moves before the old asset is touched.
type AssetService struct {
	users  slotStore
	remote remoteStore
	log    zerolog.Logger
}

func NewAssetService(users slotStore, remote remoteStore, log zerolog.Logger) *AssetService {
	return &AssetService{
		users:  users,
		remote: remote,
		log:    log,
	}
}

// ReplaceAsset uploads a staged file into the named slot and retires the
// slot's previous asset. The staged file is removed on every exit path.
//
// Failure policy, in order:
//   - nothing staged: ErrValidation, no side effects;
//   - remote upload fails: ErrUpload, staging already cleaned;
//   - slot write fails: ErrPersistence, the fresh upload stays orphaned
//     (deleting it could destroy the only copy if the write is retried);
//   - old-asset delete fails: logged, never surfaced.
func (s *AssetService) ReplaceAsset(ctx context.Context, userID string, slot models.AssetSlot, staged *uploads.Staged) (string, error) {
	ref, err := s.UploadStaged(ctx, staged)
	if err != nil {
		return "", err
	}

	// The old reference is only visible before the slot write; capture it
	// now, never re-derive it later.
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return "", fmt.Errorf("%w: load user: %v", ErrPersistence, err)
	}
	previous := user.SlotURL(slot)

	if err := s.users.SetAssetSlot(ctx, userID, slot, ref.URL); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		s.log.Error().Err(err).
			Str("user_id", userID).
			Str("slot", string(slot)).
			Str("orphaned_ref", ref.URL).
			Msg("slot write failed after upload, remote asset orphaned")
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if previous != nil && *previous != "" {
		s.DeleteAsset(ctx, *previous)
	}

	return ref.URL, nil
}

// UploadStaged pushes a staged file to remote storage, discarding the
// staged file exactly once whether or not the upload succeeds.
func (s *AssetService) UploadStaged(ctx context.Context, staged *uploads.Staged) (storage.Reference, error) {
	if staged == nil || staged.Path == "" {
		return storage.Reference{}, fmt.Errorf("%w: no file staged", ErrValidation)
	}

	defer func() {
		if err := staged.Discard(); err != nil {
			s.log.Warn().Err(err).Str("path", staged.Path).Msg("discard staged file failed")
		}
	}()

	ref, err := s.remote.Upload(ctx, staged.Path)
	if err != nil {
		return storage.Reference{}, fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if ref.URL == "" {
		return storage.Reference{}, fmt.Errorf("%w: remote returned no reference", ErrUpload)
	}

	return ref, nil
}

// DeleteAsset retires a remote asset by its public reference. Best-effort:
// every failure is logged and swallowed so callers doing larger deletions
// are never blocked by the storage side.
func (s *AssetService) DeleteAsset(ctx context.Context, reference string) {
	if reference == "" {
		return
	}

	ref, err := s.remote.ParseReference(reference)
	if err != nil {
		s.log.Warn().Err(err).Str("ref", reference).Msg("unparseable asset reference, skipping delete")
		return
	}

	if err := s.remote.Remove(ctx, ref.Key, ref.Kind); err != nil {
		s.log.Warn().Err(err).
			Str("key", ref.Key).
			Str("kind", string(ref.Kind)).
			Msg("remote asset delete failed")
	}
}
