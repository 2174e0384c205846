package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"clipstream/api/internal/models"
	"clipstream/api/internal/storage"
	"clipstream/api/internal/uploads"
)

type removeCall struct {
	key  string
	kind storage.Kind
}

type fakeRemote struct {
	uploadErr error
	removeErr error
	uploadURL string

	uploaded []string
	removed  []removeCall
}

func (f *fakeRemote) Upload(ctx context.Context, localPath string) (storage.Reference, error) {
	if f.uploadErr != nil {
		return storage.Reference{}, f.uploadErr
	}
	f.uploaded = append(f.uploaded, localPath)
	url := f.uploadURL
	if url == "" {
		url = "https://cdn.test/img/" + filepath.Base(localPath)
	}
	ref, _ := f.parse(url)
	return ref, nil
}

func (f *fakeRemote) Remove(ctx context.Context, key string, kind storage.Kind) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, removeCall{key: key, kind: kind})
	return nil
}

func (f *fakeRemote) ParseReference(ref string) (storage.Reference, error) {
	return f.parse(ref)
}

func (f *fakeRemote) parse(ref string) (storage.Reference, error) {
	switch {
	case strings.HasPrefix(ref, "https://cdn.test/img/"):
		return storage.Reference{URL: ref, Key: strings.TrimPrefix(ref, "https://cdn.test/img/"), Kind: storage.KindImage}, nil
	case strings.HasPrefix(ref, "https://cdn.test/vid/"):
		return storage.Reference{URL: ref, Key: strings.TrimPrefix(ref, "https://cdn.test/vid/"), Kind: storage.KindVideo}, nil
	}
	return storage.Reference{}, storage.ErrUnknownReference
}

type fakeSlots struct {
	user   *models.User
	setErr error
	sets   int
}

func (f *fakeSlots) GetByID(ctx context.Context, id string) (models.User, error) {
	if f.user == nil || f.user.ID != id {
		return models.User{}, errors.New("unexpected user lookup")
	}
	return *f.user, nil
}

func (f *fakeSlots) SetAssetSlot(ctx context.Context, id string, slot models.AssetSlot, url string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	u := url
	switch slot {
	case models.SlotAvatar:
		f.user.AvatarURL = &u
	case models.SlotCover:
		f.user.CoverURL = &u
	}
	return nil
}

func stageTempFile(t *testing.T) *uploads.Staged {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staged.jpg")
	if err := os.WriteFile(path, []byte("\xff\xd8\xffpayload"), 0o644); err != nil {
		t.Fatalf("write staged file: %v", err)
	}
	return &uploads.Staged{Path: path, Size: 10, Name: "staged.jpg"}
}

func mustBeGone(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("staged file still exists at %s", path)
	}
}

func TestReplaceAssetNothingStaged(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{}
	slots := &fakeSlots{user: &models.User{ID: "u1"}}
	svc := NewAssetService(slots, remote, zerolog.Nop())

	_, err := svc.ReplaceAsset(context.Background(), "u1", models.SlotAvatar, nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(remote.uploaded) != 0 || len(remote.removed) != 0 {
		t.Fatalf("remote was called despite validation failure")
	}
}

func TestReplaceAssetSuccessRetiresPrevious(t *testing.T) {
	t.Parallel()

	old := "https://cdn.test/img/old.jpg"
	remote := &fakeRemote{uploadURL: "https://cdn.test/img/new.jpg"}
	slots := &fakeSlots{user: &models.User{ID: "u1", AvatarURL: &old}}
	svc := NewAssetService(slots, remote, zerolog.Nop())

	staged := stageTempFile(t)
	path := staged.Path

	url, err := svc.ReplaceAsset(context.Background(), "u1", models.SlotAvatar, staged)
	if err != nil {
		t.Fatalf("ReplaceAsset error: %v", err)
	}
	if url != "https://cdn.test/img/new.jpg" {
		t.Fatalf("unexpected reference %q", url)
	}

	mustBeGone(t, path)

	if slots.user.AvatarURL == nil || *slots.user.AvatarURL != url {
		t.Fatalf("slot not updated, got %v", slots.user.AvatarURL)
	}
	if len(remote.removed) != 1 {
		t.Fatalf("expected exactly one delete, got %d", len(remote.removed))
	}
	if got := remote.removed[0]; got.key != "old.jpg" || got.kind != storage.KindImage {
		t.Fatalf("deleted wrong asset: %+v", got)
	}
}

func TestReplaceAssetFirstUploadNoDelete(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{}
	slots := &fakeSlots{user: &models.User{ID: "u1"}}
	svc := NewAssetService(slots, remote, zerolog.Nop())

	staged := stageTempFile(t)
	if _, err := svc.ReplaceAsset(context.Background(), "u1", models.SlotCover, staged); err != nil {
		t.Fatalf("ReplaceAsset error: %v", err)
	}
	if len(remote.removed) != 0 {
		t.Fatalf("no previous asset existed, but %d deletes happened", len(remote.removed))
	}
}

func TestReplaceAssetUploadFailure(t *testing.T) {
	t.Parallel()

	old := "https://cdn.test/img/old.jpg"
	remote := &fakeRemote{uploadErr: errors.New("remote down")}
	slots := &fakeSlots{user: &models.User{ID: "u1", AvatarURL: &old}}
	svc := NewAssetService(slots, remote, zerolog.Nop())

	staged := stageTempFile(t)
	path := staged.Path

	_, err := svc.ReplaceAsset(context.Background(), "u1", models.SlotAvatar, staged)
	if !errors.Is(err, ErrUpload) {
		t.Fatalf("expected ErrUpload, got %v", err)
	}

	mustBeGone(t, path)

	if *slots.user.AvatarURL != old {
		t.Fatalf("slot changed on failed upload")
	}
	if len(remote.removed) != 0 {
		t.Fatalf("delete attempted after failed upload")
	}
}

func TestReplaceAssetPersistenceFailureKeepsNewAsset(t *testing.T) {
	t.Parallel()

	old := "https://cdn.test/img/old.jpg"
	remote := &fakeRemote{uploadURL: "https://cdn.test/img/new.jpg"}
	slots := &fakeSlots{user: &models.User{ID: "u1", AvatarURL: &old}, setErr: errors.New("db down")}
	svc := NewAssetService(slots, remote, zerolog.Nop())

	staged := stageTempFile(t)
	path := staged.Path

	_, err := svc.ReplaceAsset(context.Background(), "u1", models.SlotAvatar, staged)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}

	mustBeGone(t, path)

	// The orphaned upload is an accepted leak; nothing gets deleted.
	if len(remote.removed) != 0 {
		t.Fatalf("delete attempted after persistence failure")
	}
	if *slots.user.AvatarURL != old {
		t.Fatalf("slot changed despite persistence failure")
	}
}

func TestReplaceAssetOldDeleteFailureSwallowed(t *testing.T) {
	t.Parallel()

	old := "https://cdn.test/img/old.jpg"
	remote := &fakeRemote{uploadURL: "https://cdn.test/img/new.jpg", removeErr: errors.New("storage hiccup")}
	slots := &fakeSlots{user: &models.User{ID: "u1", AvatarURL: &old}}
	svc := NewAssetService(slots, remote, zerolog.Nop())

	url, err := svc.ReplaceAsset(context.Background(), "u1", models.SlotAvatar, stageTempFile(t))
	if err != nil {
		t.Fatalf("old-asset delete failure must not surface, got %v", err)
	}
	if *slots.user.AvatarURL != url {
		t.Fatalf("slot not updated")
	}
}

func TestDeleteAssetBestEffort(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{}
	svc := NewAssetService(&fakeSlots{user: &models.User{ID: "u1"}}, remote, zerolog.Nop())

	svc.DeleteAsset(context.Background(), "https://cdn.test/vid/clip.mp4")
	if len(remote.removed) != 1 || remote.removed[0].kind != storage.KindVideo {
		t.Fatalf("expected one video delete, got %+v", remote.removed)
	}

	// Unparseable references and remote failures are logged, never returned.
	svc.DeleteAsset(context.Background(), "not-a-reference")
	svc.DeleteAsset(context.Background(), "")
	if len(remote.removed) != 1 {
		t.Fatalf("unexpected extra deletes: %+v", remote.removed)
	}

	remote.removeErr = errors.New("storage down")
	svc.DeleteAsset(context.Background(), "https://cdn.test/img/x.jpg")
}

func TestUploadStagedDiscardsOnce(t *testing.T) {
	t.Parallel()

	remote := &fakeRemote{}
	svc := NewAssetService(&fakeSlots{user: &models.User{ID: "u1"}}, remote, zerolog.Nop())

	staged := stageTempFile(t)
	path := staged.Path

	if _, err := svc.UploadStaged(context.Background(), staged); err != nil {
		t.Fatalf("UploadStaged error: %v", err)
	}
	mustBeGone(t, path)

	// A second discard is a no-op, not an error.
	if err := staged.Discard(); err != nil {
		t.Fatalf("second Discard errored: %v", err)
	}
}
