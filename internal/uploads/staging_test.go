package uploads

import (
	"bytes"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func formFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	reader := multipart.NewReader(&buf, w.Boundary())
	form, err := reader.ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })

	headers := form.File["file"]
	if len(headers) != 1 {
		t.Fatalf("expected one file header, got %d", len(headers))
	}
	return headers[0]
}

func TestSaveAndDiscard(t *testing.T) {
	t.Parallel()

	stager, err := NewStager(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewStager: %v", err)
	}

	staged, err := stager.Save(formFileHeader(t, "clip.mp4", []byte("videobytes")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if staged.Size != int64(len("videobytes")) {
		t.Fatalf("size mismatch: %d", staged.Size)
	}
	if !strings.HasSuffix(staged.Path, ".mp4") {
		t.Fatalf("extension not kept: %s", staged.Path)
	}
	if _, err := os.Stat(staged.Path); err != nil {
		t.Fatalf("staged file missing: %v", err)
	}

	path := staged.Path
	if err := staged.Discard(); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("staged file still present")
	}

	// Idempotent, including on the zero value.
	if err := staged.Discard(); err != nil {
		t.Fatalf("second Discard: %v", err)
	}
	var zero *Staged
	if err := zero.Discard(); err != nil {
		t.Fatalf("nil Discard: %v", err)
	}
}

func TestSaveRejectsOversize(t *testing.T) {
	t.Parallel()

	stager, err := NewStager(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("NewStager: %v", err)
	}

	if _, err := stager.Save(formFileHeader(t, "big.bin", []byte("way too large"))); err == nil {
		t.Fatalf("expected size rejection")
	}
}

func TestSaveNilHeader(t *testing.T) {
	t.Parallel()

	stager, err := NewStager(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewStager: %v", err)
	}
	if _, err := stager.Save(nil); err == nil {
		t.Fatalf("expected error for nil header")
	}
}

func TestSweepOlderThan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stager, err := NewStager(dir, 0)
	if err != nil {
		t.Fatalf("NewStager: %v", err)
	}

	stale := filepath.Join(dir, "stale.mp4")
	fresh := filepath.Join(dir, "fresh.mp4")
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	old := time.Now().Add(-3 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	removed, err := stager.SweepOlderThan(time.Hour)
	if err != nil {
		t.Fatalf("SweepOlderThan: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, err := os.Stat(stale); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stale file survived sweep")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file removed: %v", err)
	}
}
