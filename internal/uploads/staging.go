package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"clipstream/api/internal/ids"
)

// Staged is a client upload parked on local disk, waiting to be pushed to
// remote storage. Whoever consumes it owns the Discard call.
type Staged struct {
	Path string
	Size int64
	Name string
}

// Discard removes the staged file. Safe to call more than once and on the
// zero value; a missing file is not an error.
func (s *Staged) Discard() error {
	if s == nil || s.Path == "" {
		return nil
	}
	err := os.Remove(s.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	s.Path = ""
	return nil
}

type Stager struct {
	dir     string
	maxSize int64
}

func NewStager(dir string, maxSize int64) (*Stager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stager{dir: dir, maxSize: maxSize}, nil
}

func (st *Stager) Dir() string {
	return st.dir
}

// Save copies a multipart upload into the staging directory under a fresh
// name, keeping the original extension for later content-type hints.
func (st *Stager) Save(header *multipart.FileHeader) (*Staged, error) {
	if header == nil {
		return nil, errors.New("no file in request")
	}
	if st.maxSize > 0 && header.Size > st.maxSize {
		return nil, fmt.Errorf("file exceeds %d bytes", st.maxSize)
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	path := filepath.Join(st.dir, ids.New()+filepath.Ext(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create staged file: %w", err)
	}

	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	return &Staged{Path: path, Size: written, Name: header.Filename}, nil
}

// SweepOlderThan removes staged files abandoned by failed or interrupted
// requests. Returns how many files were removed.
func (st *Stager) SweepOlderThan(age time.Duration) (int, error) {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		return 0, fmt.Errorf("read staging dir: %w", err)
	}

	cutoff := time.Now().Add(-age)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(st.dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
