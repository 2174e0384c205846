package sniffer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectHead(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		head  []byte
		want  MediaType
		video bool
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0}, TypeJPEG, false},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}, TypePNG, false},
		{"gif", []byte("GIF89a...."), TypeGIF, false},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWEBP, false},
		{"mp4", []byte("\x00\x00\x00\x20ftypisom\x00\x00\x02\x00"), TypeMP4, true},
		{"mov", []byte("\x00\x00\x00\x14ftypqt  \x00\x00\x00\x00"), TypeMOV, true},
		{"webm", []byte{0x1a, 0x45, 0xdf, 0xa3, 0x01, 0x00}, TypeWEBM, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := DetectHead(tc.head)
			if err != nil {
				t.Fatalf("DetectHead error: %v", err)
			}
			if got.Type != tc.want {
				t.Fatalf("got %q want %q", got.Type, tc.want)
			}
			if got.Video != tc.video {
				t.Fatalf("video flag: got %v want %v", got.Video, tc.video)
			}
			if got.MIME == "" {
				t.Fatalf("empty mime")
			}
		})
	}
}

func TestDetectHeadUnknown(t *testing.T) {
	t.Parallel()

	for _, head := range [][]byte{nil, {}, []byte("plain text file")} {
		if _, err := DetectHead(head); !errors.Is(err, ErrUnknownType) {
			t.Fatalf("head %q: expected ErrUnknownType, got %v", head, err)
		}
	}
}

func TestDetectFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("\x00\x00\x00\x20ftypmp42\x00\x00\x00\x00payload"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := DetectFile(path)
	if err != nil {
		t.Fatalf("DetectFile error: %v", err)
	}
	if got.Type != TypeMP4 || !got.Video {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestDetectFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := DetectFile(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
