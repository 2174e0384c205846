package storage

import (
	"errors"
	"strings"
	"testing"

	"clipstream/api/internal/config"
)

func testStore(t *testing.T) *ObjectStore {
	t.Helper()
	store, err := NewObjectStore(config.StorageConfig{
		Endpoint:     "https://media.example.com",
		AccessKey:    "key",
		SecretKey:    "secret",
		BucketImages: "clipstream-images",
		BucketVideos: "clipstream-videos",
	})
	if err != nil {
		t.Fatalf("NewObjectStore: %v", err)
	}
	return store
}

func TestParseReference(t *testing.T) {
	t.Parallel()
	store := testStore(t)

	cases := []struct {
		name string
		ref  string
		key  string
		kind Kind
	}{
		{
			name: "image",
			ref:  "https://media.example.com/clipstream-images/2026/08/25/abc.jpeg",
			key:  "2026/08/25/abc.jpeg",
			kind: KindImage,
		},
		{
			name: "video",
			ref:  "https://media.example.com/clipstream-videos/2026/08/25/abc.mp4",
			key:  "2026/08/25/abc.mp4",
			kind: KindVideo,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ref, err := store.ParseReference(tc.ref)
			if err != nil {
				t.Fatalf("ParseReference: %v", err)
			}
			if ref.Key != tc.key {
				t.Fatalf("key: got %q want %q", ref.Key, tc.key)
			}
			if ref.Kind != tc.kind {
				t.Fatalf("kind: got %q want %q", ref.Kind, tc.kind)
			}
		})
	}
}

func TestParseReferenceRejectsForeign(t *testing.T) {
	t.Parallel()
	store := testStore(t)

	for _, ref := range []string{
		"https://media.example.com/other-bucket/x.jpg",
		"https://media.example.com/clipstream-images",
		"https://media.example.com/",
		"not a url at all \x00",
	} {
		if _, err := store.ParseReference(ref); !errors.Is(err, ErrUnknownReference) {
			t.Fatalf("ref %q: expected ErrUnknownReference, got %v", ref, err)
		}
	}
}

func TestPublicURL(t *testing.T) {
	t.Parallel()
	store := testStore(t)

	url := store.publicURL("clipstream-images", "a/b.png")
	if url != "https://media.example.com/clipstream-images/a/b.png" {
		t.Fatalf("unexpected url %q", url)
	}

	// Round-trips through ParseReference.
	ref, err := store.ParseReference(url)
	if err != nil {
		t.Fatalf("ParseReference: %v", err)
	}
	if ref.Key != "a/b.png" || ref.Kind != KindImage {
		t.Fatalf("round trip mismatch: %+v", ref)
	}
}

func TestBuildObjectKey(t *testing.T) {
	t.Parallel()

	key := buildObjectKey("mp4")
	if !strings.HasSuffix(key, ".mp4") {
		t.Fatalf("extension missing: %q", key)
	}
	if parts := strings.Split(key, "/"); len(parts) != 4 {
		t.Fatalf("expected date-prefixed key, got %q", key)
	}
}
