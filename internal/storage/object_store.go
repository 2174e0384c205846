package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"clipstream/api/internal/config"
	"clipstream/api/internal/ids"
	"clipstream/api/internal/media/sniffer"
)

// Kind selects which bucket an asset lives in and which remote API removes
// it again.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Reference identifies a stored asset. URL is what gets persisted on
// records; Key and Kind are enough to address the object for deletion.
type Reference struct {
	URL  string
	Key  string
	Kind Kind
}

var ErrUnknownReference = errors.New("reference does not belong to this store")

type ObjectStore struct {
	client  *minio.Client
	cfg     config.StorageConfig
	timeout time.Duration
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	timeout := cfg.OperationTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	return &ObjectStore{
		client:  client,
		cfg:     cfg,
		timeout: timeout,
	}, nil
}

// Healthy reports whether the remote store answers a cheap metadata call.
func (s *ObjectStore) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.client.BucketExists(ctx, s.cfg.BucketImages); err != nil {
		return fmt.Errorf("bucket probe: %w", err)
	}
	return nil
}

func (s *ObjectStore) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range []string{s.cfg.BucketImages, s.cfg.BucketVideos} {
		exists, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("bucket exists %s: %w", bucket, err)
		}
		if !exists {
			if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
	}
	return nil
}

// Upload sniffs the staged file, pushes it into the bucket matching its
// detected kind and returns the public reference. The call is bounded by
// the configured operation timeout.
func (s *ObjectStore) Upload(ctx context.Context, localPath string) (Reference, error) {
	detected, err := sniffer.DetectFile(localPath)
	if err != nil {
		return Reference{}, fmt.Errorf("detect type: %w", err)
	}

	kind := KindImage
	if detected.Video {
		kind = KindVideo
	}

	key := buildObjectKey(string(detected.Type))
	bucket := s.bucketFor(kind)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.client.FPutObject(ctx, bucket, key, localPath, minio.PutObjectOptions{
		ContentType: detected.MIME,
	})
	if err != nil {
		return Reference{}, fmt.Errorf("put object: %w", err)
	}

	return Reference{
		URL:  s.publicURL(bucket, key),
		Key:  key,
		Kind: kind,
	}, nil
}

// Remove deletes a stored object. Bounded by the operation timeout.
func (s *ObjectStore) Remove(ctx context.Context, key string, kind Kind) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.RemoveObject(ctx, s.bucketFor(kind), key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// ParseReference recovers the object key and kind from a public URL this
// store produced. The kind falls out of which bucket the URL points at.
func (s *ObjectStore) ParseReference(ref string) (Reference, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return Reference{}, ErrUnknownReference
	}

	trimmed := strings.TrimPrefix(u.Path, "/")
	bucket, key, found := strings.Cut(trimmed, "/")
	if !found || key == "" {
		return Reference{}, ErrUnknownReference
	}

	var kind Kind
	switch bucket {
	case s.cfg.BucketImages:
		kind = KindImage
	case s.cfg.BucketVideos:
		kind = KindVideo
	default:
		return Reference{}, ErrUnknownReference
	}

	return Reference{URL: ref, Key: key, Kind: kind}, nil
}

func (s *ObjectStore) bucketFor(kind Kind) string {
	if kind == KindVideo {
		return s.cfg.BucketVideos
	}
	return s.cfg.BucketImages
}

func (s *ObjectStore) publicURL(bucket, key string) string {
	base := strings.TrimSuffix(s.cfg.Endpoint, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return fmt.Sprintf("%s/%s/%s", base, bucket, key)
}

func buildObjectKey(ext string) string {
	datePrefix := time.Now().UTC().Format("2006/01/02")
	return path.Join(datePrefix, fmt.Sprintf("%s.%s", ids.New(), ext))
}
