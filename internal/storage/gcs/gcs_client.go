package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"lcutils/internal/config"
	"lcutils/internal/domain"
	"lcutils/internal/port"
)

const publicURLBase = "https://storage.googleapis.com/"

type gcsClient struct {
	client *storage.Client
}

// NewGCSClient creates a Google Cloud Storage backed ObjectStorage. The client
// is meant to be created once per process and shared.
func NewGCSClient(ctx context.Context, cfg *config.GCSConfig) (port.ObjectStorage, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}
	return &gcsClient{client: client}, nil
}

func (c *gcsClient) object(bucket, key string) *storage.ObjectHandle {
	return c.client.Bucket(bucket).Object(key)
}

func (c *gcsClient) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.object(bucket, key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("gcs attrs: %w", err)
	}
	return true, nil
}

func (c *gcsClient) List(ctx context.Context, bucket, prefix string) ([]domain.BlobInfo, error) {
	it := c.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var blobs []domain.BlobInfo
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if errors.Is(err, storage.ErrBucketNotExist) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("gcs list: %w", err)
		}
		blobs = append(blobs, domain.BlobInfo{
			Bucket:      attrs.Bucket,
			Name:        attrs.Name,
			Size:        attrs.Size,
			ContentType: attrs.ContentType,
			Updated:     attrs.Updated,
		})
	}
	return blobs, nil
}

func (c *gcsClient) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	// Cancelling the writer's context is the only way to abort; Close alone
	// would finalize whatever was written so far.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := c.object(input.Bucket, input.Key).NewWriter(ctx)
	if input.ContentType != "" {
		w.ContentType = input.ContentType
	}

	if _, err := io.Copy(w, input.Body); err != nil {
		cancel()
		_ = w.Close()
		return nil, fmt.Errorf("gcs upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gcs upload: %w", err)
	}

	etag := ""
	if attrs := w.Attrs(); attrs != nil {
		etag = attrs.Etag
	}

	return &port.UploadOutput{
		Location: "gs://" + input.Bucket + "/" + input.Key,
		ETag:     etag,
	}, nil
}

func (c *gcsClient) Download(ctx context.Context, bucket, key string, w io.Writer) (int64, error) {
	r, err := c.object(bucket, key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("gcs download: %w", err)
	}
	defer r.Close()

	n, err := io.Copy(w, r)
	if err != nil {
		return n, fmt.Errorf("gcs download read: %w", err)
	}
	return n, nil
}

func (c *gcsClient) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	src := c.object(srcBucket, srcKey)
	dst := c.object(dstBucket, dstKey)

	_, err := dst.CopierFrom(src).Run(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("gcs copy: %w", err)
	}
	return nil
}

func (c *gcsClient) Delete(ctx context.Context, bucket, key string) error {
	err := c.object(bucket, key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("gcs delete: %w", err)
	}
	return nil
}

func (c *gcsClient) MakePublic(ctx context.Context, bucket, key string) (string, error) {
	err := c.object(bucket, key).ACL().Set(ctx, storage.AllUsers, storage.RoleReader)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("gcs acl: %w", err)
	}
	return PublicURL(bucket, key), nil
}

func (c *gcsClient) Close() error {
	return c.client.Close()
}

// PublicURL returns the unauthenticated URL of a publicly readable object.
func PublicURL(bucket, key string) string {
	return publicURLBase + bucket + "/" + key
}

var _ port.ObjectStorage = (*gcsClient)(nil)
