package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"mime/multipart"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"lcutils/internal/config"
	"lcutils/internal/domain"
	"lcutils/internal/port"
)

const (
	// InputGroupRoot is the folder fresh input groups are created under.
	InputGroupRoot = "hwpc-user-inputs/"
	// InputGroupManifestName is the object holding the JSON manifest of a group.
	InputGroupManifestName = "user_input.json"

	tifSuffix = ".tif"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// InputGroup is a batch of web form inputs: text fields and uploaded files.
type InputGroup struct {
	Fields map[string]string
	Files  map[string]*multipart.FileHeader
}

// InputGroupResult reports where an input group was stored.
type InputGroupResult struct {
	Prefix   string                    `json:"prefix"`
	Manifest domain.InputGroupManifest `json:"manifest"`
}

// BlobService defines object storage helpers over a single storage backend.
type BlobService interface {
	Exists(ctx context.Context, bucket, key string) (bool, error)
	List(ctx context.Context, bucket, prefix string) ([]domain.BlobInfo, error)
	ListNames(ctx context.Context, bucket, prefix string) ([]string, error)
	ListTIFURIsByYear(ctx context.Context, bucket, prefix string) (map[string][]string, error)
	DownloadTemp(ctx context.Context, bucket, key string) (*os.File, error)
	Download(ctx context.Context, bucket, key, localPath string) error
	Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (*port.UploadOutput, error)
	Delete(ctx context.Context, bucket, key string) error
	Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	Move(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error
	MakePublic(ctx context.Context, bucket, key string) (string, error)
	UploadInputGroup(ctx context.Context, bucket, prefix string, group InputGroup) (*InputGroupResult, error)
}

type blobService struct {
	storage port.ObjectStorage
	cfg     *config.StorageConfig
	log     *slog.Logger
}

// NewBlobService creates a new BlobService implementation.
func NewBlobService(storage port.ObjectStorage, cfg *config.StorageConfig, logger *slog.Logger) BlobService {
	return &blobService{
		storage: storage,
		cfg:     cfg,
		log:     logger,
	}
}

func (s *blobService) Exists(ctx context.Context, bucket, key string) (bool, error) {
	return s.storage.Exists(ctx, bucket, key)
}

func (s *blobService) List(ctx context.Context, bucket, prefix string) ([]domain.BlobInfo, error) {
	return s.storage.List(ctx, bucket, prefix)
}

func (s *blobService) ListNames(ctx context.Context, bucket, prefix string) ([]string, error) {
	blobs, err := s.storage.List(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(blobs))
	for _, b := range blobs {
		names = append(names, b.Name)
	}
	return names, nil
}

// ListTIFURIsByYear groups the gs:// URIs of .tif objects by the first four
// digit run found in each URI.
func (s *blobService) ListTIFURIsByYear(ctx context.Context, bucket, prefix string) (map[string][]string, error) {
	blobs, err := s.storage.List(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}

	byYear := make(map[string][]string)
	for _, b := range blobs {
		if !strings.HasSuffix(b.Name, tifSuffix) {
			continue
		}
		uri := "gs://" + bucket + "/" + b.Name
		year := yearPattern.FindString(uri)
		if year == "" {
			s.log.Debug("blobService.ListTIFURIsByYear: no year in uri", "uri", uri)
			continue
		}
		byYear[year] = append(byYear[year], uri)
	}
	return byYear, nil
}

// DownloadTemp writes the object to a new temp file rewound to offset 0. The
// caller closes and removes it.
func (s *blobService) DownloadTemp(ctx context.Context, bucket, key string) (*os.File, error) {
	f, err := os.CreateTemp("", "lcutils-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}

	n, err := s.storage.Download(ctx, bucket, key, f)
	if err != nil {
		cleanup()
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, fmt.Errorf("seeking temp file: %w", err)
	}

	s.log.Debug("blobService.DownloadTemp", "bucket", bucket, "key", key, "bytes", n, "path", f.Name())
	return f, nil
}

func (s *blobService) Download(ctx context.Context, bucket, key, localPath string) error {
	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", localPath, err)
	}

	n, err := s.storage.Download(ctx, bucket, key, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(localPath)
		return err
	}

	s.log.Info("blobService.Download", "bucket", bucket, "key", key, "bytes", n, "path", localPath)
	return nil
}

// Upload stores body at key. size may be -1 when unknown; known sizes are
// checked against the configured limit.
func (s *blobService) Upload(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) (*port.UploadOutput, error) {
	if s.cfg.MaxUploadSizeMB > 0 && size > s.cfg.MaxUploadSizeMB*1024*1024 {
		return nil, domain.ErrFileTooLarge
	}

	out, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      bucket,
		Key:         key,
		Body:        body,
		ContentType: contentType,
		Size:        size,
	})
	if err != nil {
		s.log.Error("blobService.Upload: storage upload failed", "bucket", bucket, "key", key, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
	}
	return out, nil
}

func (s *blobService) Delete(ctx context.Context, bucket, key string) error {
	if err := s.storage.Delete(ctx, bucket, key); err != nil {
		return err
	}
	s.log.Info("blobService.Delete: blob deleted", "bucket", bucket, "key", key)
	return nil
}

func (s *blobService) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	return s.storage.Copy(ctx, srcBucket, srcKey, dstBucket, dstKey)
}

// Move copies the object and then deletes the source.
func (s *blobService) Move(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	if err := s.storage.Copy(ctx, srcBucket, srcKey, dstBucket, dstKey); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, srcBucket, srcKey); err != nil {
		return fmt.Errorf("deleting moved source: %w", err)
	}
	s.log.Info("blobService.Move: file moved",
		"from", srcBucket+"/"+srcKey, "to", dstBucket+"/"+dstKey)
	return nil
}

func (s *blobService) MakePublic(ctx context.Context, bucket, key string) (string, error) {
	url, err := s.storage.MakePublic(ctx, bucket, key)
	if err != nil {
		return "", err
	}
	s.log.Info("blobService.MakePublic: blob is publicly accessible", "key", key, "url", url)
	return url, nil
}

// UploadInputGroup stores every non-empty field and file of the group under
// prefix and writes a JSON manifest of the stored paths next to them.
func (s *blobService) UploadInputGroup(ctx context.Context, bucket, prefix string, group InputGroup) (*InputGroupResult, error) {
	if err := validateInputGroup(group); err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = InputGroupRoot + uuid.NewString() + "/"
	}

	manifest := make(domain.InputGroupManifest)

	for _, key := range slices.Sorted(maps.Keys(group.Fields)) {
		value := group.Fields[key]
		if value == "" {
			continue
		}
		path := prefix + key
		if _, err := s.Upload(ctx, bucket, path, strings.NewReader(value), int64(len(value)), "text/plain"); err != nil {
			return nil, err
		}
		manifest[key] = path
	}

	for _, key := range slices.Sorted(maps.Keys(group.Files)) {
		fh := group.Files[key]
		if fh == nil || fh.Size <= 0 {
			continue
		}
		path := prefix + key
		if err := s.uploadFormFile(ctx, bucket, path, fh); err != nil {
			return nil, err
		}
		manifest[key] = path
	}

	data, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if _, err := s.Upload(ctx, bucket, prefix+InputGroupManifestName, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return nil, err
	}

	s.log.Info("blobService.UploadInputGroup: group stored",
		"bucket", bucket, "prefix", prefix, "entries", len(manifest))
	return &InputGroupResult{Prefix: prefix, Manifest: manifest}, nil
}

// validateInputGroup rejects keys that would land on the same object or on
// the manifest itself.
func validateInputGroup(group InputGroup) error {
	for key := range group.Fields {
		if err := validateInputKey(key); err != nil {
			return err
		}
		if _, ok := group.Files[key]; ok {
			return fmt.Errorf("%w: %q is both a field and a file", domain.ErrInvalidRequest, key)
		}
	}
	for key := range group.Files {
		if err := validateInputKey(key); err != nil {
			return err
		}
	}
	return nil
}

func validateInputKey(key string) error {
	switch key {
	case "":
		return fmt.Errorf("%w: empty input key", domain.ErrInvalidRequest)
	case InputGroupManifestName:
		return fmt.Errorf("%w: %q is reserved for the manifest", domain.ErrInvalidRequest, key)
	}
	return nil
}

func (s *blobService) uploadFormFile(ctx context.Context, bucket, path string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("opening form file %s: %w", fh.Filename, err)
	}
	defer f.Close()

	_, err = s.Upload(ctx, bucket, path, f, fh.Size, fh.Header.Get("Content-Type"))
	if errors.Is(err, domain.ErrFileTooLarge) {
		return fmt.Errorf("form file %s: %w", fh.Filename, err)
	}
	return err
}
