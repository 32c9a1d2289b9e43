package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/encoding/httpbinding"

	"lcutils/internal/config"
	"lcutils/internal/domain"
	"lcutils/internal/port"
	"lcutils/internal/signer"
)

// Client is an S3-compatible ObjectStorage that can also presign URLs.
type Client struct {
	client    *s3.Client
	presigner *s3.PresignClient
	uploader  *manager.Uploader
	endpoint  string
	now       func() time.Time
}

// NewS3Client creates a new S3-backed ObjectStorage and URLSigner.
func NewS3Client(ctx context.Context, cfg *config.S3Config) (*Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	return &Client{
		client:    client,
		presigner: s3.NewPresignClient(client),
		uploader:  manager.NewUploader(client),
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		now:       time.Now,
	}, nil
}

func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("s3 head: %w", err)
	}
	return true, nil
}

func (c *Client) List(ctx context.Context, bucket, prefix string) ([]domain.BlobInfo, error) {
	p := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	var blobs []domain.BlobInfo
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			blobs = append(blobs, domain.BlobInfo{
				Bucket:  bucket,
				Name:    aws.ToString(obj.Key),
				Size:    aws.ToInt64(obj.Size),
				Updated: aws.ToTime(obj.LastModified),
			})
		}
	}
	return blobs, nil
}

func (c *Client) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	put := &s3.PutObjectInput{
		Bucket: aws.String(input.Bucket),
		Key:    aws.String(input.Key),
		Body:   input.Body,
	}
	if input.ContentType != "" {
		put.ContentType = aws.String(input.ContentType)
	}

	result, err := c.uploader.Upload(ctx, put)
	if err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	return &port.UploadOutput{
		Location: result.Location,
		ETag:     aws.ToString(result.ETag),
	}, nil
}

func (c *Client) Download(ctx context.Context, bucket, key string, w io.Writer) (int64, error) {
	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("s3 download: %w", err)
	}
	defer result.Body.Close()

	n, err := io.Copy(w, result.Body)
	if err != nil {
		return n, fmt.Errorf("s3 download read: %w", err)
	}
	return n, nil
}

func (c *Client) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	_, err := c.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(CopySource(srcBucket, srcKey)),
	})
	if isNotFound(err) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("s3 copy: %w", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}

func (c *Client) MakePublic(ctx context.Context, bucket, key string) (string, error) {
	_, err := c.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		ACL:    types.ObjectCannedACLPublicRead,
	})
	if isNotFound(err) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("s3 acl: %w", err)
	}
	return c.publicURL(bucket, key), nil
}

func (c *Client) Close() error {
	return nil
}

// SignedURL presigns a request for the object with SigV4. The same 7 day
// ceiling as GCS applies.
func (c *Client) SignedURL(ctx context.Context, input port.SignedURLInput) (*domain.SignedURL, error) {
	expiry := input.ExpirationSeconds
	switch {
	case expiry < 0:
		return nil, fmt.Errorf("%w: negative expiration", domain.ErrInvalidRequest)
	case expiry == 0:
		expiry = signer.DefaultExpirationSeconds
	case expiry > signer.MaxExpirationSeconds:
		return nil, domain.ErrExpirationTooLong
	}
	method := input.Method
	if method == "" {
		method = domain.MethodGet
	}

	bucket, key := aws.String(input.Bucket), aws.String(input.Key)
	withExpiry := s3.WithPresignExpires(time.Duration(expiry) * time.Second)

	var (
		req *signedRequest
		err error
	)
	switch method {
	case domain.MethodGet:
		req, err = wrap(c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: bucket, Key: key}, withExpiry))
	case domain.MethodHead:
		req, err = wrap(c.presigner.PresignHeadObject(ctx, &s3.HeadObjectInput{Bucket: bucket, Key: key}, withExpiry))
	case domain.MethodPut:
		put := &s3.PutObjectInput{Bucket: bucket, Key: key}
		if ct := headerValue(input.Headers, "Content-Type"); ct != "" {
			put.ContentType = aws.String(ct)
		}
		req, err = wrap(c.presigner.PresignPutObject(ctx, put, withExpiry))
	case domain.MethodDelete:
		req, err = wrap(c.presigner.PresignDeleteObject(ctx, &s3.DeleteObjectInput{Bucket: bucket, Key: key}, withExpiry))
	default:
		return nil, fmt.Errorf("%w: method %q cannot be presigned for s3", domain.ErrInvalidRequest, method)
	}
	if err != nil {
		return nil, fmt.Errorf("s3 presign: %w", err)
	}

	return &domain.SignedURL{
		URL:       req.url,
		Method:    req.method,
		ExpiresAt: c.now().UTC().Add(time.Duration(expiry) * time.Second),
	}, nil
}

func (c *Client) publicURL(bucket, key string) string {
	escaped := httpbinding.EscapePath(key, false)
	if c.endpoint != "" {
		return c.endpoint + "/" + bucket + "/" + escaped
	}
	return "https://" + bucket + ".s3.amazonaws.com/" + escaped
}

type signedRequest struct {
	url    string
	method string
}

func wrap(r *v4.PresignedHTTPRequest, err error) (*signedRequest, error) {
	if err != nil {
		return nil, err
	}
	return &signedRequest{url: r.URL, method: r.Method}, nil
}

// headerValue looks a header up by case-insensitive name.
func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// CopySource formats the x-amz-copy-source value for an object.
func CopySource(bucket, key string) string {
	return httpbinding.EscapePath(bucket+"/"+key, false)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsk) || errors.As(err, &nf) || errors.As(err, &nsb) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}

var (
	_ port.ObjectStorage = (*Client)(nil)
	_ port.URLSigner     = (*Client)(nil)
)
