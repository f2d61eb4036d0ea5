package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/sohansahooo/vidshort/internal/config"
)

// DefaultPresignExpiry bounds how long a presigned upload URL stays valid.
const DefaultPresignExpiry = 15 * time.Minute

// PresignedUpload describes a direct-to-bucket upload the client may perform.
type PresignedUpload struct {
	Key       string      `json:"key"`
	Method    string      `json:"method"`
	URL       string      `json:"url"`
	Headers   http.Header `json:"headers,omitempty"`
	PublicURL string      `json:"publicUrl"`
}

// S3Storage stores uploaded media in an S3-compatible bucket.
type S3Storage struct {
	uploader  *manager.Uploader
	presigner *s3.PresignClient
	bucket    string
	baseURL   string
}

// NewS3Storage configures an uploader targeting the provided object store.
func NewS3Storage(ctx context.Context, cfg config.ObjectStoreConfig) (*S3Storage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3Storage{
		uploader:  uploader,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		baseURL:   strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Save uploads the provided content to the configured bucket and returns a public location.
func (s *S3Storage) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	key := strings.TrimLeft(name, "/")
	if key == "" {
		return "", fmt.Errorf("s3 storage: empty key")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   manager.ReadSeekCloser(r),
		ACL:    s3types.ObjectCannedACLPublicRead,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("s3 storage upload %s: %w", key, err)
	}

	return PublicURL(s.baseURL, key), nil
}

// PresignPut returns a presigned PUT request for key.
func (s *S3Storage) PresignPut(ctx context.Context, name, contentType string, expires time.Duration) (PresignedUpload, error) {
	key := strings.TrimLeft(name, "/")
	if key == "" {
		return PresignedUpload{}, fmt.Errorf("s3 storage: empty key")
	}
	if expires <= 0 {
		expires = DefaultPresignExpiry
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	req, err := s.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(expires))
	if err != nil {
		return PresignedUpload{}, fmt.Errorf("s3 storage presign %s: %w", key, err)
	}

	return PresignedUpload{
		Key:       key,
		Method:    req.Method,
		URL:       req.URL,
		Headers:   req.SignedHeader,
		PublicURL: PublicURL(s.baseURL, key),
	}, nil
}

// ObjectKey builds a collision-free key for an upload owned by ownerID,
// keeping the extension of the original filename.
func ObjectKey(ownerID, filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	owner := strings.Trim(ownerID, "/")
	if owner == "" {
		owner = "anonymous"
	}
	return fmt.Sprintf("uploads/%s/%s%s", owner, uuid.NewString(), ext)
}

// PublicURL joins baseURL and key. Without a base URL the bare key is returned.
func PublicURL(baseURL, key string) string {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if baseURL == "" {
		return key
	}
	return baseURL + "/" + strings.TrimLeft(key, "/")
}
