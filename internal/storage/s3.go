package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/buildassist/backend/internal/config"
)

// StoredObject describes one uploaded blob.
type StoredObject struct {
	Key       string
	URL       string
	SizeBytes int64
}

// ObjectStorage is the external file-storage collaborator. Implementations
// must tolerate Delete being called for keys that no longer exist.
type ObjectStorage interface {
	Put(ctx context.Context, data []byte, contentType string) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
}

// S3Storage stores objects in an S3-compatible bucket (AWS or MinIO).
type S3Storage struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

var _ ObjectStorage = (*S3Storage)(nil)

func NewS3Storage(ctx context.Context, cfg *config.Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &S3Storage{
		client:  client,
		bucket:  cfg.S3Bucket,
		baseURL: cfg.S3Endpoint,
	}, nil
}

// randomStorageKey partitions keys by upload date so buckets stay browsable.
func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *S3Storage) Put(ctx context.Context, data []byte, contentType string) (*StoredObject, error) {
	key := randomStorageKey()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}
	return &StoredObject{
		Key:       key,
		URL:       fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key),
		SizeBytes: int64(len(data)),
	}, nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
