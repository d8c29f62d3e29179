package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"claimrisk/internal/config"
	"claimrisk/internal/domain"
	"claimrisk/internal/storage"
)

// Uploader is the subset of *manager.Uploader used by Store.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// ObjectAPI is the subset of *s3.Client used by Store.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Store stages documents in an S3 bucket, for deployments whose instances
// share no local disk. It implements port.DocumentStore.
type Store struct {
	bucket   string
	prefix   string
	uploader Uploader
	client   ObjectAPI
}

// NewStore creates an S3-backed Store.
func NewStore(cfg *config.S3Config) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
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
	return NewStoreWithClients(cfg.Bucket, cfg.Prefix, manager.NewUploader(client), client), nil
}

// NewStoreWithClients creates a Store from explicit clients (for testing).
func NewStoreWithClients(bucket, prefix string, uploader Uploader, client ObjectAPI) *Store {
	return &Store{bucket: bucket, prefix: prefix, uploader: uploader, client: client}
}

func (s *Store) Put(ctx context.Context, doc domain.ClaimDocument) (*domain.StoredDocument, error) {
	key := path.Join(s.prefix, storage.NewKey(doc.Filename, time.Now()))

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(doc.Data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	return &domain.StoredDocument{
		Key:      key,
		Filename: storage.SanitizeFilename(doc.Filename),
		Size:     int64(len(doc.Data)),
	}, nil
}

func (s *Store) Read(ctx context.Context, stored *domain.StoredDocument) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(stored.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 download: %w", err)
	}
	defer func() { _ = result.Body.Close() }()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 download read: %w", err)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, stored *domain.StoredDocument) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(stored.Key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete: %w", err)
	}
	return nil
}
