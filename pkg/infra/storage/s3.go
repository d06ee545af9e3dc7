package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/ClearVault/MediaGuard/pkg/infra/httpx"
)

// Config for the S3-compatible media bucket (AWS or minio-style endpoint).
type Config struct {
	Bucket   string
	Region   string
	Endpoint string
	Username string
	Password string
}

type S3Storage struct {
	uploader *manager.Uploader
	bucket   string
	breaker  httpx.CircuitBreaker
	logger   logrus.FieldLogger
}

func NewS3Storage(ctx context.Context, cfg Config, breaker httpx.CircuitBreaker, logger logrus.FieldLogger) (*S3Storage, error) {
	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(aws.Config{Region: cfg.Region}, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.Username, cfg.Password, "")
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		client = s3.NewFromConfig(awsCfg)
	}

	return &S3Storage{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		breaker:  breaker,
		logger:   logger,
	}, nil
}

// Upload streams one accepted media object to the bucket through the storage
// circuit breaker.
func (s *S3Storage) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        body,
			ContentType: aws.String(contentType),
		})
		return err
	})
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to upload media object")
		return fmt.Errorf("storage upload failed: %w", err)
	}
	return nil
}
