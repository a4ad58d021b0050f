package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// maxObjectSize caps how much of an object GetItem will read.
const maxObjectSize = 1 << 20

// ObjectAPI is the subset of the S3 client used by the S3 store.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 implements Storage with one object per key.
type S3 struct {
	client ObjectAPI
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3 creates an S3-backed store using the default AWS credential chain.
func NewS3(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (*S3, error) {
	logger = logger.With().Str("storage", "s3").Logger()

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 storage initialised")

	return NewS3WithClient(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

// NewS3WithClient creates an S3-backed store around an existing client.
func NewS3WithClient(client ObjectAPI, bucket, prefix string, logger zerolog.Logger) *S3 {
	return &S3{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

// GetItem reads the object stored under prefix+key.
func (s *S3) GetItem(ctx context.Context, key string) (string, error) {
	objectKey := s.prefix + key

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return "", ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", objectKey).
			Msg("failed to get object from S3")
		return "", fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", s.bucket, objectKey, err)
	}
	defer result.Body.Close()

	body, err := io.ReadAll(io.LimitReader(result.Body, maxObjectSize))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", objectKey).
			Msg("failed to read object body")
		return "", fmt.Errorf("failed to read S3 object %s: %w", objectKey, err)
	}

	return string(body), nil
}

// SetItem overwrites the object stored under prefix+key.
func (s *S3) SetItem(ctx context.Context, key, value string) error {
	objectKey := s.prefix + key

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        strings.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", objectKey).
			Msg("failed to put object to S3")
		return fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, objectKey, err)
	}

	return nil
}
