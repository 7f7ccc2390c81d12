package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// s3API is the part of the S3 client the store uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Store implements Store on AWS S3.
type s3Store struct {
	client    s3API
	bucket    string
	prefix    string
	publicURL string
	logger    zerolog.Logger
}

// S3Options configures an S3 store. PublicURL overrides the default virtual-hosted bucket URL.
type S3Options struct {
	Bucket    string
	Region    string
	Prefix    string
	PublicURL string
}

// NewS3Store creates a new S3-backed store using the default AWS credential chain.
func NewS3Store(ctx context.Context, opts S3Options, logger zerolog.Logger) (Store, error) {
	logger = logger.With().Str("component", "s3-store").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", opts.Bucket).
		Str("region", opts.Region).
		Msg("S3 store initialised")

	return newS3Store(s3.NewFromConfig(cfg), opts, logger), nil
}

func newS3Store(client s3API, opts S3Options, logger zerolog.Logger) *s3Store {
	publicURL := opts.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}

	return &s3Store{
		client:    client,
		bucket:    opts.Bucket,
		prefix:    opts.Prefix,
		publicURL: publicURL,
		logger:    logger,
	}
}

// Put uploads body under prefix+key.
func (s *s3Store) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	objectKey := s.prefix + key

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", objectKey).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, objectKey, err)
	}

	s.logger.Info().
		Str("bucket", s.bucket).
		Str("key", objectKey).
		Int64("bytes", size).
		Msg("upload stored in S3")

	return joinURL(s.publicURL, objectKey), nil
}
