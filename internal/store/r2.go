package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// =============================================================================
// R2Store Implementation
// =============================================================================

// R2Store implements StateStore using Cloudflare R2.
// R2 is S3-compatible, so we use the AWS SDK v2 with custom configuration.
type R2Store struct {
	client     *s3.Client
	bucketName string
	logger     *slog.Logger
}

// R2Config contains the credentials and bucket for an R2Store.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string // Defaults to "auto"
}

// NewR2Store creates a new R2Store instance.
//
// The R2 endpoint URL is automatically constructed from the account ID.
func NewR2Store(cfg R2Config, logger *slog.Logger) (*R2Store, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	// Format: https://{account_id}.r2.cloudflarestorage.com
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	creds := credentials.NewStaticCredentialsProvider(
		cfg.AccessKeyID,
		cfg.SecretAccessKey,
		"", // session token not needed for R2
	)

	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:           endpoint,
				SigningRegion: region,
			}, nil
		},
	)

	awsCfg := aws.Config{
		Region:                      region,
		Credentials:                 creds,
		EndpointResolverWithOptions: customResolver,
	}

	client := s3.NewFromConfig(awsCfg)

	logger.Info("initialized R2 state store",
		"bucket", cfg.BucketName,
		"endpoint", endpoint,
	)

	return &R2Store{
		client:     client,
		bucketName: cfg.BucketName,
		logger:     logger,
	}, nil
}

// Get retrieves the document at the specified key.
func (s *R2Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, &StoreError{Op: "Get", Key: key, Err: err}
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, &StoreError{Op: "Get", Key: key, Err: ErrNotFound}
		}
		return nil, &StoreError{Op: "Get", Key: key, Err: err}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &StoreError{Op: "Get", Key: key, Err: err}
	}

	return data, nil
}

// Put stores a document at the specified key, replacing any existing one.
func (s *R2Store) Put(ctx context.Context, key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return &StoreError{Op: "Put", Key: key, Err: err}
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return &StoreError{Op: "Put", Key: key, Err: err}
	}

	return nil
}

// Delete removes the document at the specified key.
func (s *R2Store) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return &StoreError{Op: "Delete", Key: key, Err: err}
	}

	// S3 DeleteObject is idempotent; a missing key is not an error.
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return &StoreError{Op: "Delete", Key: key, Err: err}
	}

	return nil
}

// isNotFound reports whether an S3 error means the object doesn't exist.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}
