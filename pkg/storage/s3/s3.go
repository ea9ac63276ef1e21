// Package s3 implements storage.ObjectStore with Amazon S3 presigned URLs.
// Any S3 compatible store can be used by setting a custom endpoint.
package s3

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/soft-lfs/pkg/storage"
)

// Config holds the bucket and connection settings.
type Config struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

var _ Presigner = (*s3.PresignClient)(nil)

// Presigner is the subset of s3.PresignClient used here.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Store signs URLs for objects in a single bucket.
type Store struct {
	bucket    string
	presigner Presigner
}

var _ storage.ObjectStore = (*Store)(nil)

// New loads the AWS configuration and returns a Store for cfg.Bucket.
func New(ctx context.Context, cfg Config) (*Store, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewWithPresigner(cfg.Bucket, s3.NewPresignClient(client)), nil
}

// NewWithPresigner returns a Store using the given presigner.
func NewWithPresigner(bucket string, p Presigner) *Store {
	return &Store{bucket: bucket, presigner: p}
}

// SignURL implements storage.ObjectStore.
func (s *Store) SignURL(ctx context.Context, key string, method storage.Method, ttl time.Duration) (string, error) {
	expires := s3.WithPresignExpires(ttl)

	var (
		req *v4.PresignedHTTPRequest
		err error
	)
	switch method {
	case storage.MethodGet:
		req, err = s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, expires)
	case storage.MethodPut:
		req, err = s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, expires)
	default:
		return "", fmt.Errorf("unsupported method %q", method)
	}
	if err != nil {
		return "", fmt.Errorf("presign %s %s: %w", method, key, err)
	}

	return req.URL, nil
}
