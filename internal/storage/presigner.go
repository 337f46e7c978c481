package storage

import (
	"context"
	"fmt"
	"time"

	"vouchy/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsmiddleware "github.com/aws/smithy-go/middleware"
)

// Presigner mints time-boxed upload URLs for an object store.
type Presigner interface {
	PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (string, error)
}

// S3Presigner presigns PUT requests against an S3-compatible endpoint.
type S3Presigner struct {
	presignClient *s3.PresignClient
}

// NewS3Presigner builds a path-style S3 client for the given endpoint and
// static credentials. No network call is made.
func NewS3Presigner(ctx context.Context, endpoint, region, accessKey, secretKey string) (*S3Presigner, error) {
	s3Config, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		awsconfig.WithAPIOptions([]func(*awsmiddleware.Stack) error{removeDisableGzip()}),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}
	client := s3.NewFromConfig(s3Config, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return &S3Presigner{presignClient: s3.NewPresignClient(client)}, nil
}

// NewSupabaseStorage presigns against Supabase Storage's S3 gateway.
func NewSupabaseStorage(ctx context.Context, cfg *config.Config) (*S3Presigner, error) {
	return NewS3Presigner(ctx, cfg.SupabaseS3URL, cfg.SupabaseS3Region, cfg.SupabaseS3AccessKey, cfg.SupabaseS3SecretKey)
}

// NewR2Storage presigns against a Cloudflare R2 account.
func NewR2Storage(ctx context.Context, cfg *config.Config) (*S3Presigner, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	return NewS3Presigner(ctx, endpoint, "auto", cfg.R2AccessKeyID, cfg.R2SecretAccessKey)
}

func (p *S3Presigner) PresignPut(ctx context.Context, bucket, key, contentType string, ttl time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	req, err := p.presignClient.PresignPutObject(ctx, input, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign put %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

// removeDisableGzip is a workaround for S3 signature errors with some S3-compatible services.
// See: https://github.com/supabase/storage/issues/577
func removeDisableGzip() func(*awsmiddleware.Stack) error {
	return func(stack *awsmiddleware.Stack) error {
		if _, ok := stack.Finalize.Get("DisableAcceptEncodingGzip"); ok {
			_, err := stack.Finalize.Remove("DisableAcceptEncodingGzip")
			return err
		}
		return nil
	}
}
