package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/kezhenxu94/after-hours/pkg/config"
)

// S3Client defines the S3 operations used by S3Backend.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Backend stores the settings document as a JSON object in S3 or an S3-compatible service.
type S3Backend struct {
	client S3Client
	bucket string
	key    string
}

// S3Option configures an S3Backend.
type S3Option func(*S3Backend)

// WithS3Client sets a pre-configured S3 client instead of loading the AWS configuration.
func WithS3Client(client S3Client) S3Option {
	return func(b *S3Backend) {
		b.client = client
	}
}

// NewS3Backend creates an S3 backend for the configured bucket and key.
func NewS3Backend(ctx context.Context, cfg config.S3StoreConfig, opts ...S3Option) (*S3Backend, error) {
	if cfg.Bucket == "" || cfg.Key == "" {
		return nil, fmt.Errorf("bucket and key are required for the s3 settings backend")
	}

	b := &S3Backend{bucket: cfg.Bucket, key: cfg.Key}
	for _, opt := range opts {
		opt(b)
	}
	if b.client != nil {
		return b, nil
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %v", err)
	}

	b.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})
	return b, nil
}

func (b *S3Backend) Load(ctx context.Context) (map[string]string, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		if isNotFound(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to get settings object s3://%s/%s: %w", b.bucket, b.key, err)
	}
	defer func() {
		_ = out.Body.Close()
	}()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings object: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse settings object: %v", err)
	}
	return stringify(raw), nil
}

func (b *S3Backend) Save(ctx context.Context, values map[string]string) error {
	body, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %v", err)
	}

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put settings object s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return nil
}

// String returns a string representation of the S3Backend
func (b *S3Backend) String() string {
	return fmt.Sprintf("S3Backend{bucket: %s, key: %s}", b.bucket, b.key)
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
