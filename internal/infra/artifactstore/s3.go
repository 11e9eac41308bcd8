// Where: cli/internal/infra/artifactstore/s3.go
// What: S3 client factory and adapter for manifest objects.
// Why: Encapsulate SDK configuration for custom endpoints (MinIO, RustFS).
package artifactstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultAWSRegion = "us-east-1"

// S3Options configures the S3 client. Empty fields use SDK defaults.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
}

// NewS3 returns an ObjectAPI backed by aws-sdk-go-v2.
func NewS3(ctx context.Context, opts S3Options) (ObjectAPI, error) {
	cfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(options *s3.Options) {
		if opts.Endpoint != "" {
			options.BaseEndpoint = aws.String(opts.Endpoint)
			options.UsePathStyle = true
		}
	})
	return awsS3Client{client: client}, nil
}

func loadAWSConfig(ctx context.Context, opts S3Options) (aws.Config, error) {
	region := opts.Region
	if region == "" {
		region = defaultAWSRegion
	}
	loaders := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")
		loaders = append(loaders, config.WithCredentialsProvider(creds))
	}
	return config.LoadDefaultConfig(ctx, loaders...)
}

type awsS3Client struct {
	client *s3.Client
}

func (c awsS3Client) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	return err
}

func (c awsS3Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
