package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"g2p-curation/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// ObjectPutter is the part of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver keeps copies of import audit logs and reports in a bucket.
type Archiver struct {
	Client  ObjectPutter
	Bucket  string
	BaseURL string
	Logger  *zap.Logger
}

// NewS3Client creates an S3 client for the configured endpoint. An empty
// S3_URL uses the AWS default endpoints.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3Key != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3Key, cfg.S3Secret, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3URL != "" {
			o.BaseEndpoint = aws.String(cfg.S3URL)
			o.UsePathStyle = true
		}
	}), nil
}

// NewArchiver builds an archiver from the configuration.
func NewArchiver(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Archiver, error) {
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Archiver{Client: client, Bucket: cfg.S3Bucket, BaseURL: cfg.S3URL, Logger: logger}, nil
}

// ImportKey is the object key of one artifact of an import run.
func ImportKey(variant string, at time.Time, name string) string {
	return path.Join("imports", variant, at.UTC().Format("20060102T150405Z"), path.Base(name))
}

// Upload stores data under key and returns a link to the object.
func (a *Archiver) Upload(ctx context.Context, key string, data []byte) (string, error) {
	_, err := a.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/tab-separated-values"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	link := fmt.Sprintf("s3://%s/%s", a.Bucket, key)
	if a.BaseURL != "" {
		link = fmt.Sprintf("%s/%s/%s", strings.TrimRight(a.BaseURL, "/"), a.Bucket, key)
	}
	a.Logger.Info("archived import artifact", zap.String("link", link), zap.Int("bytes", len(data)))
	return link, nil
}
