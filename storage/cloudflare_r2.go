package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type CloudflareR2UploaderConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

type cloudflareR2Uploader struct {
	s3Client      *s3.Client
	bucketName    string
	publicBaseURL string
}

func NewCloudflareR2Uploader(cfg CloudflareR2UploaderConfig) (FileUploader, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.BucketName == "" || cfg.PublicBaseURL == "" {
		return nil, errors.New("invalid Cloudflare R2 configuration: all fields are required")
	}

	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:           fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID),
			SigningRegion: "auto",
		}, nil
	})

	sdkCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	return &cloudflareR2Uploader{
		s3Client:      s3.NewFromConfig(sdkCfg),
		bucketName:    cfg.BucketName,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

func (u *cloudflareR2Uploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	result, err := u.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucketName),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object to R2 (key: %s): %w", key, err)
	}

	etag := ""
	if result.ETag != nil {
		// ETag от S3-совместимых API часто приходит в двойных кавычках.
		etag = strings.Trim(*result.ETag, "\"")
	}

	return &UploadResult{
		Key:      key,
		Location: u.GetPublicURL(key),
		ETag:     etag,
	}, nil
}

func (u *cloudflareR2Uploader) GetPublicURL(key string) string {
	if u.publicBaseURL == "" || key == "" {
		return ""
	}

	baseURL, err := url.Parse(u.publicBaseURL)
	if err != nil {
		slog.Error("failed to parse public base URL", "url", u.publicBaseURL, "error", err)
		return ""
	}
	pathURL, err := url.Parse(key)
	if err != nil {
		slog.Error("failed to parse object key as URL path", "key", key, "error", err)
		return ""
	}

	return baseURL.ResolveReference(pathURL).String()
}
