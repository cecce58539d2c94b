// internal/config/s3.go
package config

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the client used for creative file storage.
type S3Config struct {
	Client *s3.Client
	Bucket string
	// PublicBaseURL overrides the default virtual-hosted URL when the
	// bucket sits behind a CDN.
	PublicBaseURL string
}

// NewS3Config builds an S3 client from AWS_* environment variables.
func NewS3Config() (*S3Config, error) {
	region := os.Getenv("AWS_REGION")
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			os.Getenv("AWS_ACCESS_KEY_ID"),
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := os.Getenv("S3_BUCKET_NAME")
	publicBase := os.Getenv("S3_PUBLIC_BASE_URL")
	if publicBase == "" && bucket != "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &S3Config{
		Client:        s3.NewFromConfig(cfg),
		Bucket:        bucket,
		PublicBaseURL: publicBase,
	}, nil
}
