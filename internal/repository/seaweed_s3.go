package repository

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/mansoorceksport/eventhub/internal/config"
)

// SeaweedS3Repository implements domain.FileRepository on any S3-compatible store
type SeaweedS3Repository struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewSeaweedS3Repository creates the client and makes sure the image bucket exists
func NewSeaweedS3Repository(ctx context.Context, cfg appConfig.S3Config) (*SeaweedS3Repository, error) {
	// SeaweedFS and MinIO want signed requests but accept any static key pair
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("any", "any", "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	repo := &SeaweedS3Repository{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.Endpoint, "/"),
	}

	if err := repo.ensureBucket(ctx); err != nil {
		return nil, err
	}

	return repo, nil
}

// Upload stores file under key and returns its public URL
func (r *SeaweedS3Repository) Upload(ctx context.Context, file []byte, key string, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return objectURL(r.publicURL, r.bucket, key), nil
}

func (r *SeaweedS3Repository) ensureBucket(ctx context.Context) error {
	_, err := r.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = r.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
	}
	return nil
}

// objectURL builds {endpoint}/{bucket}/{key}
func objectURL(endpoint, bucket, key string) string {
	return fmt.Sprintf("%s/%s/%s", endpoint, bucket, strings.TrimLeft(key, "/"))
}
