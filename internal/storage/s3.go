package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore is the slice of the S3 API the store needs
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store uploads attachments to a bucket and returns CDN URLs
type S3Store struct {
	client  ObjectStore
	bucket  string
	prefix  string
	cdnBase string
}

// NewS3Store creates a store using the default AWS credential chain
func NewS3Store(ctx context.Context, region, bucket, cdnBase string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("uploads bucket not configured")
	}
	if region == "" {
		region = "eu-central-1"
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS default config: %w", err)
	}
	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, cdnBase), nil
}

// NewS3StoreWithClient wires an existing client
func NewS3StoreWithClient(client ObjectStore, bucket, cdnBase string) *S3Store {
	if cdnBase == "" {
		cdnBase = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3Store{client: client, bucket: bucket, prefix: "uploads/", cdnBase: strings.TrimRight(cdnBase, "/")}
}

// Save uploads r to uploads/{storedName}
func (s *S3Store) Save(ctx context.Context, storedName, contentType string, r io.Reader) (string, error) {
	key := s.prefix + storedName
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return s.cdnBase + "/" + key, nil
}

// Remove deletes the object behind a CDN URL returned by Save
func (s *S3Store) Remove(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.cdnBase+"/")
	if !ok || !strings.HasPrefix(key, s.prefix) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", key, err)
	}
	return nil
}
