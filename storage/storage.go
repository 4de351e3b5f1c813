// Package storage keeps product images in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Image is a stored object: URL is what clients load, PublicID is what
// Delete takes.
type Image struct {
	URL      string
	PublicID string
}

type ImageStore interface {
	Upload(ctx context.Context, filename string, body io.Reader) (Image, error)
	Delete(ctx context.Context, publicID string) error
}

// ObjectKey returns a fresh key for filename, or ErrUnsupportedImage.
func ObjectKey(filename string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if _, ok := imageTypes[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}
	return "products/" + uuid.NewString() + ext, nil
}

type S3Store struct {
	client        *s3.Client
	uploader      *manager.Uploader
	bucket        string
	publicBaseURL string
}

func NewS3Store(client *s3.Client, bucket, publicBaseURL string) *S3Store {
	return &S3Store{
		client:        client,
		uploader:      manager.NewUploader(client),
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// NewS3StoreFromEnv loads AWS credentials the default way (env, shared
// config, instance role).
func NewS3StoreFromEnv(ctx context.Context, bucket, region, publicBaseURL string) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}
	return NewS3Store(s3.NewFromConfig(cfg), bucket, publicBaseURL), nil
}

func (s *S3Store) Upload(ctx context.Context, filename string, body io.Reader) (Image, error) {
	key, err := ObjectKey(filename)
	if err != nil {
		return Image{}, err
	}

	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(imageTypes[path.Ext(key)]),
	})
	if err != nil {
		return Image{}, fmt.Errorf("upload %s: %w", key, err)
	}

	url := result.Location
	if s.publicBaseURL != "" {
		url = s.publicBaseURL + "/" + key
	}
	return Image{URL: url, PublicID: key}, nil
}

func (s *S3Store) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", publicID, err)
	}
	return nil
}
