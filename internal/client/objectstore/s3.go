package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// PutObjectAPI is the part of *s3.Client the uploader uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // S3-compatible endpoint (e.g. MinIO); empty for AWS
	AccessKey string
	SecretKey string

	// PublicBaseURL prefixes keys in returned URLs. Empty derives it from
	// Endpoint/Bucket or the AWS virtual-host form.
	PublicBaseURL string
}

type S3Uploader struct {
	api     PutObjectAPI
	bucket  string
	baseURL string
}

// New builds an uploader with static credentials when provided, falling back
// to the default AWS credential chain otherwise.
func New(ctx context.Context, cfg Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("objectstore: bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("objectstore: load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, cfg.Bucket, publicBaseURL(cfg)), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(api PutObjectAPI, bucket, baseURL string) *S3Uploader {
	return &S3Uploader{api: api, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

func publicBaseURL(cfg Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// Upload puts body at key and returns the object's durable URL.
func (u *S3Uploader) Upload(ctx context.Context, key string, body io.Reader) (string, error) {
	_, err := u.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType(key)),
	})
	if err != nil {
		return "", fmt.Errorf("objectstore: put %s: %w", key, err)
	}
	return u.URL(key), nil
}

// URL is the public location of key.
func (u *S3Uploader) URL(key string) string {
	return u.baseURL + "/" + strings.TrimLeft(key, "/")
}

func contentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".png"):
		return "image/png"
	case strings.HasSuffix(key, ".jpg"), strings.HasSuffix(key, ".jpeg"):
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

// PlacePhotoKey is the object key of a place photo. ext is the staged file's
// extension; it picks the stored content type and defaults to ".jpg".
func PlacePhotoKey(placeID, photoID int64, ext string) string {
	return fmt.Sprintf("places/%d/photos/%d%s", placeID, photoID, keyExt(ext))
}

// NotePhotoKey is the object key of a note photo. See PlacePhotoKey for ext.
func NotePhotoKey(noteID, photoID int64, ext string) string {
	return fmt.Sprintf("notes/%d/photos/%d%s", noteID, photoID, keyExt(ext))
}

func keyExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return ".jpg"
	}
	return "." + ext
}
