package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultRegion = "us-east-1"

type Settings struct {
	Profile string
	Region  string
	Bucket  string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectWriter uploads export files to a single bucket.
type ObjectWriter struct {
	client putObjectAPI
	bucket string
}

func LoadConfig(ctx context.Context, settings Settings) (*awssdk.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(DefaultRegion),
	}
	if settings.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(settings.Profile))
	}
	if settings.Region != "" {
		opts = append(opts, config.WithRegion(settings.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return &awsCfg, nil
}

func NewObjectWriter(ctx context.Context, settings Settings) (*ObjectWriter, error) {
	cfg, err := LoadConfig(ctx, settings)
	if err != nil {
		return nil, err
	}
	return newObjectWriter(s3.NewFromConfig(*cfg), settings.Bucket)
}

func newObjectWriter(client putObjectAPI, bucket string) (*ObjectWriter, error) {
	if bucket == "" {
		return nil, errors.New("export bucket is not configured")
	}
	return &ObjectWriter{client: client, bucket: bucket}, nil
}

func (w *ObjectWriter) Bucket() string {
	return w.bucket
}

// PutObject stores body under key and returns the s3:// location.
func (w *ObjectWriter) PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        awssdk.String(w.bucket),
		Key:           awssdk.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   awssdk.String(contentType),
		ContentLength: awssdk.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", w.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", w.bucket, key), nil
}
