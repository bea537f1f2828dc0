// ABOUTME: S3 object backend storing the CSV collection as one remote object.
// ABOUTME: Works with AWS S3 or any S3-compatible endpoint such as MinIO.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options holds the object location and client settings.
type S3Options struct {
	Bucket          string
	Key             string // defaults to CSVFileName
	Region          string // defaults to us-east-1
	Endpoint        string // optional; enables a custom endpoint (e.g. MinIO)
	AccessKeyID     string // optional; falls back to the default credentials chain
	SecretAccessKey string
	PathStyle       bool
}

// objectAPI is the subset of *s3.Client the store needs.
type objectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps all records in a single CSV object.
type S3Store struct {
	*flatStore
	bucket string
	key    string
}

// Compile-time check that S3Store implements Repository.
var _ Repository = (*S3Store)(nil)

// OpenS3 builds an S3 client from opts and returns a store for the object.
func OpenS3(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.PathStyle {
			o.UsePathStyle = true
		}
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return NewS3Store(client, opts.Bucket, opts.Key), nil
}

// NewS3Store returns a store over an existing client.
func NewS3Store(client objectAPI, bucket, key string) *S3Store {
	if key == "" {
		key = CSVFileName
	}
	s := &S3Store{bucket: bucket, key: key}
	s.flatStore = &flatStore{doc: objectDocument{client: client, bucket: bucket, key: key}}
	return s
}

// Close releases resources. For S3Store this is a no-op.
func (s *S3Store) Close() error {
	return nil
}

// objectDocument reads and writes one S3 object.
type objectDocument struct {
	client objectAPI
	bucket string
	key    string
}

func (o objectDocument) read(ctx context.Context) ([]byte, bool, error) {
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &o.bucket, Key: &o.key})
	if err != nil {
		var noKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noKey) || errors.As(err, &notFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get s3://%s/%s: %w", o.bucket, o.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read s3://%s/%s: %w", o.bucket, o.key, err)
	}
	return data, true, nil
}

func (o objectDocument) write(ctx context.Context, data []byte) error {
	_, err := o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &o.bucket,
		Key:         &o.key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", o.bucket, o.key, err)
	}
	return nil
}
