package s3

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

// URIScheme prefixes dump paths that live in object storage.
const URIScheme = "s3://"

// S3DumpLoader is a DumpLoader implementation that streams dumps from an S3
// bucket. It uses the AWS SDK v2 for Go.
//
// Dumps are never buffered in memory; the object body is handed to the
// caller as is.
type S3DumpLoader struct {
	bucket string
	client *s3.Client
}

// NewS3DumpLoaderWithClient creates a new S3DumpLoader using an existing
// s3.Client.
func NewS3DumpLoaderWithClient(bucket string, client *s3.Client) *S3DumpLoader {
	return &S3DumpLoader{
		bucket: bucket,
		client: client,
	}
}

// NewS3DumpLoaderParams defines the configuration parameters for creating a
// new S3DumpLoader.
//
// Bucket is the default bucket for paths without an s3:// prefix.
// Endpoint allows overriding the S3 endpoint (useful for S3-compatible
// storage like MinIO).
type NewS3DumpLoaderParams struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// NewS3DumpLoader creates a new S3DumpLoader with static credentials and the
// given endpoint/region.
//
// Example:
//
//	l, err := s3.NewS3DumpLoader(ctx, s3.NewS3DumpLoaderParams{
//		Bucket:    "dumps",
//		Endpoint:  "http://localhost:9000",
//		Region:    "us-east-1",
//		AccessKey: os.Getenv("AWS_ACCESS_KEY"),
//		SecretKey: os.Getenv("AWS_SECRET_KEY"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	r, err := loader.Open(ctx, l, "s3://dumps/enwiki-latest-pages-articles.xml.bz2")
func NewS3DumpLoader(ctx context.Context, params NewS3DumpLoaderParams) (*S3DumpLoader, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(params.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			params.AccessKey,
			params.SecretKey,
			"",
		)),
	}
	if params.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(params.Endpoint))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return NewS3DumpLoaderWithClient(params.Bucket, client), nil
}

// Open streams the object at path. path is either a key in the default
// bucket or an s3://bucket/key URI.
func (l *S3DumpLoader) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key := l.bucket, path
	if b, k, ok := ParseURI(path); ok {
		bucket, key = b, k
	}
	if bucket == "" {
		return nil, fmt.Errorf("no bucket configured for %s", path)
	}

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

// ParseURI splits an s3://bucket/key URI. ok is false for anything else.
func ParseURI(path string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(path, URIScheme)
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
