package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/OFFIS-RIT/wikigraph/internal/util"
)

// NewS3Client creates a path-style S3 client from the AWS_* environment
// variables.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(util.GetEnv("AWS_REGION")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			util.GetEnv("AWS_ACCESS_KEY"),
			util.GetEnv("AWS_SECRET_KEY"),
			"",
		)),
	}
	if endpoint := util.GetEnv("AWS_ENDPOINT"); endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(endpoint))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	}), nil
}

// Bucket returns the configured dump bucket.
func Bucket() string {
	return util.GetEnv("AWS_BUCKET")
}

// ObjectExists reports whether key exists in the dump bucket.
func ObjectExists(ctx context.Context, client *s3.Client, bucket, key string) (bool, error) {
	_, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s/%s: %w", bucket, key, err)
}

// PutDump uploads a dump below dumps/<id>/ keeping the original file name,
// so the suffix still selects the decompressor. It returns the object key.
func PutDump(ctx context.Context, client *s3.Client, bucket, id, name string, file io.ReadSeeker) (string, error) {
	key := path.Join("dumps", id, path.Base(name))
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload dump to S3: %w", err)
	}

	return key, nil
}

// DumpBucket binds the helpers above to one client and bucket.
type DumpBucket struct {
	Client *s3.Client
	Name   string
}

func (b DumpBucket) Exists(ctx context.Context, bucket, key string) (bool, error) {
	return ObjectExists(ctx, b.Client, bucket, key)
}

// Put uploads file and returns its s3:// URI.
func (b DumpBucket) Put(ctx context.Context, id, name string, file io.ReadSeeker) (string, error) {
	key, err := PutDump(ctx, b.Client, b.Name, id, name, file)
	if err != nil {
		return "", err
	}
	return "s3://" + b.Name + "/" + key, nil
}
