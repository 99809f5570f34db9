package publish

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 API the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config selects the bucket endpoint. Credentials come from the usual AWS
// environment, shared config and instance metadata chain.
type S3Config struct {
	Region    string
	Endpoint  string // for S3-compatible stores such as MinIO
	PathStyle bool
}

// NewS3Client builds an S3 client from the default AWS configuration.
func NewS3Client(ctx context.Context, c S3Config) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("publish: load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = c.PathStyle
	}), nil
}

// S3 uploads every file of the output directory to a bucket.
type S3 struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3 creates an S3 publisher writing keys under prefix.
func NewS3(client ObjectPutter, bucket, prefix string, logger *slog.Logger) *S3 {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// Publish uploads dir. Version control directories are skipped; objects no
// longer present locally are left in the bucket.
func (p *S3) Publish(ctx context.Context, dir string) (Report, error) {
	rep := Report{Target: "s3://" + path.Join(p.bucket, p.prefix)}
	err := walkFiles(dir, func(abs, rel string, info fs.FileInfo) error {
		f, err := os.Open(abs)
		if err != nil {
			return err
		}
		defer f.Close()

		key := path.Join(p.prefix, rel)
		if err := p.Upload(ctx, key, f, ContentType(rel)); err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		p.logger.Debug("uploaded", "key", key, "bytes", info.Size())
		rep.Files++
		rep.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return rep, fmt.Errorf("publish: s3: %w", err)
	}
	p.logger.Info("published", "target", rep.Target, "files", rep.Files, "bytes", rep.Bytes)
	return rep, nil
}

// Upload writes one object.
func (p *S3) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}

var contentTypes = map[string]string{
	".atom": "application/atom+xml; charset=utf-8",
	".xml":  "application/xml; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".html": "text/html; charset=utf-8",
}

// ContentType guesses the Content-Type of a frozen file from its extension.
func ContentType(name string) string {
	ext := path.Ext(name)
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
