// Package publish uploads dump files to an S3-compatible bucket.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"xrefcanon/internal/config"
	"xrefcanon/internal/fileutil"
	"xrefcanon/internal/logging"
)

// ErrNoBucket reports a publish attempt without a configured bucket.
var ErrNoBucket = errors.New("publish bucket not configured")

// Options holds explicit construction parameters. Credentials fall back to
// the default AWS chain when AccessKeyID is empty.
type Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	HTTPClient      *http.Client
}

// OptionsFromConfig maps the publish config section.
func OptionsFromConfig(cfg config.Publish) Options {
	return Options{
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		Prefix:    cfg.Prefix,
		PathStyle: cfg.PathStyle,
	}
}

// Publisher uploads files under one key prefix.
type Publisher struct {
	client *s3.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// Upload is one uploaded object.
type Upload struct {
	File  string `json:"file"`
	Key   string `json:"key"`
	Bytes int64  `json:"bytes"`
}

// New builds a publisher from opts.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*Publisher, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, ErrNoBucket
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
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
		if opts.HTTPClient != nil {
			o.HTTPClient = opts.HTTPClient
		}
	})
	return &Publisher{
		client: client,
		bucket: opts.Bucket,
		prefix: strings.Trim(opts.Prefix, "/"),
		logger: logging.NewComponentLogger(logger, "publish"),
	}, nil
}

// Key returns the object key for a file name.
func (p *Publisher) Key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// UploadFile uploads one file under the prefix using its base name.
func (p *Publisher) UploadFile(ctx context.Context, file string) (Upload, error) {
	f, err := os.Open(file)
	if err != nil {
		return Upload{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return Upload{}, err
	}

	key := p.Key(filepath.Base(file))
	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(file)),
	}
	if _, err := p.client.PutObject(ctx, input); err != nil {
		return Upload{}, fmt.Errorf("put %s: %w", key, err)
	}
	logging.WithContext(ctx, p.logger).Info("uploaded dump",
		logging.String("key", key),
		logging.Int64("bytes", info.Size()),
	)
	return Upload{File: file, Key: key, Bytes: info.Size()}, nil
}

// UploadDir uploads every dump file in dir in name order. Lock and temp
// files are skipped.
func (p *Publisher) UploadDir(ctx context.Context, dir string) ([]Upload, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || fileutil.IsTempFile(name) {
			continue
		}
		if strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".tsv.gz") || strings.HasSuffix(name, ".json") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)

	uploads := make([]Upload, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return uploads, err
		}
		up, err := p.UploadFile(ctx, file)
		if err != nil {
			return uploads, err
		}
		uploads = append(uploads, up)
	}
	return uploads, nil
}

func contentType(file string) string {
	switch {
	case strings.HasSuffix(file, ".gz"):
		return "application/gzip"
	case strings.HasSuffix(file, ".json"):
		return "application/json"
	default:
		return "text/tab-separated-values"
	}
}
