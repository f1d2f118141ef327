package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"go.uber.org/zap"
)

// S3Config configures access to models stored under s3:// URLs.
// Empty credentials fall back to the default AWS credential chain.
type S3Config struct {
	Region          string
	Endpoint        string // optional, e.g. a MinIO endpoint
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// Loader reads transcript models serialized as JSON arrays of Transcript,
// optionally gzip-compressed (.json.gz). Locations are local paths, any URL
// understood by afs (file://, http(s)://, mem://), or s3://bucket/key. A
// location that does not name a model file is walked for model files.
type Loader struct {
	fs     afs.Service
	s3     S3Config
	logger *zap.Logger
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithS3 sets the configuration used for s3:// locations.
func WithS3(cfg S3Config) LoaderOption {
	return func(l *Loader) { l.s3 = cfg }
}

// WithLoaderLogger sets the logger used to report skipped transcripts.
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a new model loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{fs: afs.New(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OpenModels loads every model file at the given locations into a new cache.
func OpenModels(ctx context.Context, locations []string, opts ...LoaderOption) (*Cache, error) {
	l := NewLoader(opts...)
	c := New()
	for _, loc := range locations {
		if err := l.Load(ctx, c, loc); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Load loads all transcripts found at location into the cache.
func (l *Loader) Load(ctx context.Context, c *Cache, location string) error {
	if strings.HasPrefix(location, "s3://") {
		return l.loadS3(ctx, c, location)
	}
	if isModelFile(location) {
		data, err := l.fs.DownloadWithURL(ctx, location)
		if err != nil {
			return fmt.Errorf("download %s: %w", location, err)
		}
		return l.decode(c, location, data)
	}

	var files []string
	visitor := func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if !info.IsDir() && isModelFile(info.Name()) {
			files = append(files, url.Join(url.Join(baseURL, parent), info.Name()))
		}
		return true, nil
	}
	if err := l.fs.Walk(ctx, location, visitor); err != nil {
		return fmt.Errorf("list models in %s: %w", location, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no model files (*.json, *.json.gz) in %s", location)
	}
	sort.Strings(files)
	for _, f := range files {
		data, err := l.fs.DownloadWithURL(ctx, f)
		if err != nil {
			return fmt.Errorf("download %s: %w", f, err)
		}
		if err := l.decode(c, f, data); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) loadS3(ctx context.Context, c *Cache, location string) error {
	bucket, key, _ := strings.Cut(strings.TrimPrefix(location, "s3://"), "/")
	if bucket == "" {
		return fmt.Errorf("invalid s3 location %q", location)
	}
	client, err := l.s3Client(ctx)
	if err != nil {
		return fmt.Errorf("s3 client: %w", err)
	}

	keys := []string{key}
	if !isModelFile(key) {
		keys = nil
		p := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{Bucket: aws.String(bucket), Prefix: aws.String(key)})
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return fmt.Errorf("list %s: %w", location, err)
			}
			for _, obj := range page.Contents {
				if k := aws.ToString(obj.Key); isModelFile(k) {
					keys = append(keys, k)
				}
			}
		}
		if len(keys) == 0 {
			return fmt.Errorf("no model files (*.json, *.json.gz) in %s", location)
		}
		sort.Strings(keys)
	}

	for _, k := range keys {
		out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(k)})
		if err != nil {
			return fmt.Errorf("get s3://%s/%s: %w", bucket, k, err)
		}
		data, err := io.ReadAll(out.Body)
		_ = out.Body.Close()
		if err != nil {
			return fmt.Errorf("read s3://%s/%s: %w", bucket, k, err)
		}
		if err := l.decode(c, k, data); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) s3Client(ctx context.Context) (*s3.Client, error) {
	region := l.s3.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if l.s3.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(l.s3.AccessKeyID, l.s3.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = l.s3.PathStyle
		if l.s3.Endpoint != "" {
			o.BaseEndpoint = aws.String(l.s3.Endpoint)
		}
	}), nil
}

// decode parses one model file and adds its transcripts to the cache.
// Transcripts failing validation are skipped with a warning.
func (l *Loader) decode(c *Cache, name string, data []byte) error {
	var r io.Reader = bytes.NewReader(data)
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("decompress %s: %w", name, err)
		}
		defer gz.Close()
		r = gz
	}

	var transcripts []*Transcript
	if err := json.NewDecoder(r).Decode(&transcripts); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	for _, t := range transcripts {
		if err := t.Finalize(); err != nil {
			l.logger.Warn("skipping transcript", zap.String("source", name), zap.Error(err))
			continue
		}
		c.AddTranscript(t)
	}
	l.logger.Debug("loaded transcript models", zap.String("source", name), zap.Int("transcripts", len(transcripts)))
	return nil
}

func isModelFile(name string) bool {
	return strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".json.gz")
}
