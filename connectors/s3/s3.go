package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Getter is the subset of the S3 API the importer needs.
type Getter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client downloads base tables from a bucket.
type Client struct {
	api    Getter
	bucket string
}

// New loads the default AWS credential chain for region (and profile, when set).
func New(ctx context.Context, region, profile, bucket string) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}
	return NewWithAPI(s3.NewFromConfig(cfg), bucket), nil
}

// NewWithAPI wraps an existing S3 API implementation.
func NewWithAPI(api Getter, bucket string) *Client {
	return &Client{api: api, bucket: bucket}
}

// Download copies the object at key into path and returns the bytes written. The body lands
// in a temporary file next to path and replaces path only once validate accepts it, so a bad
// object never overwrites the previous file. A nil validate accepts anything.
func (c *Client) Download(ctx context.Context, key, path string, validate func(string) error) (int64, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, fmt.Errorf("get s3://%s/%s: %w", c.bucket, key, err)
	}
	defer out.Body.Close()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, "."+strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+"-*"+filepath.Ext(path))
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, out.Body)
	if err != nil {
		tmp.Close()
		return n, fmt.Errorf("copy s3://%s/%s: %w", c.bucket, key, err)
	}
	if err := tmp.Close(); err != nil {
		return n, err
	}
	if validate != nil {
		if err := validate(tmp.Name()); err != nil {
			return n, fmt.Errorf("s3://%s/%s: %w", c.bucket, key, err)
		}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return n, err
	}
	committed = true
	return n, nil
}
