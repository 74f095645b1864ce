package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

type Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	UsePathStyle  bool
	Prefix        string
}

// extensions maps upload content types to object key suffixes. Anything
// outside the image set ends up as .bin rather than being rejected.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/webp": ".webp",
}

// Uploader stores admin-supplied media (campaign icons, team photos) in S3
// and hands back a public URL for the image reference fields.
type Uploader struct {
	cfg    Config
	client *s3.Client
}

func NewUploader(cfg Config) (*Uploader, error) {
	var missing []string
	if cfg.Region == "" {
		missing = append(missing, "region")
	}
	if cfg.AccessKey == "" {
		missing = append(missing, "access key")
	}
	if cfg.SecretKey == "" {
		missing = append(missing, "secret key")
	}
	if cfg.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if cfg.PublicBaseURL == "" {
		missing = append(missing, "public base url")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("incomplete s3 config: missing %s", strings.Join(missing, ", "))
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "media"
	}

	options := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		options.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return &Uploader{
		cfg:    cfg,
		client: s3.New(options),
	}, nil
}

func (u *Uploader) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("no data to upload")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := u.objectKey(contentType)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key, nil
}

// objectKey partitions uploads by day so the bucket stays browsable.
func (u *Uploader) objectKey(contentType string) string {
	ext, ok := extensions[strings.ToLower(contentType)]
	if !ok {
		ext = ".bin"
	}
	day := time.Now().UTC().Format("2006/01/02")
	return path.Join(strings.Trim(u.cfg.Prefix, "/"), day, uuid.NewString()+ext)
}
