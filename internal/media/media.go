// Package media turns stored product image references into URLs a client
// can load. Images that already live at an http(s) URL are passed through;
// anything else is treated as an object key in the media bucket and signed.
package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const DefaultExpiry = time.Hour

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Expiry    time.Duration
}

// Resolver signs object keys with a short-lived GET URL.
type Resolver struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("media: endpoint and bucket are required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		// Presigning skips the bucket location lookup when Region is set.
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("media client: %w", err)
	}
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Resolver{client: client, bucket: cfg.Bucket, expiry: expiry}, nil
}

// ResolveImage returns ref unchanged when it is already an absolute http(s)
// URL and a presigned URL for the object key otherwise.
func (r *Resolver) ResolveImage(ctx context.Context, ref string) (string, error) {
	if IsRemote(ref) {
		return ref, nil
	}
	key := ObjectKey(r.bucket, ref)
	if key == "" {
		return "", fmt.Errorf("media: empty object key in %q", ref)
	}
	u, err := r.client.PresignedGetObject(ctx, r.bucket, key, r.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func IsRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ObjectKey strips an optional s3://bucket/ or leading slash from ref.
func ObjectKey(bucket, ref string) string {
	ref = strings.TrimPrefix(ref, "s3://")
	ref = strings.TrimLeft(ref, "/")
	ref = strings.TrimPrefix(ref, bucket+"/")
	return ref
}
