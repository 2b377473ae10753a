package helpers

import (
	"context"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates the Cloud Storage client used for todo exports.
// An empty bucket switches exports off and returns (nil, nil). Without a
// credentials file Application Default Credentials are used.
func NewGCSClient(ctx context.Context, bucket, credsPath string) (*storage.Client, error) {
	if bucket == "" {
		return nil, nil
	}
	var opts []option.ClientOption
	if credsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credsPath))
	}
	return storage.NewClient(ctx, opts...)
}

// ObjectURL is the storage.googleapis.com URL of bucket/objectPath with each
// path segment escaped.
func ObjectURL(bucket, objectPath string) string {
	segs := strings.Split(objectPath, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return "https://storage.googleapis.com/" + url.PathEscape(bucket) + "/" + strings.Join(segs, "/")
}
