package storage

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Client abstracts the subset of S3 operations the tool needs.
type Client interface {
	Fetch(ctx context.Context, req DownloadRequest) (*Object, error)
	Upload(ctx context.Context, req UploadRequest) error
	List(ctx context.Context, req ListRequest) (*Listing, error)
	DownloadLink(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}

// DownloadRequest addresses one object. Credentials may be nil, in which
// case the client's default chain is used.
type DownloadRequest struct {
	Bucket      string
	Key         string
	Credentials aws.CredentialsProvider
}

// Object is a fetched object whose body has not been read yet. Body must be
// consumed once and closed by the caller.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// UploadRequest puts Body under Key in one request.
type UploadRequest struct {
	Bucket      string
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Credentials aws.CredentialsProvider
}

// ListRequest lists one folder level below Prefix.
type ListRequest struct {
	Bucket      string
	Prefix      string
	Credentials aws.CredentialsProvider
}

// ObjectInfo describes a listed file. Key is relative to the listed prefix.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Listing is the content of one folder level.
type Listing struct {
	Prefix  string
	Files   []ObjectInfo
	Folders []string
}
