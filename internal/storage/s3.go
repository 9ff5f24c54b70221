package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appconfig "github.com/xxxsen/s3browse/internal/config"
	"github.com/xxxsen/s3browse/internal/failure"
)

const listDelimiter = "/"

type s3Client struct {
	api       S3API
	presigner Presigner
	bucket    string
}

// NewS3Client builds a storage client backed by AWS S3 (or compatible) based on config.
// Requests are sent once; the SDK retryer is limited to a single attempt.
func NewS3Client(ctx context.Context, cfg appconfig.S3Config) (Client, error) {
	if cfg.Region == "" {
		cfg.Region = appconfig.DefaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithRetryMaxAttempts(1),
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := normalizeEndpoint(cfg.Host)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &s3Client{api: client, presigner: s3.NewPresignClient(client), bucket: cfg.Bucket}, nil
}

// NewWithAPI wraps an existing S3 API. presigner may be nil, in which case
// DownloadLink fails.
func NewWithAPI(api S3API, presigner Presigner, bucket string) Client {
	return &s3Client{api: api, presigner: presigner, bucket: bucket}
}

func (c *s3Client) bucketOr(bucket string) string {
	if bucket != "" {
		return bucket
	}
	return c.bucket
}

func withCredentials(p aws.CredentialsProvider) func(*s3.Options) {
	return func(o *s3.Options) {
		if p != nil {
			o.Credentials = p
		}
	}
}

// Fetch issues one GET and hands back the unread body.
func (c *s3Client) Fetch(ctx context.Context, req DownloadRequest) (*Object, error) {
	bucket := c.bucketOr(req.Bucket)
	res, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(req.Key),
	}, withCredentials(req.Credentials))
	if err != nil {
		ferr := classify("get object", bucket, req.Key, err)
		logutil.GetLogger(ctx).Error("fetch object failed",
			zap.String("bucket", bucket),
			zap.String("key", req.Key),
			zap.String("code", ferr.Code),
			zap.Int("status", ferr.Status),
			zap.Error(err),
		)
		return nil, ferr
	}
	if res.Body == nil {
		return nil, failure.Transport("get object", bucket, req.Key, errors.New("empty response body"))
	}

	return &Object{
		Body:        res.Body,
		ContentType: aws.ToString(res.ContentType),
		Size:        aws.ToInt64(res.ContentLength),
	}, nil
}

func (c *s3Client) Upload(ctx context.Context, req UploadRequest) error {
	bucket := c.bucketOr(req.Bucket)
	contentType := req.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(req.Key)))
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(req.Key),
		Body:   req.Body,
	}
	if req.Size >= 0 {
		input.ContentLength = aws.Int64(req.Size)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := c.api.PutObject(ctx, input, withCredentials(req.Credentials)); err != nil {
		ferr := classify("put object", bucket, req.Key, err)
		logutil.GetLogger(ctx).Error("put object failed",
			zap.String("bucket", bucket),
			zap.String("key", req.Key),
			zap.Error(err),
		)
		return ferr
	}
	return nil
}

func (c *s3Client) List(ctx context.Context, req ListRequest) (*Listing, error) {
	bucket := c.bucketOr(req.Bucket)
	out := &Listing{Prefix: req.Prefix}

	pager := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(req.Prefix),
		Delimiter: aws.String(listDelimiter),
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx, withCredentials(req.Credentials))
		if err != nil {
			return nil, classify("list objects", bucket, req.Prefix, err)
		}
		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.ToString(obj.Key), req.Prefix)
			if rel == "" {
				continue
			}
			out.Files = append(out.Files, ObjectInfo{
				Key:          rel,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		for _, cp := range page.CommonPrefixes {
			rel := strings.TrimPrefix(aws.ToString(cp.Prefix), req.Prefix)
			if rel == "" {
				continue
			}
			out.Folders = append(out.Folders, rel)
		}
	}

	sort.Strings(out.Folders)
	sort.Slice(out.Files, func(i, j int) bool { return out.Files[i].Key < out.Files[j].Key })

	logutil.GetLogger(ctx).Debug("list objects done",
		zap.String("bucket", bucket),
		zap.String("prefix", req.Prefix),
		zap.Int("files", len(out.Files)),
		zap.Int("folders", len(out.Folders)),
	)
	return out, nil
}

func (c *s3Client) DownloadLink(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	if c.presigner == nil {
		return "", errors.New("presign not supported by this client")
	}
	bucket = c.bucketOr(bucket)
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, key, err)
	}
	return req.URL, nil
}

// classify maps SDK errors into the transport kind, keeping the service error
// code and HTTP status when they are available.
func classify(op, bucket, key string, err error) *failure.Error {
	ferr := failure.Transport(op, bucket, key, err)
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		ferr.Code = apiErr.ErrorCode()
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		ferr.Status = respErr.HTTPStatusCode()
	}
	return ferr
}

func normalizeEndpoint(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}

	if strings.Contains(host, "://") {
		return host
	}

	u := url.URL{
		Scheme: "https",
		Host:   host,
	}
	return u.String()
}
