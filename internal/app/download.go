package app

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/dustin/go-humanize"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/s3browse/internal/failure"
	"github.com/xxxsen/s3browse/internal/flight"
	"github.com/xxxsen/s3browse/internal/storage"
	"github.com/xxxsen/s3browse/internal/stream"
)

const (
	msgDownloadDenied  = "Permission error downloading file."
	msgDownloadNoName  = "Object key has no file name."
	msgDownloadFailure = "Error saving downloaded file."
)

// Downloader streams objects into a sink. Concurrent requests for the same
// object share one fetch.
type Downloader struct {
	store     storage.Client
	sink      *stream.Sink
	group     *flight.Group
	creds     aws.CredentialsProvider
	presenter Presenter
}

// NewDownloader builds a downloader. group may be shared between downloaders
// writing into different sinks.
func NewDownloader(env *Env, sink *stream.Sink, group *flight.Group) *Downloader {
	if group == nil {
		group = flight.New()
	}
	return &Downloader{
		store:     env.Store,
		sink:      sink,
		group:     group,
		creds:     env.Credentials,
		presenter: env.Presenter,
	}
}

// Download saves bucket/key into the sink and returns the local path. Every
// failure is reported through the presenter before it is returned.
func (d *Downloader) Download(ctx context.Context, bucket, key string) (string, error) {
	name := stream.DestinationName(key)
	if name == "" {
		err := failure.Invalid("download", key, failure.ErrEmptyFileName)
		d.presenter.Notify(ctx, msgDownloadNoName, err)
		return "", err
	}

	dest := d.sink.Path(name)
	path, shared, err := d.group.Do(bucket, key, func() (string, error) {
		return d.fetchAndSave(ctx, bucket, key, name)
	})
	if err == nil && shared && path != dest {
		err = d.copyLocal(ctx, path, name)
		path = dest
	}
	if err != nil {
		msg := msgDownloadFailure
		if failure.Is(err, failure.KindTransport) {
			msg = msgDownloadDenied
		}
		d.presenter.Notify(ctx, msg, err)
		return "", err
	}
	return path, nil
}

func (d *Downloader) fetchAndSave(ctx context.Context, bucket, key, name string) (string, error) {
	obj, err := d.store.Fetch(ctx, storage.DownloadRequest{
		Bucket:      bucket,
		Key:         key,
		Credentials: d.creds,
	})
	if err != nil {
		return "", err
	}
	defer obj.Body.Close()

	res, err := d.sink.Save(ctx, name, obj.Body)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", key, err)
	}

	logutil.GetLogger(ctx).Info("object downloaded",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.String("content_type", obj.ContentType),
		zap.String("path", res.Path.String()),
		zap.String("size", humanize.Bytes(uint64(res.Written))),
	)
	return d.sink.Path(name), nil
}

// copyLocal streams a file written by another downloader into this sink.
func (d *Downloader) copyLocal(ctx context.Context, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return failure.Stream("open shared download", err)
	}
	defer f.Close()

	if _, err := d.sink.Save(ctx, name, f); err != nil {
		return fmt.Errorf("copy shared download %s: %w", src, err)
	}
	return nil
}
