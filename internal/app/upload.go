package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/dustin/go-humanize"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/s3browse/internal/storage"
)

const (
	msgUploadOK     = "Upload successful."
	msgUploadFailed = "Upload failed."
)

// Uploader puts local files into the bucket in a single request each.
type Uploader struct {
	store     storage.Client
	creds     aws.CredentialsProvider
	presenter Presenter
	bucket    string
	prefix    string
}

// NewUploader creates an uploader storing files under prefix.
func NewUploader(env *Env, prefix string) *Uploader {
	return &Uploader{
		store:     env.Store,
		creds:     env.Credentials,
		presenter: env.Presenter,
		bucket:    env.Bucket(),
		prefix:    prefix,
	}
}

// Key returns the object key a local file is uploaded to.
func (u *Uploader) Key(path string) string {
	return u.prefix + filepath.Base(path)
}

// Upload sends the file at path. On success the user is notified and the
// prefix is reloaded; on failure only the notification happens.
func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	key := u.Key(path)
	if err := u.put(ctx, path, key); err != nil {
		u.presenter.Notify(ctx, msgUploadFailed, err)
		return "", err
	}

	u.presenter.Notify(ctx, msgUploadOK, nil)
	if err := u.presenter.Reload(ctx, u.prefix); err != nil {
		return key, fmt.Errorf("reload %s: %w", u.prefix, err)
	}
	return key, nil
}

func (u *Uploader) put(ctx context.Context, path, key string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file for upload %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat file for upload %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("upload %s: is a directory", path)
	}

	if err := u.store.Upload(ctx, storage.UploadRequest{
		Bucket:      u.bucket,
		Key:         key,
		Body:        file,
		Size:        info.Size(),
		Credentials: u.creds,
	}); err != nil {
		return err
	}

	logutil.GetLogger(ctx).Info("file uploaded",
		zap.String("file", path),
		zap.String("key", key),
		zap.String("size", humanize.Bytes(uint64(info.Size()))),
	)
	return nil
}
