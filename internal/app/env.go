package app

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/xxxsen/s3browse/internal/config"
	"github.com/xxxsen/s3browse/internal/storage"
	"github.com/xxxsen/s3browse/internal/web"
)

// Deleter removes an object through the page that fronts the bucket.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Env carries the collaborators of one command invocation. Everything a
// command touches is reached through it.
type Env struct {
	Config      *config.Config
	Credentials aws.CredentialsProvider
	Store       storage.Client
	// Web is nil when no endpoint is configured.
	Web       Deleter
	Presenter Presenter
}

// NewEnv wires the production collaborators from cfg. Notifications and
// listings are written to out.
func NewEnv(ctx context.Context, cfg *config.Config, out io.Writer) (*Env, error) {
	store, err := storage.NewS3Client(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}

	env := &Env{
		Config: cfg,
		Store:  store,
	}
	if cfg.S3.AccessKeyID != "" && cfg.S3.SecretAccessKey != "" {
		env.Credentials = credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.SessionToken)
	}
	if cfg.Web.Endpoint != "" {
		wc, err := web.New(cfg.Web.Endpoint, cfg.Web.SessionCookie, cfg.Web.CSRFToken, nil)
		if err != nil {
			return nil, fmt.Errorf("init web client: %w", err)
		}
		env.Web = wc
	}
	env.Presenter = NewConsolePresenter(out, func(ctx context.Context, prefix string) error {
		return PrintFolder(ctx, env, prefix, out)
	})
	return env, nil
}

// Bucket returns the configured bucket.
func (e *Env) Bucket() string {
	return e.Config.S3.Bucket
}
