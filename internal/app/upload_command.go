package app

import (
	"context"
	"errors"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// UploadCommand uploads local files under the configured prefix.
type UploadCommand struct {
	files    []string
	prefix   string
	uploader *Uploader
}

// NewUploadCommand constructs an executable upload command.
func NewUploadCommand() *UploadCommand {
	return &UploadCommand{}
}

func (c *UploadCommand) Name() string { return "upload" }

func (c *UploadCommand) Desc() string {
	return "Upload local files to the bucket in one request each"
}

func (c *UploadCommand) Init(f *pflag.FlagSet) {
	f.StringSliceVar(&c.files, "file", nil, "Local file to upload (repeatable)")
	f.StringVar(&c.prefix, "prefix", "", "Key prefix, overrides config.s3.upload_prefix")
}

func (c *UploadCommand) PreRun(ctx context.Context, env *Env) error {
	if len(c.files) == 0 {
		return errors.New("upload requires at least one --file")
	}
	if c.prefix == "" {
		c.prefix = env.Config.S3.UploadPrefix
	}
	c.uploader = NewUploader(env, c.prefix)
	logutil.GetLogger(ctx).Info("upload begin",
		zap.Strings("files", c.files),
		zap.String("prefix", c.prefix),
	)
	return nil
}

// Run uploads files in order and stops at the first failure.
func (c *UploadCommand) Run(ctx context.Context) error {
	for _, file := range c.files {
		if _, err := c.uploader.Upload(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func (c *UploadCommand) PostRun(ctx context.Context) error {
	logutil.GetLogger(ctx).Info("upload finished", zap.Int("files", len(c.files)))
	return nil
}

func init() {
	RegisterRunner("upload", func() IRunner { return NewUploadCommand() })
}
