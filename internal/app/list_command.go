package app

import (
	"context"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// ListCommand prints one folder level of the bucket.
type ListCommand struct {
	path string
	env  *Env
	out  io.Writer
}

func NewListCommand() *ListCommand {
	return &ListCommand{out: os.Stdout}
}

func (c *ListCommand) Name() string { return "list" }

func (c *ListCommand) Desc() string {
	return "List files and folders below a path of the bucket root"
}

func (c *ListCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.path, "path", "", "Folder path relative to config.s3.root")
}

func (c *ListCommand) PreRun(ctx context.Context, env *Env) error {
	c.env = env
	return nil
}

func (c *ListCommand) Run(ctx context.Context) error {
	return PrintFolder(ctx, c.env, BucketPath(c.env.Config.S3.Root, c.path), c.out)
}

func (c *ListCommand) PostRun(ctx context.Context) error { return nil }

func init() {
	RegisterRunner("list", func() IRunner { return NewListCommand() })
}
