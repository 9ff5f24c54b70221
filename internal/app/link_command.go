package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"
)

const maxLinkExpiry = 7 * 24 * time.Hour

// LinkCommand prints a presigned download URL.
type LinkCommand struct {
	key     string
	expires time.Duration
	env     *Env
	out     io.Writer
}

func NewLinkCommand() *LinkCommand {
	return &LinkCommand{out: os.Stdout}
}

func (c *LinkCommand) Name() string { return "link" }

func (c *LinkCommand) Desc() string {
	return "Print a presigned download link for an object"
}

func (c *LinkCommand) Init(f *pflag.FlagSet) {
	f.StringVar(&c.key, "key", "", "Object key")
	f.DurationVar(&c.expires, "expires", 15*time.Minute, "Link lifetime")
}

func (c *LinkCommand) PreRun(ctx context.Context, env *Env) error {
	if c.key == "" {
		return errors.New("link requires --key")
	}
	if c.expires <= 0 || c.expires > maxLinkExpiry {
		return fmt.Errorf("--expires must be within (0, %s]", maxLinkExpiry)
	}
	c.env = env
	return nil
}

func (c *LinkCommand) Run(ctx context.Context) error {
	link, err := c.env.Store.DownloadLink(ctx, c.env.Bucket(), c.key, c.expires)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, link)
	return err
}

func (c *LinkCommand) PostRun(ctx context.Context) error { return nil }

func init() {
	RegisterRunner("link", func() IRunner { return NewLinkCommand() })
}
