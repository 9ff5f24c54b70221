package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xxxsen/s3browse/internal/stream"
)

// DownloadCommand streams one or more objects into a local directory.
type DownloadCommand struct {
	keys      []string
	dir       string
	mode      string
	chunkSize int

	env         *Env
	downloader  *Downloader
	concurrency int
}

// NewDownloadCommand builds the download command.
func NewDownloadCommand() *DownloadCommand {
	return &DownloadCommand{}
}

func (c *DownloadCommand) Name() string { return "download" }

func (c *DownloadCommand) Desc() string {
	return "Stream objects from the bucket into local files"
}

func (c *DownloadCommand) Init(f *pflag.FlagSet) {
	f.StringSliceVar(&c.keys, "key", nil, "Object key to download (repeatable)")
	f.StringVar(&c.dir, "dir", "", "Destination directory, overrides config.download.dir")
	f.StringVar(&c.mode, "mode", "", "Stream mode: auto, pipe or chunked")
	f.IntVar(&c.chunkSize, "chunk-size", 0, "Chunk size in bytes for the chunked mode")
}

func (c *DownloadCommand) PreRun(ctx context.Context, env *Env) error {
	if len(c.keys) == 0 {
		return errors.New("download requires at least one --key")
	}
	if err := checkNameCollisions(c.keys); err != nil {
		return err
	}

	dl := env.Config.Download
	if c.dir == "" {
		c.dir = dl.Dir
	}
	if c.mode == "" {
		c.mode = dl.Mode
	}
	if c.chunkSize <= 0 {
		c.chunkSize = dl.ChunkSize
	}
	mode, err := stream.ParseMode(c.mode)
	if err != nil {
		return err
	}

	c.env = env
	c.concurrency = dl.Concurrency
	c.downloader = NewDownloader(env, stream.NewSink(c.dir, mode, c.chunkSize), nil)

	logutil.GetLogger(ctx).Info("download begin",
		zap.Strings("keys", c.keys),
		zap.String("dir", c.dir),
		zap.String("mode", string(mode)),
	)
	return nil
}

// Run downloads every key. A failed key does not stop the others.
func (c *DownloadCommand) Run(ctx context.Context) error {
	var (
		mu   sync.Mutex
		errs error
	)

	g := new(errgroup.Group)
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}
	for _, key := range c.keys {
		key := key
		g.Go(func() error {
			_, err := c.downloader.Download(ctx, c.env.Bucket(), key)
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if errs != nil {
		return fmt.Errorf("%d of %d downloads failed: %w", len(multierr.Errors(errs)), len(c.keys), errs)
	}
	return nil
}

func (c *DownloadCommand) PostRun(ctx context.Context) error {
	logutil.GetLogger(ctx).Info("download finished", zap.Int("keys", len(c.keys)))
	return nil
}

// checkNameCollisions rejects distinct keys that would land on the same
// local file. Repeating the same key is allowed.
func checkNameCollisions(keys []string) error {
	seen := make(map[string]string, len(keys))
	for _, key := range keys {
		name := stream.DestinationName(key)
		if name == "" {
			continue
		}
		if prev, ok := seen[name]; ok && prev != key {
			return fmt.Errorf("keys %s and %s both download to %s", prev, key, name)
		}
		seen[name] = key
	}
	return nil
}

func init() {
	RegisterRunner("download", func() IRunner { return NewDownloadCommand() })
}
