package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/s3browse/internal/failure"
)

// Sink writes incoming streams to files in a directory.
type Sink struct {
	Dir       string
	Mode      Mode
	ChunkSize int
}

// NewSink creates a sink rooted at dir.
func NewSink(dir string, mode Mode, chunkSize int) *Sink {
	return &Sink{Dir: dir, Mode: mode, ChunkSize: chunkSize}
}

// Path returns the destination path for name.
func (s *Sink) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// Save creates the destination file called name and pumps src into it.
// A file left behind by a failed pump is not removed.
func (s *Sink) Save(ctx context.Context, name string, src io.Reader) (*Result, error) {
	if name == "" || name == "." || name == ".." {
		return nil, failure.Invalid("save", name, failure.ErrEmptyFileName)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, failure.Stream("create dest dir", fmt.Errorf("%s: %w", s.Dir, err))
	}

	dest := s.Path(name)
	out, err := os.Create(dest)
	if err != nil {
		return nil, failure.Stream("create dest", fmt.Errorf("%s: %w", dest, err))
	}

	res, err := Pump(out, src, WithMode(s.Mode), WithChunkSize(s.ChunkSize))
	if cerr := out.Close(); cerr != nil && err == nil {
		err = failure.Stream("close dest", fmt.Errorf("%s: %w", dest, cerr))
	}
	if err != nil {
		logutil.GetLogger(ctx).Error("stream to file failed",
			zap.String("dest", dest),
			zap.Error(err),
		)
		return res, err
	}

	logutil.GetLogger(ctx).Debug("stream to file done",
		zap.String("dest", dest),
		zap.String("path", res.Path.String()),
		zap.String("size", humanize.Bytes(uint64(res.Written))),
	)
	return res, nil
}

func wrapStreamErr(op string, err error) error {
	var fe *failure.Error
	if errors.As(err, &fe) {
		return err
	}
	return failure.Stream(op, err)
}
