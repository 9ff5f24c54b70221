package stream

import (
	"errors"
	"fmt"
	"io"
)

const defaultChunkSize = 32 * 1024

// Mode selects how Pump moves bytes.
type Mode string

const (
	// ModeAuto pipes when either side supports it and falls back to chunks.
	ModeAuto Mode = "auto"
	// ModePipe always delegates to io.Copy.
	ModePipe Mode = "pipe"
	// ModeChunked always uses the explicit read-then-write loop.
	ModeChunked Mode = "chunked"
)

// ParseMode validates a configured mode. Empty selects ModeAuto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModePipe, ModeChunked:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown stream mode %q", s)
}

// Path is the route a finished pump took.
type Path int

const (
	PathPipe Path = iota + 1
	PathChunked
)

func (p Path) String() string {
	switch p {
	case PathPipe:
		return "pipe"
	case PathChunked:
		return "chunked"
	}
	return "none"
}

// Result describes a finished pump.
type Result struct {
	Path    Path
	Written int64
}

type options struct {
	mode      Mode
	chunkSize int
}

// Option configures Pump.
type Option func(*options)

// WithMode forces a pump path.
func WithMode(m Mode) Option {
	return func(o *options) {
		if m != "" {
			o.mode = m
		}
	}
}

// WithChunkSize sets the buffer size of the chunked path.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// Pump copies src into dst until src is exhausted. The path is chosen once
// before the first byte moves. Partial output is left in dst on failure.
func Pump(dst io.Writer, src io.Reader, opts ...Option) (*Result, error) {
	o := &options{mode: ModeAuto, chunkSize: defaultChunkSize}
	for _, opt := range opts {
		opt(o)
	}

	if selectPath(o.mode, dst, src) == PathPipe {
		n, err := io.Copy(dst, src)
		res := &Result{Path: PathPipe, Written: n}
		if err != nil {
			return res, wrapStreamErr("pipe", err)
		}
		return res, nil
	}

	n, err := pumpChunks(dst, src, make([]byte, o.chunkSize))
	return &Result{Path: PathChunked, Written: n}, err
}

func selectPath(mode Mode, dst io.Writer, src io.Reader) Path {
	switch mode {
	case ModePipe:
		return PathPipe
	case ModeChunked:
		return PathChunked
	}
	if _, ok := src.(io.WriterTo); ok {
		return PathPipe
	}
	if _, ok := dst.(io.ReaderFrom); ok {
		return PathPipe
	}
	return PathChunked
}

// pumpChunks never issues the next read before the current chunk is fully
// written.
func pumpChunks(dst io.Writer, src io.Reader, buf []byte) (int64, error) {
	var written int64
	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			if nw > 0 {
				written += int64(nw)
			}
			if werr != nil {
				return written, wrapStreamErr("write", werr)
			}
			if nw != nr {
				return written, wrapStreamErr("write", io.ErrShortWrite)
			}
		}
		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, wrapStreamErr("read", rerr)
		}
	}
}
