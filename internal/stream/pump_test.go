package stream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/s3browse/internal/failure"
)

// chunkSource hands out one chunk per Read and records every call.
type chunkSource struct {
	chunks [][]byte
	next   int
	events *[]string
	err    error
}

func (s *chunkSource) Read(p []byte) (int, error) {
	if s.next >= len(s.chunks) {
		*s.events = append(*s.events, "read:eof")
		if s.err != nil {
			return 0, s.err
		}
		return 0, io.EOF
	}
	*s.events = append(*s.events, fmt.Sprintf("read:%d", s.next))
	n := copy(p, s.chunks[s.next])
	s.next++
	return n, nil
}

// recordingDest keeps written bytes and records every call.
type recordingDest struct {
	buf    bytes.Buffer
	writes int
	events *[]string
	failAt int
	short  bool
}

func (d *recordingDest) Write(p []byte) (int, error) {
	*d.events = append(*d.events, fmt.Sprintf("write:%d", d.writes))
	idx := d.writes
	d.writes++
	if d.failAt > 0 && idx+1 == d.failAt {
		return 0, errors.New("disk full")
	}
	if d.short {
		return d.buf.Write(p[:len(p)-1])
	}
	return d.buf.Write(p)
}

func sampleChunks() [][]byte {
	return [][]byte{[]byte("alpha-"), []byte("beta-"), []byte("gamma-"), []byte("delta")}
}

func TestPumpChunkedConcatenatesInOrder(t *testing.T) {
	t.Parallel()

	var events []string
	src := &chunkSource{chunks: sampleChunks(), events: &events}
	dst := &recordingDest{events: &events}

	res, err := Pump(dst, src)
	require.NoError(t, err)
	assert.Equal(t, PathChunked, res.Path)
	assert.Equal(t, int64(len("alpha-beta-gamma-delta")), res.Written)
	assert.Equal(t, "alpha-beta-gamma-delta", dst.buf.String())
}

func TestPumpChunkedWritesBeforeNextRead(t *testing.T) {
	t.Parallel()

	var events []string
	src := &chunkSource{chunks: sampleChunks(), events: &events}
	dst := &recordingDest{events: &events}

	_, err := Pump(dst, src, WithMode(ModeChunked), WithChunkSize(64))
	require.NoError(t, err)

	want := []string{
		"read:0", "write:0",
		"read:1", "write:1",
		"read:2", "write:2",
		"read:3", "write:3",
		"read:eof",
	}
	assert.Equal(t, want, events)
}

func TestPumpPipePathForWriterTo(t *testing.T) {
	t.Parallel()

	var events []string
	payload := bytes.Repeat([]byte("0123456789"), 10000)
	dst := &recordingDest{events: &events}

	res, err := Pump(dst, bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, PathPipe, res.Path)
	assert.Equal(t, int64(len(payload)), res.Written)
	assert.Equal(t, payload, dst.buf.Bytes())
}

func TestPumpForcedPipeWithPlainSource(t *testing.T) {
	t.Parallel()

	var events []string
	src := &chunkSource{chunks: sampleChunks(), events: &events}
	dst := &recordingDest{events: &events}

	res, err := Pump(dst, src, WithMode(ModePipe))
	require.NoError(t, err)
	assert.Equal(t, PathPipe, res.Path)
	assert.Equal(t, "alpha-beta-gamma-delta", dst.buf.String())
}

func TestPumpForcedChunkedWithWriterTo(t *testing.T) {
	t.Parallel()

	var events []string
	dst := &recordingDest{events: &events}

	res, err := Pump(dst, bytes.NewReader([]byte("abcdefghij")), WithMode(ModeChunked), WithChunkSize(3))
	require.NoError(t, err)
	assert.Equal(t, PathChunked, res.Path)
	assert.Equal(t, "abcdefghij", dst.buf.String())
	assert.Equal(t, 4, dst.writes)
}

func TestPumpWriteFailureKeepsPartialOutput(t *testing.T) {
	t.Parallel()

	for _, mode := range []Mode{ModeChunked, ModePipe} {
		var events []string
		src := &chunkSource{chunks: sampleChunks(), events: &events}
		dst := &recordingDest{events: &events, failAt: 3}

		res, err := Pump(dst, src, WithMode(mode))
		require.Error(t, err, "mode %s", mode)
		assert.Equal(t, failure.KindStream, failure.KindOf(err), "mode %s", mode)
		assert.Equal(t, "alpha-beta-", dst.buf.String(), "mode %s", mode)
		assert.Equal(t, int64(11), res.Written, "mode %s", mode)
	}
}

func TestPumpReadFailure(t *testing.T) {
	t.Parallel()

	readErr := errors.New("connection reset")
	for _, mode := range []Mode{ModeChunked, ModePipe} {
		var events []string
		src := &chunkSource{chunks: sampleChunks()[:1], events: &events, err: readErr}
		dst := &recordingDest{events: &events}

		_, err := Pump(dst, src, WithMode(mode))
		require.Error(t, err)
		assert.True(t, failure.Is(err, failure.KindStream))
		assert.ErrorIs(t, err, readErr)
		assert.Equal(t, "alpha-", dst.buf.String())
	}
}

func TestPumpShortWrite(t *testing.T) {
	t.Parallel()

	var events []string
	src := &chunkSource{chunks: sampleChunks(), events: &events}
	dst := &recordingDest{events: &events, short: true}

	_, err := Pump(dst, src, WithMode(ModeChunked))
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, []string{"read:0", "write:0"}, events)
}

func TestPumpEmptySource(t *testing.T) {
	t.Parallel()

	var events []string
	src := &chunkSource{events: &events}
	dst := &recordingDest{events: &events}

	res, err := Pump(dst, src)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Written)
	assert.Equal(t, []string{"read:eof"}, events)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	m, err = ParseMode("chunked")
	require.NoError(t, err)
	assert.Equal(t, ModeChunked, m)

	_, err = ParseMode("zerocopy")
	assert.Error(t, err)
}
