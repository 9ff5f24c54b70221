package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/s3browse/internal/failure"
	"github.com/xxxsen/s3browse/internal/flight"
	"github.com/xxxsen/s3browse/internal/stream"
)

func TestDownloadWritesFile(t *testing.T) {
	t.Parallel()

	store := newFakeStore(map[string]string{"docs/2026/report.txt": "quarterly numbers"})
	p := &recordingPresenter{}
	dir := t.TempDir()
	d := NewDownloader(testEnv(store, p), stream.NewSink(dir, stream.ModeChunked, 4), nil)

	path, err := d.Download(context.Background(), "team", "docs/2026/report.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "quarterly numbers", string(data))
	assert.Empty(t, p.Events())
}

func TestDownloadDeniedNotifies(t *testing.T) {
	t.Parallel()

	p := &recordingPresenter{}
	dir := t.TempDir()
	d := NewDownloader(testEnv(newFakeStore(nil), p), stream.NewSink(dir, stream.ModeAuto, 0), nil)

	_, err := d.Download(context.Background(), "team", "private/payroll.xlsx")
	require.Error(t, err)
	assert.Equal(t, failure.KindTransport, failure.KindOf(err))
	assert.Equal(t, []string{"notify:" + msgDownloadDenied}, p.Events())

	_, statErr := os.Stat(filepath.Join(dir, "payroll.xlsx"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadEmptyNameFailsFast(t *testing.T) {
	t.Parallel()

	store := newFakeStore(map[string]string{"a/b/": ""})
	p := &recordingPresenter{}
	d := NewDownloader(testEnv(store, p), stream.NewSink(t.TempDir(), stream.ModeAuto, 0), nil)

	_, err := d.Download(context.Background(), "team", "a/b/")
	require.Error(t, err)
	assert.Equal(t, failure.KindInvalid, failure.KindOf(err))
	assert.Equal(t, int32(0), store.fetchCalls)
	assert.Equal(t, []string{"notify:" + msgDownloadNoName}, p.Events())
}

func TestDownloadSharesConcurrentFetch(t *testing.T) {
	t.Parallel()

	store := newFakeStore(map[string]string{"shared/big.iso": "one upstream fetch"})
	store.gate = make(chan struct{})
	p := &recordingPresenter{}
	env := testEnv(store, p)
	group := flight.New()

	dirA, dirB := t.TempDir(), t.TempDir()
	downloaders := []*Downloader{
		NewDownloader(env, stream.NewSink(dirA, stream.ModeAuto, 0), group),
		NewDownloader(env, stream.NewSink(dirB, stream.ModeChunked, 3), group),
	}

	var wg sync.WaitGroup
	paths := make([]string, len(downloaders))
	for i, d := range downloaders {
		wg.Add(1)
		go func(i int, d *Downloader) {
			defer wg.Done()
			path, err := d.Download(context.Background(), "team", "shared/big.iso")
			assert.NoError(t, err)
			paths[i] = path
		}(i, d)
	}

	require.Eventually(t, func() bool { return group.Waiters("team", "shared/big.iso") == 2 }, time.Second, time.Millisecond)
	close(store.gate)
	wg.Wait()

	assert.Equal(t, int32(1), store.fetchCalls)
	assert.Equal(t, filepath.Join(dirA, "big.iso"), paths[0])
	assert.Equal(t, filepath.Join(dirB, "big.iso"), paths[1])
	for _, path := range paths {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "one upstream fetch", string(data))
	}
	assert.Empty(t, p.Events())
}

func TestDownloadCommandCollectsFailures(t *testing.T) {
	t.Parallel()

	store := newFakeStore(map[string]string{"a/ok.txt": "fine", "b/also.txt": "fine too"})
	p := &recordingPresenter{}
	env := testEnv(store, p)
	dir := t.TempDir()

	cmd := NewDownloadCommand()
	cmd.keys = []string{"a/ok.txt", "missing/gone.txt", "b/also.txt"}
	cmd.dir = dir
	require.NoError(t, cmd.PreRun(context.Background(), env))

	err := cmd.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 downloads failed")

	for name, want := range map[string]string{"ok.txt": "fine", "also.txt": "fine too"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
	assert.Equal(t, []string{"notify:" + msgDownloadDenied}, p.Events())
}

func TestDownloadCommandPreRunValidates(t *testing.T) {
	t.Parallel()

	env := testEnv(newFakeStore(nil), &recordingPresenter{})

	cmd := NewDownloadCommand()
	assert.Error(t, cmd.PreRun(context.Background(), env))

	cmd = NewDownloadCommand()
	cmd.keys = []string{"x.txt"}
	cmd.mode = "mmap"
	assert.Error(t, cmd.PreRun(context.Background(), env))

	cmd = NewDownloadCommand()
	cmd.keys = []string{"a/x.txt", "b/x.txt"}
	assert.Error(t, cmd.PreRun(context.Background(), env))
}

func TestCheckNameCollisions(t *testing.T) {
	t.Parallel()

	assert.NoError(t, checkNameCollisions([]string{"a/x.txt", "a/x.txt", "b/y.txt", "c/"}))
	assert.Error(t, checkNameCollisions([]string{"a/x.txt", "b/x.txt"}))
}
