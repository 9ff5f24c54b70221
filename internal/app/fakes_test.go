package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xxxsen/s3browse/internal/config"
	"github.com/xxxsen/s3browse/internal/failure"
	"github.com/xxxsen/s3browse/internal/storage"
)

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	gate    chan struct{}
	listing *storage.Listing

	fetchCalls int32
}

func newFakeStore(objects map[string]string) *fakeStore {
	s := &fakeStore{objects: map[string][]byte{}}
	for k, v := range objects {
		s.objects[k] = []byte(v)
	}
	return s
}

func (s *fakeStore) Fetch(ctx context.Context, req storage.DownloadRequest) (*storage.Object, error) {
	atomic.AddInt32(&s.fetchCalls, 1)
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	data, ok := s.objects[req.Key]
	s.mu.Unlock()
	if !ok {
		fe := failure.Transport("get object", req.Bucket, req.Key, errors.New("not found"))
		fe.Code = "NoSuchKey"
		return nil, fe
	}
	return &storage.Object{Body: io.NopCloser(bytes.NewReader(data)), Size: int64(len(data))}, nil
}

func (s *fakeStore) Upload(ctx context.Context, req storage.UploadRequest) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.objects[req.Key] = data
	s.mu.Unlock()
	return nil
}

func (s *fakeStore) List(ctx context.Context, req storage.ListRequest) (*storage.Listing, error) {
	if s.listing == nil {
		return &storage.Listing{Prefix: req.Prefix}, nil
	}
	return s.listing, nil
}

func (s *fakeStore) DownloadLink(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://%s.example/%s?ttl=%d", bucket, key, int(expires.Seconds())), nil
}

type recordingPresenter struct {
	mu        sync.Mutex
	events    []string
	reloadErr error
}

func (p *recordingPresenter) Notify(ctx context.Context, msg string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, "notify:"+msg)
}

func (p *recordingPresenter) Reload(ctx context.Context, prefix string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, "reload:"+prefix)
	return p.reloadErr
}

func (p *recordingPresenter) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func testEnv(store storage.Client, p Presenter) *Env {
	return &Env{
		Config: &config.Config{
			S3:       config.S3Config{Bucket: "team", Region: config.DefaultRegion},
			Download: config.DownloadConfig{Dir: ".", Concurrency: 2},
		},
		Store:     store,
		Presenter: p,
	}
}
