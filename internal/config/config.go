package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

const (
	// DefaultRegion is used when the config leaves s3.region empty.
	DefaultRegion = "us-east-1"

	defaultDownloadDir         = "."
	defaultDownloadConcurrency = 4
)

// Config describes the application level configuration loaded from json.
type Config struct {
	S3       S3Config       `json:"s3"`
	Web      WebConfig      `json:"web"`
	Download DownloadConfig `json:"download"`
}

// S3Config holds the options for accessing the object store.
type S3Config struct {
	Host            string `json:"host"`
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token"`
	ForcePathStyle  bool   `json:"force_path_style"`
	// Root is prepended to every listed path.
	Root string `json:"root"`
	// UploadPrefix is prepended to the base name of uploaded files.
	UploadPrefix string `json:"upload_prefix"`
}

// WebConfig points at the same-origin page that accepts delete requests.
type WebConfig struct {
	Endpoint      string `json:"endpoint"`
	CSRFToken     string `json:"csrf_token"`
	SessionCookie string `json:"session_cookie"`
}

// DownloadConfig tunes the streaming sink.
type DownloadConfig struct {
	Dir         string `json:"dir"`
	Mode        string `json:"mode"`
	ChunkSize   int    `json:"chunk_size"`
	Concurrency int    `json:"concurrency"`
}

// LoadFirst tries to load configuration from the given paths, returning the
// first successfully decoded configuration. If none of the paths contain a
// readable config, an error is returned.
func LoadFirst(paths ...string) (*Config, error) {
	var lastErr error
	for _, path := range paths {
		if path == "" {
			continue
		}
		cfg, err := Load(path)
		if errors.Is(err, os.ErrNotExist) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("config not found in paths: %v", paths)
	}
	return nil, lastErr
}

// Load reads configuration from a single json file path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.S3.Region == "" {
		c.S3.Region = DefaultRegion
	}
	if c.Download.Dir == "" {
		c.Download.Dir = defaultDownloadDir
	}
	if c.Download.Concurrency <= 0 {
		c.Download.Concurrency = defaultDownloadConcurrency
	}
}

// Validate performs basic validation of the configuration.
func (c *Config) Validate() error {
	if c.S3.Bucket == "" {
		return errors.New("config.s3.bucket must be set")
	}
	if (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		return errors.New("config.s3.access_key_id and config.s3.secret_access_key must be set together")
	}
	switch c.Download.Mode {
	case "", "auto", "pipe", "chunked":
	default:
		return fmt.Errorf("config.download.mode %q must be one of auto, pipe, chunked", c.Download.Mode)
	}
	if c.Download.ChunkSize < 0 {
		return errors.New("config.download.chunk_size must not be negative")
	}
	if c.Web.Endpoint != "" {
		u, err := url.Parse(c.Web.Endpoint)
		if err != nil || u.Host == "" || !strings.HasPrefix(u.Scheme, "http") {
			return fmt.Errorf("config.web.endpoint %q must be an absolute http(s) url", c.Web.Endpoint)
		}
	}
	return nil
}
