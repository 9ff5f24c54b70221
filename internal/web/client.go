// Package web talks to the same-origin page that fronts the bucket.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/s3browse/internal/failure"
)

const (
	csrfHeader = "X-CSRFToken"
	userAgent  = "s3browse"
)

// Client issues requests against the page URL.
type Client struct {
	pageURL    string
	httpClient *http.Client

	sessionCookie string
	csrfToken     string
}

// New creates a client for the page at pageURL. The CSRF token is sent with
// every mutating request.
func New(pageURL, sessionCookie, csrfToken string, httpClient *http.Client) (*Client, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, fmt.Errorf("web endpoint must be provided")
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid web endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("web endpoint %q must be absolute", pageURL)
	}
	csrfToken = strings.TrimSpace(csrfToken)
	if csrfToken == "" {
		return nil, fmt.Errorf("csrf token must be provided")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	u.RawQuery = ""
	u.Fragment = ""

	return &Client{
		pageURL:       strings.TrimSuffix(u.String(), "/"),
		httpClient:    httpClient,
		sessionCookie: strings.TrimSpace(sessionCookie),
		csrfToken:     csrfToken,
	}, nil
}

// objectURL appends key to the page path. Each key segment is escaped.
func (c *Client) objectURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return c.pageURL + "/" + strings.Join(parts, "/")
}

func (c *Client) applyCommonHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", userAgent)
	if c.sessionCookie != "" {
		req.Header.Set("Cookie", c.sessionCookie)
	}
}

// Delete asks the page to remove key. Any 2xx reply is success.
func (c *Client) Delete(ctx context.Context, key string) error {
	endpoint := c.objectURL(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return failure.Invalid("delete", key, err)
	}
	c.applyCommonHeaders(req)
	req.Header.Set(csrfHeader, c.csrfToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logutil.GetLogger(ctx).Error("delete request failed",
			zap.String("url", endpoint),
			zap.Error(err),
		)
		return failure.Transport("delete", "", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(body))
		logutil.GetLogger(ctx).Error("delete rejected",
			zap.String("url", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("body", msg),
		)
		var cause error
		if msg != "" {
			cause = errors.New(msg)
		}
		return failure.HTTPStatus("delete", key, resp.StatusCode, cause)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
