// Package fetch loads encoded clip bytes from local paths, file:// URLs and
// http(s) URLs, keeping recent clips in memory.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/patrickmn/go-cache"
)

var log = logging.Logger("fetch")

const (
	DefaultTTL     = 10 * time.Minute
	DefaultTimeout = 15 * time.Second

	// maxClipBytes bounds a single download.
	maxClipBytes = 64 << 20
)

var (
	ErrEmptyLocator      = errors.New("empty locator")
	ErrUnsupportedScheme = errors.New("unsupported locator scheme")
	ErrTooLarge          = errors.New("clip exceeds size limit")
)

type Client struct {
	httpClient *http.Client
	cache      *cache.Cache
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTTL sets how long fetched clips stay cached. Zero disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = cache.New(ttl, 2*ttl)
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		cache:      cache.New(DefaultTTL, 2*DefaultTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if locator == "" {
		return nil, ErrEmptyLocator
	}
	if c.cache != nil {
		if cached, ok := c.cache.Get(locator); ok {
			return cached.([]byte), nil
		}
	}

	data, err := c.load(ctx, locator)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.SetDefault(locator, data)
	}
	log.Debugw("clip fetched", "locator", locator, "bytes", len(data))
	return data, nil
}

func (c *Client) load(ctx context.Context, locator string) ([]byte, error) {
	u, err := url.Parse(locator)
	if err != nil || len(u.Scheme) <= 1 {
		// Plain paths, including Windows drive letters.
		return readFile(locator)
	}

	switch u.Scheme {
	case "file":
		return readFile(u.Path)
	case "http", "https":
		return c.download(ctx, locator)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

func (c *Client) download(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s returned status %d", locator, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxClipBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxClipBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxClipBytes {
		return nil, ErrTooLarge
	}
	return os.ReadFile(path)
}
