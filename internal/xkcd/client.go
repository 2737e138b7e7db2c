package xkcd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/five82/xkcdterm/internal/comic"
)

// Fetcher defines the remote operations used by the cache and selector.
// This interface is implemented by *Client and can be used for testing.
type Fetcher interface {
	FetchArchive(ctx context.Context) ([]comic.Entry, error)
	FetchComic(ctx context.Context, id int) (comic.Entry, error)
	FetchLatest(ctx context.Context) (comic.Entry, error)
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the xkcd website and its JSON endpoints.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	maxImage  int64
}

const (
	DefaultBaseURL   = "https://xkcd.com"
	defaultUserAgent = "xkcdterm/0.1"
	requestTimeout   = 30 * time.Second
	metadataTimeout  = 10 * time.Second
	maxImageBytes    = 32 << 20

	archivePath = "/archive/"
	latestPath  = "/info.0.json"
)

// NewClient builds a Client for the given base URL. An empty value uses
// https://xkcd.com.
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		maxImage:  maxImageBytes,
	}, nil
}

// FetchArchive downloads and parses the full archive listing.
func (c *Client) FetchArchive(ctx context.Context) ([]comic.Entry, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	reqURL := c.resolve(archivePath)
	resp, err := c.get(ctx, reqURL, "text/html")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	entries, err := ParseArchive(resp.Body)
	if err != nil {
		return nil, &comic.FetchError{URL: reqURL, Err: err}
	}
	return entries, nil
}

// FetchComic retrieves metadata for a single comic. A missing comic yields
// comic.ErrNotFound.
func (c *Client) FetchComic(ctx context.Context, id int) (comic.Entry, error) {
	if c == nil {
		return comic.Entry{}, fmt.Errorf("client is nil")
	}
	if id <= 0 {
		return comic.Entry{}, comic.ErrNotFound
	}
	return c.fetchInfo(ctx, "/"+strconv.Itoa(id)+latestPath)
}

// FetchLatest retrieves metadata for the most recent comic.
func (c *Client) FetchLatest(ctx context.Context) (comic.Entry, error) {
	if c == nil {
		return comic.Entry{}, fmt.Errorf("client is nil")
	}
	return c.fetchInfo(ctx, latestPath)
}

// FetchImage downloads the raw image bytes. Relative and protocol-relative
// URLs are resolved against the base URL.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	trimmed := strings.TrimSpace(imageURL)
	if trimmed == "" {
		return nil, &comic.FetchError{URL: imageURL, Err: fmt.Errorf("image url is empty")}
	}
	ref, err := url.Parse(trimmed)
	if err != nil {
		return nil, &comic.FetchError{URL: imageURL, Err: fmt.Errorf("parse image url: %w", err)}
	}
	reqURL := c.baseURL.ResolveReference(ref).String()

	resp, err := c.get(ctx, reqURL, "image/*")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxImage+1))
	if err != nil {
		return nil, &comic.FetchError{URL: reqURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(data)) > c.maxImage {
		return nil, &comic.FetchError{URL: reqURL, Err: fmt.Errorf("image exceeds %d bytes", c.maxImage)}
	}
	return data, nil
}

func (c *Client) fetchInfo(ctx context.Context, path string) (comic.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, metadataTimeout)
	defer cancel()

	reqURL := c.resolve(path)
	resp, err := c.get(ctx, reqURL, "application/json")
	if err != nil {
		var fe *comic.FetchError
		if errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
			return comic.Entry{}, fmt.Errorf("%s: %w", reqURL, comic.ErrNotFound)
		}
		return comic.Entry{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var payload infoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return comic.Entry{}, &comic.FetchError{URL: reqURL, Err: fmt.Errorf("decode response: %w", err)}
	}
	if payload.Num <= 0 {
		return comic.Entry{}, &comic.FetchError{URL: reqURL, Err: fmt.Errorf("decode response: missing comic number")}
	}
	return payload.Entry(), nil
}

// get performs a GET and returns the response for non-error status codes.
// Every failure is a *comic.FetchError.
func (c *Client) get(ctx context.Context, reqURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &comic.FetchError{URL: reqURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &comic.FetchError{URL: reqURL, Err: fmt.Errorf("execute request: %w", err)}
	}
	if resp.StatusCode >= 400 {
		_ = resp.Body.Close()
		return nil, &comic.FetchError{URL: reqURL, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func (c *Client) resolve(path string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: path}).String()
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
