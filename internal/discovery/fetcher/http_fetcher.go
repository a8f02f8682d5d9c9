// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent identifies internal probes such as Ollama liveness checks.
const DefaultUserAgent = "addressLocal/1.0 (internal-discovery)"

// BrowserUserAgent is sent when fetching user supplied pages.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// DefaultMaxBytes caps how much of a response body is read.
const DefaultMaxBytes = 5 << 20

// Response is a fetched body with the metadata needed to interpret it.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
	// Truncated is set when the body was cut at the configured byte cap.
	Truncated bool
}

// HTTPFetcher implements the discovery.Fetcher interface using standard HTTP.
type HTTPFetcher struct {
	client    *http.Client
	headers   map[string]string
	userAgent string
	maxBytes  int64
}

// Option customizes an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) { f.userAgent = ua }
}

// WithMaxBytes overrides the body size cap.
func WithMaxBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithHeader sets a default header for all fetch requests.
func WithHeader(key, value string) Option {
	return func(f *HTTPFetcher) { f.SetHeader(key, value) }
}

// WithProxy routes requests through proxyURL. Empty or invalid values are
// ignored with a warning.
func WithProxy(proxyURL string) Option {
	return func(f *HTTPFetcher) {
		proxyURL = strings.TrimSpace(proxyURL)
		if proxyURL == "" {
			return
		}
		u, err := url.Parse(proxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			log.Warnf("ignoring invalid proxy url %q", proxyURL)
			return
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(u)
		f.client.Transport = transport
	}
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		headers:   make(map[string]string),
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetHeader sets a default header for all fetch requests.
func (f *HTTPFetcher) SetHeader(key, value string) {
	if f.headers == nil {
		f.headers = make(map[string]string)
	}
	f.headers[key] = value
}

// Fetch retrieves the body from the given URL. Any status other than 200 is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return resp.Body, nil
}

// Get performs a GET and returns the decoded body for 2xx responses.
func (f *HTTPFetcher) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return f.do(req)
}

// Post sends body as JSON and returns the decoded response for 2xx responses.
func (f *HTTPFetcher) Post(ctx context.Context, url string, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return f.do(req)
}

func (f *HTTPFetcher) do(req *http.Request) (*Response, error) {
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Encoding", "gzip, br")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("server returned status: %s", resp.Status)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(reader, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	out := &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}
	if int64(len(data)) > f.maxBytes {
		log.WithField("url", req.URL.Redacted()).Warnf("response body exceeds %d bytes, truncating", f.maxBytes)
		out.Body = data[:f.maxBytes]
		out.Truncated = true
	}
	return out, nil
}

// decodeBody unwraps the Content-Encoding the fetcher asked for.
func decodeBody(resp *http.Response) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
		return resp.Body, nil
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip body: %w", err)
		}
		return zr, nil
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}
}

// Text transcodes the body to UTF-8 using the declared or sniffed charset.
// Bodies without a certain charset that are already valid UTF-8 are kept as is.
func (r *Response) Text() (string, error) {
	if _, _, certain := charset.DetermineEncoding(r.Body, r.ContentType); !certain && utf8.Valid(r.Body) {
		return string(r.Body), nil
	}
	reader, err := charset.NewReader(bytes.NewReader(r.Body), r.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to determine charset: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	return string(data), nil
}
