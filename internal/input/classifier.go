// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package input decides whether a request input is a local file, a URL or
// literal text, and retrieves the content it refers to.
package input

import (
	"context"
	"net/url"
	"os"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/addressLocal/internal/config"
	"github.com/traylinx/addressLocal/internal/content"
	"github.com/traylinx/addressLocal/internal/discovery/fetcher"
	"github.com/traylinx/addressLocal/internal/util"
)

// URLFetchTimeout bounds a single page fetch.
const URLFetchTimeout = 15 * time.Second

// PageFetcher retrieves a URL. *fetcher.HTTPFetcher satisfies it.
type PageFetcher interface {
	Get(ctx context.Context, url string) (*fetcher.Response, error)
}

// Classifier turns raw request input into normalized content. Retrieval
// failures never escape: they produce empty content of the detected kind.
type Classifier struct {
	fetcher PageFetcher
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithFetcher replaces the page fetcher.
func WithFetcher(f PageFetcher) Option {
	return func(c *Classifier) { c.fetcher = f }
}

// NewClassifier builds a classifier whose URL fetches honour cfg.ProxyURL.
func NewClassifier(cfg config.Config, opts ...Option) *Classifier {
	c := &Classifier{
		fetcher: fetcher.NewHTTPFetcher(URLFetchTimeout,
			fetcher.WithUserAgent(fetcher.BrowserUserAgent),
			fetcher.WithProxy(cfg.ProxyURL),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind reports how raw would be classified without retrieving anything.
// An existing regular file wins over a URL, and a URL needs both a scheme
// and a host.
func Kind(raw string) content.Kind {
	if info, err := os.Stat(raw); err == nil && info.Mode().IsRegular() {
		return content.KindFile
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		return content.KindURL
	}
	return content.KindText
}

// Classify retrieves and normalizes the content raw refers to. Literal text
// is returned unchanged.
func (c *Classifier) Classify(ctx context.Context, raw string) content.Normalized {
	switch Kind(raw) {
	case content.KindFile:
		return c.readFile(raw)
	case content.KindURL:
		return c.fetchURL(ctx, raw)
	default:
		return content.Normalized{Text: raw, Source: content.KindText}
	}
}

func (c *Classifier) readFile(path string) content.Normalized {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Errorf("Error reading file %s: %v", path, err)
		return content.Normalized{Source: content.KindFile}
	}
	if !utf8.Valid(data) {
		log.Errorf("Error reading file %s: content is not valid UTF-8", path)
		return content.Normalized{Source: content.KindFile}
	}
	log.Infof("Successfully read file: %s", path)
	return content.NormalizeContent(string(data), content.HintFromExtension(path), content.KindFile)
}

func (c *Classifier) fetchURL(ctx context.Context, rawURL string) content.Normalized {
	empty := content.Normalized{Source: content.KindURL}
	safeURL := util.RedactURL(rawURL)

	resp, err := c.fetcher.Get(ctx, rawURL)
	if err != nil {
		log.Errorf("Error fetching URL %s: %v", safeURL, err)
		return empty
	}

	hint, ok := content.HintFromContentType(resp.ContentType)
	if !ok {
		log.Warnf("Unsupported content type: %s", resp.ContentType)
		return empty
	}

	text, err := resp.Text()
	if err != nil {
		log.Errorf("Error decoding URL %s: %v", safeURL, err)
		return empty
	}

	normalized := content.NormalizeContent(text, hint, content.KindURL)
	normalized.Truncated = normalized.Truncated || resp.Truncated
	log.Infof("Successfully fetched %s content from URL: %s", hint, safeURL)
	return normalized
}
