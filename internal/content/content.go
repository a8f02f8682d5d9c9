// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package content turns raw file, page and text payloads into bounded plain
// text suitable for prompting.
//
// Limits are counted in Unicode code points. Content over its limit is cut
// and suffixed with constant.TruncationMarker; content at or under the limit
// is returned unchanged, so normalizing twice is a no-op for short inputs.
package content

import (
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/addressLocal/internal/constant"
)

// Kind records where normalized content came from.
type Kind string

const (
	KindText Kind = "text"
	KindFile Kind = "file"
	KindURL  Kind = "url"
)

// Hint selects the normalization policy.
type Hint int

const (
	// HintUnknown truncates at constant.GenericTextLimit.
	HintUnknown Hint = iota
	// HintText covers plain text, markdown and JSON; truncated at constant.StructuredTextLimit.
	HintText
	// HintHTML strips markup before truncating at constant.StructuredTextLimit.
	HintHTML
)

func (h Hint) String() string {
	switch h {
	case HintHTML:
		return "html"
	case HintText:
		return "text"
	default:
		return "unknown"
	}
}

// Normalized is the per-request result of classification and normalization.
type Normalized struct {
	Text      string
	Truncated bool
	Source    Kind
}

// Empty reports whether there is nothing to send to a provider.
func (n Normalized) Empty() bool {
	return n.Text == ""
}

var textExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".md":       true,
	".markdown": true,
	".json":     true,
	".csv":      true,
	".log":      true,
}

// HintFromExtension picks a policy from a file name.
func HintFromExtension(path string) Hint {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".html" || ext == ".htm":
		return HintHTML
	case textExtensions[ext]:
		return HintText
	default:
		return HintUnknown
	}
}

// HintFromContentType picks a policy from a response Content-Type header.
// The second result is false for non-text media types, which are not decoded.
func HintFromContentType(contentType string) (Hint, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	mediaType = strings.ToLower(mediaType)
	switch {
	case strings.HasPrefix(mediaType, "text/html"):
		return HintHTML, true
	case strings.HasPrefix(mediaType, "text/"):
		return HintText, true
	default:
		return HintUnknown, false
	}
}

// Normalize applies the policy selected by hint to raw.
func Normalize(raw string, hint Hint) string {
	text, _ := normalize(raw, hint)
	return text
}

// NormalizeContent is Normalize plus provenance and the truncation flag.
func NormalizeContent(raw string, hint Hint, source Kind) Normalized {
	text, truncated := normalize(raw, hint)
	return Normalized{Text: text, Truncated: truncated, Source: source}
}

func normalize(raw string, hint Hint) (string, bool) {
	switch hint {
	case HintHTML:
		return CleanHTML(raw)
	case HintText:
		return Truncate(raw, constant.StructuredTextLimit)
	default:
		return Truncate(raw, constant.GenericTextLimit)
	}
}

// Truncate cuts s to limit code points and appends the truncation marker.
// Strings at or under the limit are returned unchanged.
func Truncate(s string, limit int) (string, bool) {
	if utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	n := 0
	for idx := range s {
		if n == limit {
			log.Infof("content truncated to %d characters", limit)
			return s[:idx] + constant.TruncationMarker, true
		}
		n++
	}
	return s, false
}

// prefix returns the first limit code points of s without a marker.
func prefix(s string, limit int) string {
	n := 0
	for idx := range s {
		if n == limit {
			return s[:idx]
		}
		n++
	}
	return s
}
