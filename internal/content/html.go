// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package content

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"github.com/traylinx/addressLocal/internal/constant"
)

var (
	assetRef      = regexp.MustCompile(`(?i)\.(css|js)$`)
	scriptBlock   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlock    = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	anyTag        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// nonContentSelector lists elements that never carry readable page text.
const nonContentSelector = "script, style, meta, link, noscript"

// CleanHTML extracts readable text from an HTML document. When the markup
// cannot be parsed it falls back to BasicText; a panic during extraction
// yields the first constant.RawFallbackLimit characters of the input as-is.
func CleanHTML(raw string) (text string, truncated bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("error cleaning HTML content: %v", r)
			text, truncated = prefix(raw, constant.RawFallbackLimit), false
		}
	}()

	cleaned, err := extractHTMLText(raw)
	if err != nil {
		log.Warnf("HTML parsing failed, using basic extraction: %v", err)
		return BasicText(raw)
	}
	return Truncate(cleaned, constant.StructuredTextLimit)
}

func extractHTMLText(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find(nonContentSelector).Remove()
	doc.Find("[href], [src]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		src, _ := s.Attr("src")
		return assetRef.MatchString(href) || assetRef.MatchString(src)
	}).Remove()

	return collapseLines(doc.Text()), nil
}

// collapseLines trims every line, splits lines on double spaces into phrases,
// squeezes inner whitespace and joins the non-empty phrases with newlines.
func collapseLines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.Join(strings.Fields(phrase), " "); phrase != "" {
				out = append(out, phrase)
			}
		}
	}
	return strings.Join(out, "\n")
}

// BasicText is the degraded HTML path: regex removal of script and style
// blocks and all remaining tags, whitespace collapsed to single spaces,
// capped at constant.GenericTextLimit. It never fails.
func BasicText(raw string) (string, bool) {
	raw = scriptBlock.ReplaceAllString(raw, "")
	raw = styleBlock.ReplaceAllString(raw, "")
	raw = anyTag.ReplaceAllString(raw, "")
	raw = strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " "))
	return Truncate(raw, constant.GenericTextLimit)
}
