// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package discovery lists the models a backend currently serves.
package discovery

import (
	"context"
)

// Fetcher is the interface for retrieving raw content from a remote source (URL).
type Fetcher interface {
	// Fetch retrieves the content from the given URL.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Parser is the interface for parsing raw content into model identifiers.
type Parser interface {
	// Parse extracts model identifiers from the given raw content.
	Parse(content []byte) ([]string, error)
}
