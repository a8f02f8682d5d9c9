// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package provider defines the address extraction backends.
//
// Every method reports failure through its error so callers can tell an
// unreachable backend apart from a backend that found nothing. A successful
// extraction always carries a non-nil Addresses slice.
package provider

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable reports a backend that failed its liveness probe.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrNoCredential reports a keyed backend without an API key.
	ErrNoCredential = errors.New("provider has no credential")
)

// Provider is implemented by OpenAI and Ollama.
type Provider interface {
	// Name is the protocol-facing identifier.
	Name() string
	// CheckAvailability returns nil when the provider can serve requests now.
	CheckAvailability(ctx context.Context) error
	// Models lists the model identifiers the provider can use.
	Models(ctx context.Context) ([]string, error)
	// ExtractAddresses runs the extraction prompt over text. An empty model
	// selects the provider default.
	ExtractAddresses(ctx context.Context, text, model string) (Extraction, error)
}

// Extraction is the outcome of one successful provider call.
type Extraction struct {
	Addresses []string
	// Model is the model that actually served the request.
	Model string
}

// IsAvailable reports whether p passes its availability check.
func IsAvailable(ctx context.Context, p Provider) bool {
	return p.CheckAvailability(ctx) == nil
}
