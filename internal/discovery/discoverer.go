// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package discovery

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// SourceConfig defines a discovery source configuration.
type SourceConfig struct {
	ProviderID string
	URL        string
	Parser     Parser
}

// Discoverer resolves model lists from its sources. Results are never
// cached: every call fetches fresh data.
type Discoverer struct {
	fetcher Fetcher
	sources map[string]SourceConfig
	mu      sync.RWMutex
}

// NewDiscoverer creates a Discoverer that fetches through f.
func NewDiscoverer(f Fetcher, sources ...SourceConfig) *Discoverer {
	d := &Discoverer{
		fetcher: f,
		sources: make(map[string]SourceConfig, len(sources)),
	}
	for _, src := range sources {
		d.AddSource(src)
	}
	return d
}

// AddSource registers or replaces the source for src.ProviderID.
func (d *Discoverer) AddSource(src SourceConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	log.WithField("provider", src.ProviderID).WithField("url", src.URL).Debug("Adding discovery source")
	d.sources[src.ProviderID] = src
}

// Discover fetches and parses the model list for providerID.
func (d *Discoverer) Discover(ctx context.Context, providerID string) ([]string, error) {
	d.mu.RLock()
	src, ok := d.sources[providerID]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerID)
	}
	if src.Parser == nil {
		return nil, fmt.Errorf("no parser configured for provider %s", providerID)
	}

	log.WithField("provider", providerID).WithField("url", src.URL).Debug("Fetching models from source")
	content, err := d.fetcher.Fetch(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from %s: %w", src.URL, err)
	}

	models, err := src.Parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content for %s: %w", providerID, err)
	}

	if len(models) == 0 {
		log.WithField("provider", providerID).Warn("No models parsed from source")
	} else {
		log.WithField("provider", providerID).WithField("count", len(models)).Debug("Discovered models")
	}
	return models, nil
}
