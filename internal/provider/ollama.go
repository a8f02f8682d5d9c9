// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/traylinx/addressLocal/internal/config"
	"github.com/traylinx/addressLocal/internal/constant"
	"github.com/traylinx/addressLocal/internal/discovery"
	"github.com/traylinx/addressLocal/internal/discovery/fetcher"
	"github.com/traylinx/addressLocal/internal/discovery/parsers"
	"github.com/traylinx/addressLocal/internal/util"
)

const (
	ollamaProbeTimeout    = 5 * time.Second
	ollamaGenerateTimeout = 120 * time.Second
)

// Ollama extracts addresses with a locally running Ollama server.
type Ollama struct {
	baseURL      string
	defaultModel string
	probe        *fetcher.HTTPFetcher
	generate     *fetcher.HTTPFetcher
	discoverer   *discovery.Discoverer
}

// NewOllama builds the provider from its config section.
func NewOllama(cfg config.OllamaConfig) *Ollama {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = config.DefaultOllamaBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultOllamaModel
	}

	probe := fetcher.NewHTTPFetcher(ollamaProbeTimeout)
	p := &Ollama{
		baseURL:      baseURL,
		defaultModel: model,
		probe:        probe,
		generate:     fetcher.NewHTTPFetcher(ollamaGenerateTimeout),
		discoverer: discovery.NewDiscoverer(probe, discovery.SourceConfig{
			ProviderID: constant.Ollama,
			URL:        baseURL + "/api/tags",
			Parser:     parsers.NewOllamaParser(),
		}),
	}
	log.Infof("Ollama provider initialized with URL: %s", baseURL)
	return p
}

func (p *Ollama) Name() string { return constant.Ollama }

// CheckAvailability probes /api/version. Any failure wraps ErrUnavailable.
func (p *Ollama) CheckAvailability(ctx context.Context) error {
	if _, err := p.probe.Fetch(ctx, p.baseURL+"/api/version"); err != nil {
		return fmt.Errorf("%w: ollama at %s: %v", ErrUnavailable, p.baseURL, err)
	}
	return nil
}

// Models lists the models installed on the server, fetched fresh every call.
func (p *Ollama) Models(ctx context.Context) ([]string, error) {
	models, err := p.discoverer.Discover(ctx, constant.Ollama)
	if err != nil {
		return nil, err
	}
	log.Debugf("Available Ollama models: %v", models)
	return models, nil
}

func (p *Ollama) ExtractAddresses(ctx context.Context, text, model string) (Extraction, error) {
	if err := p.CheckAvailability(ctx); err != nil {
		return Extraction{}, err
	}

	model = p.resolveModel(ctx, model)

	payload := []byte(`{"stream":false}`)
	payload, _ = sjson.SetBytes(payload, "model", model)
	payload, _ = sjson.SetBytes(payload, "prompt", Prompt(text))
	payload, _ = sjson.SetBytes(payload, "options.temperature", Temperature)
	payload, _ = sjson.SetBytes(payload, "options.num_predict", MaxOutputTokens)

	resp, err := p.generate.Post(ctx, p.baseURL+"/api/generate", payload)
	if err != nil {
		return Extraction{Model: model}, fmt.Errorf("ollama generate: %w", err)
	}
	if !gjson.ValidBytes(resp.Body) {
		return Extraction{Model: model}, errors.New("ollama generate: invalid JSON response: " + util.Preview(string(resp.Body), 120))
	}

	addresses := ParseAddresses(gjson.GetBytes(resp.Body, "response").String())
	log.Infof("Ollama (%s) found %d addresses", model, len(addresses))
	return Extraction{Addresses: addresses, Model: model}, nil
}

// resolveModel picks the requested model or the default, substituting the
// first installed model when the choice is not installed. When discovery
// fails the choice is kept as is.
func (p *Ollama) resolveModel(ctx context.Context, requested string) string {
	model := requested
	if model == "" {
		model = p.defaultModel
	}
	available, err := p.Models(ctx)
	if err != nil {
		log.WithError(err).Warn("Error fetching Ollama models")
		return model
	}
	if len(available) > 0 && !util.InArray(available, model) {
		log.Warnf("Model '%s' not found. Using: %s", model, available[0])
		return available[0]
	}
	return model
}
