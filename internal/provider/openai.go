// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	log "github.com/sirupsen/logrus"
	"github.com/traylinx/addressLocal/internal/config"
	"github.com/traylinx/addressLocal/internal/constant"
)

// openAIModels is the fixed list reported by Models.
var openAIModels = []string{"gpt-3.5-turbo", "gpt-4", "gpt-4-turbo-preview"}

// OpenAI extracts addresses through the chat completions API.
type OpenAI struct {
	apiKey       string
	defaultModel string
	client       openai.Client
}

// NewOpenAI builds the provider from its config section. A missing key
// yields a provider that is never available.
func NewOpenAI(cfg config.OpenAIConfig, proxyURL string, opts ...option.RequestOption) *OpenAI {
	p := &OpenAI{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		defaultModel: cfg.Model,
	}
	if p.defaultModel == "" {
		p.defaultModel = config.DefaultOpenAIModel
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(p.apiKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient := proxiedClient(proxyURL); httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(httpClient))
	}
	clientOpts = append(clientOpts, opts...)
	p.client = openai.NewClient(clientOpts...)

	if p.apiKey != "" {
		log.Info("OpenAI provider initialized")
	}
	return p
}

func (p *OpenAI) Name() string { return constant.OpenAI }

// CheckAvailability succeeds iff an API key is configured. No network call is made.
func (p *OpenAI) CheckAvailability(_ context.Context) error {
	if p.apiKey == "" {
		return ErrNoCredential
	}
	return nil
}

func (p *OpenAI) Models(ctx context.Context) ([]string, error) {
	if err := p.CheckAvailability(ctx); err != nil {
		return nil, err
	}
	return append([]string(nil), openAIModels...), nil
}

func (p *OpenAI) ExtractAddresses(ctx context.Context, text, model string) (Extraction, error) {
	if err := p.CheckAvailability(ctx); err != nil {
		return Extraction{}, err
	}
	if model == "" {
		model = p.defaultModel
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemMessage),
			openai.UserMessage(Prompt(text)),
		},
		Temperature: openai.Float(Temperature),
		MaxTokens:   openai.Int(MaxOutputTokens),
	})
	if err != nil {
		return Extraction{Model: model}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Extraction{Model: model}, errors.New("openai chat completion: response has no choices")
	}

	addresses := ParseAddresses(resp.Choices[0].Message.Content)
	log.Infof("OpenAI found %d addresses", len(addresses))
	return Extraction{Addresses: addresses, Model: model}, nil
}

// proxiedClient returns an HTTP client routed through proxyURL, or nil when
// no usable proxy is configured.
func proxiedClient(proxyURL string) *http.Client {
	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL == "" {
		return nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		log.Warnf("ignoring invalid proxy url %q", proxyURL)
		return nil
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyURL(u)
	return &http.Client{Transport: transport}
}
