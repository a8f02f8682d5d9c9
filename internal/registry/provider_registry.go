// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package registry owns the configured providers and decides which one serves
// a request. Availability is probed on every call and never stored, so a
// local backend that comes up or goes away is noticed on the next request.
package registry

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/addressLocal/internal/config"
	"github.com/traylinx/addressLocal/internal/constant"
	"github.com/traylinx/addressLocal/internal/provider"
)

// Dispatch is the outcome of routing one extraction request.
type Dispatch struct {
	// Addresses is never nil.
	Addresses []string
	// Provider is the provider that served the request, constant.NoProvider
	// when automatic selection found nothing, or the requested name when a
	// named provider was unavailable.
	Provider string
	// Model is the model the provider reported using, if any.
	Model string
}

// Registry holds providers in construction order.
type Registry struct {
	providers []provider.Provider
}

// New returns a registry over providers. Order matters for fallback selection.
func New(providers ...provider.Provider) *Registry {
	return &Registry{providers: append([]provider.Provider(nil), providers...)}
}

// FromConfig builds the OpenAI provider when a key is configured and the
// Ollama provider unconditionally.
func FromConfig(cfg config.Config) *Registry {
	var providers []provider.Provider
	if cfg.HasOpenAI() {
		providers = append(providers, provider.NewOpenAI(cfg.OpenAI, cfg.ProxyURL))
	}
	providers = append(providers, provider.NewOllama(cfg.Ollama))

	r := New(providers...)
	log.Infof("Initialized providers: %v", r.Names())
	return r
}

// Names lists every constructed provider, available or not.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}

// Get returns the named provider only if it is currently available.
func (r *Registry) Get(ctx context.Context, name string) (provider.Provider, bool) {
	for _, p := range r.providers {
		if p.Name() != name {
			continue
		}
		if err := p.CheckAvailability(ctx); err != nil {
			log.WithError(err).Debugf("provider %s not available", name)
			return nil, false
		}
		return p, true
	}
	return nil, false
}

// Available probes every provider and returns the names that answered.
func (r *Registry) Available(ctx context.Context) []string {
	available := r.available(ctx)
	names := make([]string, 0, len(available))
	for _, p := range available {
		names = append(names, p.Name())
	}
	return names
}

func (r *Registry) available(ctx context.Context) []provider.Provider {
	var out []provider.Provider
	for _, p := range r.providers {
		if err := p.CheckAvailability(ctx); err != nil {
			log.WithError(err).Debugf("provider %s not available", p.Name())
			continue
		}
		out = append(out, p)
	}
	return out
}

// Best prefers OpenAI whenever it is available, then falls back to the first
// available provider in construction order.
func (r *Registry) Best(ctx context.Context) (provider.Provider, bool) {
	available := r.available(ctx)
	for _, p := range available {
		if p.Name() == constant.OpenAI {
			return p, true
		}
	}
	if len(available) == 0 {
		return nil, false
	}
	return available[0], true
}

// Models lists the models of an available provider. Listing errors degrade to
// an empty list; the bool is false only when the provider is unavailable.
func (r *Registry) Models(ctx context.Context, name string) ([]string, bool) {
	p, ok := r.Get(ctx, name)
	if !ok {
		return nil, false
	}
	return listModels(ctx, p), true
}

// AllModels maps every available provider to its model list.
func (r *Registry) AllModels(ctx context.Context) map[string][]string {
	out := make(map[string][]string)
	for _, p := range r.available(ctx) {
		out[p.Name()] = listModels(ctx, p)
	}
	return out
}

func listModels(ctx context.Context, p provider.Provider) []string {
	models, err := p.Models(ctx)
	if err != nil {
		log.WithError(err).Errorf("Error fetching %s models", p.Name())
		return []string{}
	}
	if models == nil {
		return []string{}
	}
	return models
}

// IsAuto reports whether name asks for automatic provider selection.
func IsAuto(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || name == constant.Auto
}

// Dispatch routes text to a provider. It never fails: unavailable providers
// and backend errors both produce an empty address list.
func (r *Registry) Dispatch(ctx context.Context, text, name, model string) Dispatch {
	var (
		p  provider.Provider
		ok bool
	)
	if IsAuto(name) {
		if p, ok = r.Best(ctx); !ok {
			log.Error("No providers available")
			return Dispatch{Addresses: []string{}, Provider: constant.NoProvider}
		}
	} else if p, ok = r.Get(ctx, name); !ok {
		log.Errorf("Provider '%s' not available", name)
		return Dispatch{Addresses: []string{}, Provider: name}
	}

	extraction, err := p.ExtractAddresses(ctx, text, model)
	if err != nil {
		log.WithError(err).Errorf("Error with %s address extraction", p.Name())
		return Dispatch{Addresses: []string{}, Provider: p.Name(), Model: extraction.Model}
	}
	addresses := extraction.Addresses
	if addresses == nil {
		addresses = []string{}
	}
	return Dispatch{Addresses: addresses, Provider: p.Name(), Model: extraction.Model}
}
