// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package server

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/traylinx/addressLocal/internal/constant"
)

type handlerFunc func(ctx context.Context, params []byte) (any, error)

func (s *Server) routes() map[string]handlerFunc {
	return map[string]handlerFunc{
		MethodIdentifyAddresses: s.handleIdentifyAddresses,
		MethodListProviders:     s.handleListProviders,
		MethodListModels:        s.handleListModels,
		MethodPing:              s.handlePing,
	}
}

func (s *Server) handleIdentifyAddresses(ctx context.Context, raw []byte) (any, error) {
	var params identifyParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.Input == "" {
		return nil, errInvalidParams("No input provided")
	}
	if params.Provider == "" {
		params.Provider = constant.Auto
	}

	normalized := s.classifier.Classify(ctx, params.Input)
	if normalized.Empty() {
		return IdentifyResult{
			InputType: string(normalized.Source),
			Provider:  params.Provider,
			Model:     optional(params.Model),
			Addresses: []string{},
			Error:     NoContentNote,
		}, nil
	}

	dispatch := s.registry.Dispatch(ctx, normalized.Text, params.Provider, params.Model)
	model := dispatch.Model
	if model == "" {
		model = params.Model
	}

	log.WithFields(log.Fields{
		"input_type": normalized.Source,
		"truncated":  normalized.Truncated,
	}).Infof("Processed %s input with %s, found %d addresses", normalized.Source, dispatch.Provider, len(dispatch.Addresses))

	return IdentifyResult{
		InputType: string(normalized.Source),
		Provider:  dispatch.Provider,
		Model:     optional(model),
		Addresses: dispatch.Addresses,
		Count:     len(dispatch.Addresses),
	}, nil
}

func (s *Server) handleListProviders(ctx context.Context, _ []byte) (any, error) {
	available := s.registry.Available(ctx)
	return ProvidersResult{AvailableProviders: available, TotalCount: len(available)}, nil
}

func (s *Server) handleListModels(ctx context.Context, raw []byte) (any, error) {
	var params listModelsParams
	if err := decodeParams(raw, &params); err != nil {
		return nil, err
	}
	if params.Provider == "" {
		return s.registry.AllModels(ctx), nil
	}
	models, ok := s.registry.Models(ctx, params.Provider)
	if !ok {
		return nil, errInvalidParams("Provider '%s' not available", params.Provider)
	}
	return ModelsResult{Provider: params.Provider, Models: models}, nil
}

func (s *Server) handlePing(context.Context, []byte) (any, error) {
	return "pong", nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
