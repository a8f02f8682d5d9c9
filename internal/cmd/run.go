// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cmd wires configuration, providers and the protocol server into the
// operations exposed by the addressLocal command line.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	log "github.com/sirupsen/logrus"
	"github.com/traylinx/addressLocal/internal/config"
	"github.com/traylinx/addressLocal/internal/input"
	"github.com/traylinx/addressLocal/internal/registry"
	"github.com/traylinx/addressLocal/internal/server"
	"github.com/traylinx/addressLocal/internal/util"
)

// LogStartup reports which backends the configuration enables.
func LogStartup(cfg config.Config) {
	if cfg.HasOpenAI() {
		log.Infof("OpenAI API key: %s", util.HideAPIKey(cfg.OpenAI.APIKey))
	} else {
		log.Info("OpenAI API key not configured, OpenAI provider disabled")
	}
	log.Infof("Ollama URL: %s (default model %s)", cfg.Ollama.BaseURL, cfg.Ollama.Model)
	if cfg.ProxyURL != "" {
		log.Infof("URL fetches use proxy %s", util.RedactURL(cfg.ProxyURL))
	}
}

// StartService runs the request loop on in and out until the input ends or
// ctx is cancelled. Cancellation is a clean shutdown.
func StartService(ctx context.Context, cfg config.Config, in io.Reader, out io.Writer) error {
	srv := server.New(registry.FromConfig(cfg), input.NewClassifier(cfg), in, out)
	err := srv.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("address service exited with error: %w", err)
	}
	log.Info("Address service stopped")
	return nil
}

// Output formats accepted by Identify.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Identify runs a single identify_addresses request and writes the response
// object to out as indented JSON or as YAML.
func Identify(ctx context.Context, cfg config.Config, raw, providerName, model, format string, out io.Writer) error {
	if format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("unsupported output format %q", format)
	}

	params, err := json.Marshal(map[string]string{
		"input":    raw,
		"provider": providerName,
		"model":    model,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	line := append([]byte(`{"method":"`+server.MethodIdentifyAddresses+`","params":`), params...)
	line = append(line, '}')

	srv := server.New(registry.FromConfig(cfg), input.NewClassifier(cfg), nil, out)
	resp := srv.Handle(ctx, line)

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	if format == FormatYAML {
		if data, err = yaml.JSONToYAML(data); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		data = bytes.TrimRight(data, "\n")
	}
	if _, err = fmt.Fprintln(out, string(data)); err != nil {
		return err
	}
	if resp.Error != "" {
		return errors.New(resp.Error)
	}
	return nil
}
