// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parsers

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// OllamaTagsResponse represents the response from Ollama's /api/tags endpoint.
type OllamaTagsResponse struct {
	Models []OllamaModel `json:"models"`
}

type OllamaModel struct {
	Name       string    `json:"name"`
	Model      string    `json:"model"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
}

// OllamaParser parses Ollama's /api/tags response into model names.
type OllamaParser struct{}

func NewOllamaParser() *OllamaParser {
	return &OllamaParser{}
}

// Parse returns model names in listing order. Entries without a name fall
// back to the model field; entries with neither are skipped.
func (p *OllamaParser) Parse(content []byte) ([]string, error) {
	var resp OllamaTagsResponse
	if err := json.Unmarshal(content, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Ollama models: %w", err)
	}

	models := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			name = strings.TrimSpace(m.Model)
		}
		if name == "" {
			continue
		}
		models = append(models, name)
	}
	return models, nil
}
