// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config provides configuration management for the addressLocal server.
// It handles loading an optional YAML configuration file, the working directory
// .env file and environment overrides. The resulting Config is a plain value:
// it is read once at startup and passed by value to every component afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultOllamaBaseURL is the local Ollama endpoint used when none is configured.
	DefaultOllamaBaseURL = "http://localhost:11434"

	// DefaultOllamaModel is used when the request names no model and none is configured.
	DefaultOllamaModel = "llama3.2:latest"

	// DefaultOpenAIModel is the chat model used when the request names none.
	DefaultOpenAIModel = "gpt-3.5-turbo"

	// DefaultLogFile is the rotating log file used when logging-to-file is enabled.
	DefaultLogFile = "logs/addresslocal.log"
)

// Config represents the application's configuration.
type Config struct {
	// Debug enables debug-level logging.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile controls whether logs are written to a rotating file instead of stderr.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogFile is the path of the rotating log file.
	LogFile string `yaml:"log-file" json:"log-file"`

	// ProxyURL optionally routes outbound URL fetches through an HTTP proxy.
	ProxyURL string `yaml:"proxy-url,omitempty" json:"proxy-url,omitempty"`

	// OpenAI configures the remote keyed provider.
	OpenAI OpenAIConfig `yaml:"openai" json:"openai"`

	// Ollama configures the local Ollama server integration.
	Ollama OllamaConfig `yaml:"ollama" json:"ollama"`
}

// OpenAIConfig holds the remote provider credential and endpoint.
type OpenAIConfig struct {
	// APIKey is the credential. An empty key removes the provider from availability.
	APIKey string `yaml:"api-key" json:"-"`

	// BaseURL overrides the API endpoint for OpenAI-compatible services.
	BaseURL string `yaml:"base-url,omitempty" json:"base-url,omitempty"`

	// Model is the default chat model.
	Model string `yaml:"model" json:"model"`
}

// OllamaConfig holds the local endpoint and default model.
type OllamaConfig struct {
	// BaseURL is the Ollama API endpoint. Default: http://localhost:11434
	BaseURL string `yaml:"base-url" json:"base-url"`

	// Model is the default model, substituted when discovery fails.
	Model string `yaml:"model" json:"model"`
}

// Default returns a Config populated with the built-in defaults.
func Default() Config {
	return Config{
		LogFile: DefaultLogFile,
		OpenAI: OpenAIConfig{
			Model: DefaultOpenAIModel,
		},
		Ollama: OllamaConfig{
			BaseURL: DefaultOllamaBaseURL,
			Model:   DefaultOllamaModel,
		},
	}
}

// HasOpenAI reports whether a remote credential is configured.
func (c Config) HasOpenAI() bool {
	return strings.TrimSpace(c.OpenAI.APIKey) != ""
}

// LoadConfig reads YAML from configFile on top of the defaults.
func LoadConfig(configFile string) (Config, error) {
	return LoadConfigOptional(configFile, false)
}

// LoadConfigOptional reads YAML from configFile.
// If optional is true and the file is missing or empty, it returns the defaults.
func LoadConfigOptional(configFile string, optional bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configFile)
	if err != nil {
		if optional && (os.IsNotExist(err) || errors.Is(err, syscall.EISDIR)) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if optional && len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	// Defaults are already set so that absent keys keep them.
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.sanitize()
	return cfg, nil
}

// Load builds the process configuration: the optional YAML file (an empty path
// means defaults only) followed by environment overrides.
func Load(configFile string) (Config, error) {
	cfg := Default()
	if configFile != "" {
		loaded, err := LoadConfig(configFile)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.LookupEnv)
	cfg.sanitize()
	return cfg, nil
}

// LoadDotEnv loads dir/.env into the process environment when present.
// Variables that are already set win over the file.
func LoadDotEnv(dir string) error {
	err := godotenv.Load(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides configuration values from the environment. Blank values
// are ignored so an exported-but-empty variable does not wipe a file setting.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	lookupEnv := func(keys ...string) (string, bool) {
		for _, key := range keys {
			if value, ok := lookup(key); ok {
				if trimmed := strings.TrimSpace(value); trimmed != "" {
					return trimmed, true
				}
			}
		}
		return "", false
	}

	if value, ok := lookupEnv("OPENAI_API_KEY"); ok {
		c.OpenAI.APIKey = value
	}
	if value, ok := lookupEnv("OPENAI_BASE_URL"); ok {
		c.OpenAI.BaseURL = value
	}
	if value, ok := lookupEnv("OPENAI_MODEL"); ok {
		c.OpenAI.Model = value
	}
	if value, ok := lookupEnv("OLLAMA_BASE_URL", "OLLAMA_URL"); ok {
		c.Ollama.BaseURL = value
	}
	if value, ok := lookupEnv("OLLAMA_MODEL"); ok {
		c.Ollama.Model = value
	}
	if value, ok := lookupEnv("ADDRESS_PROXY_URL"); ok {
		c.ProxyURL = value
	}
	if value, ok := lookupEnv("ADDRESS_LOG_FILE"); ok {
		c.LogFile = value
		c.LoggingToFile = true
	}
	if value, ok := lookupEnv("ADDRESS_DEBUG"); ok {
		switch strings.ToLower(value) {
		case "1", "true", "yes", "on":
			c.Debug = true
		case "0", "false", "no", "off":
			c.Debug = false
		}
	}
}

func (c *Config) sanitize() {
	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	c.OpenAI.BaseURL = strings.TrimSpace(c.OpenAI.BaseURL)
	c.OpenAI.Model = strings.TrimSpace(c.OpenAI.Model)
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = DefaultOpenAIModel
	}

	c.Ollama.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.Ollama.BaseURL), "/")
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = DefaultOllamaBaseURL
	}
	c.Ollama.Model = strings.TrimSpace(c.Ollama.Model)
	if c.Ollama.Model == "" {
		c.Ollama.Model = DefaultOllamaModel
	}

	c.ProxyURL = strings.TrimSpace(c.ProxyURL)
	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = DefaultLogFile
	}
}
