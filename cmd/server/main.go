// Copyright 2026 The switchAILocal Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides the entry point for the addressLocal server.
// The server reads one JSON request per line on stdin and answers on stdout,
// extracting postal addresses from text, files and web pages with OpenAI or a
// local Ollama model. Logs go to stderr so stdout stays a clean protocol stream.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/traylinx/addressLocal/internal/buildinfo"
	"github.com/traylinx/addressLocal/internal/cmd"
	"github.com/traylinx/addressLocal/internal/config"
	"github.com/traylinx/addressLocal/internal/logging"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
	buildinfo.Version = Version
	buildinfo.Commit = Commit
	buildinfo.BuildDate = BuildDate
}

type rootOptions struct {
	configPath string
	debug      bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "addresslocal",
		Short:         "Line-delimited JSON service that extracts postal addresses",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			log.Info(buildinfo.String())
			cmd.LogStartup(cfg)

			ctx, cancel := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return cmd.StartService(ctx, cfg, c.InOrStdin(), c.OutOrStdout())
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Configure File Path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	root.AddCommand(newIdentifyCommand(opts), newVersionCommand())
	return root
}

func newIdentifyCommand(opts *rootOptions) *cobra.Command {
	var providerName, model, format string
	identify := &cobra.Command{
		Use:   "identify <input>",
		Short: "Extract addresses from one text, file path or URL and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return cmd.Identify(ctx, cfg, args[0], providerName, model, format, c.OutOrStdout())
		},
	}
	identify.Flags().StringVar(&providerName, "provider", "auto", "Provider to use: auto, openai or ollama")
	identify.Flags().StringVar(&model, "model", "", "Model to request from the provider")
	identify.Flags().StringVarP(&format, "output", "o", cmd.FormatJSON, "Output format: json or yaml")
	return identify
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, _ []string) {
			fmt.Fprintln(c.OutOrStdout(), buildinfo.String())
		},
	}
}

// loadConfig reads .env, the optional config file and the environment, then
// points logging at its configured destination.
func loadConfig(opts *rootOptions) (config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		log.Errorf("failed to get working directory: %v", err)
		return config.Config{}, err
	}
	if err = config.LoadDotEnv(wd); err != nil {
		log.WithError(err).Warn("failed to load .env file")
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return config.Config{}, err
	}
	if opts.debug {
		cfg.Debug = true
	}

	if err = logging.ConfigureLogOutput(cfg.Debug, cfg.LoggingToFile, cfg.LogFile); err != nil {
		log.Errorf("failed to configure log output: %v", err)
		return config.Config{}, err
	}
	return cfg, nil
}
