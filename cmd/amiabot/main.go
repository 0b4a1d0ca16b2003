// Copyright 2026 The AmIABot Authors
// SPDX-License-Identifier: Apache-2.0

// Command amiabot runs the Turing-test chat server: a websocket
// endpoint where participants are matched into anonymous
// conversations with another human or with a text-generation bot,
// then asked to judge which one they got.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/amiabot/amiabot/bot"
	"github.com/amiabot/amiabot/game"
	"github.com/amiabot/amiabot/lib/clock"
	"github.com/amiabot/amiabot/lib/config"
	"github.com/amiabot/amiabot/lib/llm"
	"github.com/amiabot/amiabot/lib/version"
	"github.com/amiabot/amiabot/server"
	"github.com/amiabot/amiabot/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("amiabot", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to config file (default: $AMIABOT_CONFIG, else built-in defaults)")
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("amiabot %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	responder := bot.New(bot.Config{
		Provider: llm.NewOpenAI(llm.OpenAIConfig{
			APIKey:  apiKey,
			BaseURL: cfg.Bot.BaseURL,
		}),
		Logger: logger,
		Model:  cfg.Bot.Model,
	})

	var checkOrigin func(*http.Request) bool
	if cfg.Server.AllowAnyOrigin {
		checkOrigin = func(*http.Request) bool { return true }
	}
	hub := transport.NewHub(transport.Config{
		Logger:      logger,
		CheckOrigin: checkOrigin,
	})

	opts := cfg.GameOptions()
	opts.Clock = clock.Real()
	opts.Logger = logger
	opts.Notifier = hub
	opts.Responder = responder
	g := game.New(opts)
	hub.Bind(g)

	go g.Janitor(ctx, cfg.Janitor.Interval.Std(), cfg.Janitor.MaxAge.Std())

	s := server.New(server.Config{
		Address: cfg.Server.Address,
		Handler: server.NewHandler(server.RouteConfig{
			Game:   g,
			Hub:    hub,
			Logger: logger,
			Debug:  cfg.Server.Debug,
		}),
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
		Logger:          logger,
	})
	return s.Serve(ctx)
}

// loadConfig prefers the --config flag over the AMIABOT_CONFIG
// environment variable; with neither set the built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
