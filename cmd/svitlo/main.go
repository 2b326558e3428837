// Svitlo: guided self-help companion bot
//
// A Telegram bot offering structured wellness exercises (daily
// check-in, breathing, grounding, micro-planning, trigger logging)
// with trailing-window reports over the logged history.
//
// Usage:
//
//	svitlo serve     # Start the long-poll loop
//	svitlo update    # Update to the latest version
//	svitlo version   # Print the version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/grechaniuk/svitlo-bot/internal/bot"
	"github.com/grechaniuk/svitlo-bot/internal/config"
	"github.com/grechaniuk/svitlo-bot/internal/flow"
	"github.com/grechaniuk/svitlo-bot/internal/i18n"
	"github.com/grechaniuk/svitlo-bot/internal/llm"
	"github.com/grechaniuk/svitlo-bot/internal/report"
	"github.com/grechaniuk/svitlo-bot/internal/session"
	"github.com/grechaniuk/svitlo-bot/internal/store"
	"github.com/grechaniuk/svitlo-bot/internal/telegram"
	"github.com/grechaniuk/svitlo-bot/internal/updater"
)

const version = "0.1.0"

var (
	cfgPath string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "svitlo",
		Short:         "Guided self-help companion bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the long-poll loop",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe()
			},
		},
		&cobra.Command{
			Use:   "update",
			Short: "Update to the latest version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runUpdate()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("svitlo v%s\n", version)
			},
		},
	)
	return root
}

func runServe() error {
	logger, err := buildLogger(verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	bundle, err := i18n.Load(cfg.DefaultLang)
	if err != nil {
		return err
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	// Graceful shutdown on interrupt.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := bot.Deps{
		Config:   cfg,
		Messages: bundle,
		Logger:   logger,
		Profiles: st,
		Sessions: session.NewStore(),
		Flows:    flow.NewEngine(bundle, st),
		Reports:  report.NewEngine(st),
	}
	if cfg.GeminiAPIKey != "" {
		gen, err := llm.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout)
		if err != nil {
			return err
		}
		deps.LLM = gen
		logger.Info("generative fallback enabled", zap.String("model", cfg.GeminiModel))
	} else {
		logger.Info("generative fallback disabled, no API key")
	}

	router := bot.New(deps)
	poller := telegram.NewPoller(telegram.NewClient(cfg.BotToken), router, logger)

	// Best-effort version check; network failures stay silent.
	go func() {
		if result := updater.CheckVersion(version); result.UpdateAvailable {
			logger.Info("update available",
				zap.String("current", result.CurrentVersion),
				zap.String("latest", result.LatestVersion),
				zap.String("release", result.ReleaseURL))
		}
	}()

	logger.Info("starting long-poll loop",
		zap.String("db", cfg.DBPath),
		zap.String("default_lang", cfg.DefaultLang))

	err = poller.Run(ctx)
	logger.Info("shut down")
	return err
}

func runUpdate() error {
	result := updater.CheckVersion(version)
	if !result.UpdateAvailable {
		fmt.Printf("Already at the latest version (v%s)\n", result.CurrentVersion)
		return nil
	}

	fmt.Printf("Updating v%s -> v%s\n", result.CurrentVersion, result.LatestVersion)
	if err := updater.SelfUpdate(version); err != nil {
		return fmt.Errorf("update failed: %w (download manually from %s)", err, result.ReleaseURL)
	}
	fmt.Printf("Updated to v%s. Restart svitlo to use the new version.\n", result.LatestVersion)
	return nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
