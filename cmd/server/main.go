package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nicqsizaccent/wonderfulkillers/internal/app"
	"github.com/nicqsizaccent/wonderfulkillers/internal/config"
	"github.com/nicqsizaccent/wonderfulkillers/internal/log"
)

func main() {
	var (
		configPath string
		overrides  config.Config
	)

	root := &cobra.Command{
		Use:           "wk-relay",
		Short:         "Realtime presence and chat relay for the wonderfulkillers launcher",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootstrap := log.New(overrides.LogLevel)

			cfg, path, err := config.Load(bootstrap, configPath)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(overrides)

			logger := log.New(cfg.LogLevel)
			logger.Info().
				Str("addr", cfg.Addr).
				Str("config", path).
				Int("history_limit", cfg.HistoryLimit).
				Msg("starting relay")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.New(cfg, logger).Run(ctx); err != nil {
				return err
			}
			logger.Info().Msg("relay stopped")
			return nil
		},
	}

	flags := root.Flags()
	flags.StringVar(&configPath, "config", "", "path to config file")
	flags.StringVar(&overrides.Addr, "addr", "", "HTTP listen address")
	flags.DurationVar(&overrides.ReadHeaderTimeout, "read-header-timeout", 0, "HTTP read header timeout")
	flags.DurationVar(&overrides.ShutdownTimeout, "shutdown-timeout", 0, "graceful shutdown timeout")
	flags.IntVar(&overrides.HistoryLimit, "history-limit", 0, "retained chat messages")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	if err := root.ExecuteContext(context.Background()); err != nil {
		fallback := log.New("info")
		fallback.Fatal().Err(err).Msg("relay exited with error")
	}
}
