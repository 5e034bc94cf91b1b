package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/galelabs/gale/internal/bot"
	"github.com/galelabs/gale/internal/config"
	"github.com/galelabs/gale/internal/gateway"
	"github.com/galelabs/gale/internal/review"
)

// main always exits 0: this binary runs as an automation step, and
// failures are reported on the console rather than through the exit
// status.
func main() {
	logger := newLogger("info")

	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("failed to load configuration")
		return
	}
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return
	}
	logger = newLogger(cfg.LogLevel)

	ctx := context.Background()

	token, err := resolveToken(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to resolve a GitHub access token")
		return
	}

	gw := gateway.New(ctx, token)
	reviewer := review.NewClient(cfg.OpenAIKey, cfg.Model, logger)

	bot.New(cfg, gw, reviewer, logger).Run(ctx)
}

// resolveToken prefers a directly configured token and otherwise
// exchanges GitHub App credentials for an installation token.
func resolveToken(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.GitHubToken != "" {
		return cfg.GitHubToken, nil
	}

	auth, err := gateway.NewAppAuth(cfg.AppID, cfg.AppPrivateKeyPath)
	if err != nil {
		return "", err
	}
	return auth.InstallationToken(ctx, cfg.AppInstallationID)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().
		Timestamp().
		Logger().
		Level(lvl)
}
