package app

import (
	"log/slog"

	"github.com/git-pkgs/repodata-patches/fetch"
	"github.com/git-pkgs/repodata-patches/internal/config"
	"github.com/git-pkgs/repodata-patches/internal/conda"
	"github.com/git-pkgs/repodata-patches/internal/output"

	// Registers the win- patcher.
	_ "github.com/git-pkgs/repodata-patches/all"
)

// Wire builds an App backed by the real HTTP fetcher and the filesystem.
func Wire(cfg config.Config, log *slog.Logger) *App {
	opts := []fetch.Option{
		fetch.WithMaxRetries(cfg.Retries),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, fetch.WithTimeout(cfg.Timeout))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, fetch.WithUserAgent(cfg.UserAgent))
	}

	source := conda.New(cfg.ChannelAlias, fetch.NewFetcher(opts...))

	return New(cfg, source, output.NewWriter(cfg.OutputDir), log)
}
