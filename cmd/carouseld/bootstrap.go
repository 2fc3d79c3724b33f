package main

import (
	"fmt"
	"log/slog"

	"carousel/internal/config"
	"carousel/internal/daemon"
	"carousel/internal/services/ffmpeg"
	"carousel/internal/services/instagram"
	"carousel/internal/services/ytdlp"
	"carousel/internal/staging"
	"carousel/internal/store"
	"carousel/internal/workflow"
)

// bootstrap assembles the service clients and the workflow manager the daemon
// drives.
func bootstrap(cfg *config.Config, st *store.Store, logger *slog.Logger) (*daemon.Daemon, error) {
	fetcher, err := ytdlp.New(cfg.YtDlpBinary(), cfg.DownloadDir(),
		ytdlp.WithAuthDefaults(ytdlp.AuthOptions{
			CookiesFile: cfg.Acquisition.CookiesFile,
			UserAgent:   cfg.Acquisition.UserAgent,
			Referer:     cfg.Acquisition.Referer,
		}),
		ytdlp.WithRetryPolicy(cfg.Acquisition.Retries, cfg.Acquisition.RetrySleepSeconds),
	)
	if err != nil {
		return nil, fmt.Errorf("build downloader: %w", err)
	}

	transcoder, err := ffmpeg.New(cfg.FFmpegBinary())
	if err != nil {
		return nil, fmt.Errorf("build transcoder: %w", err)
	}

	stagingPub, err := staging.NewPublisher(cfg.UploadsDir(), cfg.Publisher.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("build staging publisher: %w", err)
	}

	remote, err := instagram.New(cfg.Remote.BaseURL, cfg.RequestTimeout())
	if err != nil {
		return nil, fmt.Errorf("build remote client: %w", err)
	}

	manager, err := workflow.NewManager(cfg, workflow.Deps{
		Store:      st,
		Fetcher:    fetcher,
		Transcoder: transcoder,
		Staging:    stagingPub,
		Remote:     remote,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build workflow manager: %w", err)
	}

	return daemon.New(cfg, st, logger, manager, stagingPub)
}
