package workflow

import (
	"errors"
	"log/slog"

	"carousel/internal/config"
	"carousel/internal/logging"
	"carousel/internal/services/ffmpeg"
	"carousel/internal/services/instagram"
	"carousel/internal/services/ytdlp"
	"carousel/internal/staging"
	"carousel/internal/store"
)

// Deps bundles the collaborators the manager drives. All fields are required.
type Deps struct {
	Store      *store.Store
	Fetcher    ytdlp.Fetcher
	Transcoder ffmpeg.Transcoder
	Staging    *staging.Publisher
	Remote     instagram.Publisher
	Logger     *slog.Logger
}

// Manager coordinates pipeline passes across accounts.
type Manager struct {
	cfg        *config.Config
	store      *store.Store
	fetcher    ytdlp.Fetcher
	transcoder ffmpeg.Transcoder
	staging    *staging.Publisher
	remote     instagram.Publisher
	logger     *slog.Logger
	locks      *accountLocks
}

// NewManager constructs a pipeline manager.
func NewManager(cfg *config.Config, deps Deps) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}
	if deps.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if deps.Transcoder == nil {
		return nil, errors.New("transcoder is required")
	}
	if deps.Staging == nil {
		return nil, errors.New("staging publisher is required")
	}
	if deps.Remote == nil {
		return nil, errors.New("remote client is required")
	}
	return &Manager{
		cfg:        cfg,
		store:      deps.Store,
		fetcher:    deps.Fetcher,
		transcoder: deps.Transcoder,
		staging:    deps.Staging,
		remote:     deps.Remote,
		logger:     logging.NewComponentLogger(deps.Logger, "workflow"),
		locks:      newAccountLocks(),
	}, nil
}
