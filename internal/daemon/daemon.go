package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"carousel/internal/api"
	"carousel/internal/config"
	"carousel/internal/logging"
	"carousel/internal/scheduler"
	"carousel/internal/staging"
	"carousel/internal/store"
	"carousel/internal/workflow"
)

const cleanupInterval = time.Hour

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	manager   *workflow.Manager
	scheduler *scheduler.Scheduler
	apiServer *api.Server
	staging   *staging.Publisher

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, manager *workflow.Manager, stagingPub *staging.Publisher) (*Daemon, error) {
	if cfg == nil || st == nil || manager == nil || stagingPub == nil {
		return nil, errors.New("daemon requires config, store, workflow manager, and staging publisher")
	}

	daemon := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		manager:  manager,
		staging:  stagingPub,
		lockPath: filepath.Join(cfg.Paths.LogDir, "carouseld.lock"),
	}
	daemon.lock = flock.New(daemon.lockPath)

	sched, err := scheduler.New(cfg.Scheduler.CronExpressions, manager, logger)
	if err != nil {
		return nil, fmt.Errorf("build scheduler: %w", err)
	}
	daemon.scheduler = sched

	apiServer, err := api.NewServer(cfg, st, manager, logger)
	if err != nil {
		return nil, fmt.Errorf("build api server: %w", err)
	}
	daemon.apiServer = apiServer

	return daemon, nil
}

// Start acquires the daemon lock and launches the scheduler, the admin API,
// and the cleanup loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another carousel daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	if d.apiServer != nil {
		if err := d.apiServer.Start(d.ctx); err != nil {
			_ = d.lock.Unlock()
			d.cancel()
			d.ctx = nil
			d.cancel = nil
			return err
		}
	}
	d.scheduler.Start()

	d.wg.Add(1)
	go d.cleanupLoop(d.ctx)

	d.running.Store(true)
	d.logger.Info("carousel daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.scheduler.Stop()
	if d.apiServer != nil {
		d.apiServer.Stop()
	}
	d.wg.Wait()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("carousel daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// LockPath returns the path of the single-instance lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// cleanupLoop periodically removes staged uploads older than the configured
// retention window. Staged copies normally disappear right after publication;
// this sweep catches leftovers from crashed pipelines.
func (d *Daemon) cleanupLoop(ctx context.Context) {
	defer d.wg.Done()

	maxAge := time.Duration(d.cfg.Publisher.MaxAgeHours) * time.Hour
	if maxAge <= 0 {
		return
	}

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := d.staging.CleanStale(maxAge)
			if err != nil {
				d.logger.Warn("staged upload cleanup failed", logging.Error(err))
				continue
			}
			if removed > 0 {
				d.logger.Info("removed stale staged uploads", logging.Int("count", removed))
			}
		}
	}
}
