package workflow

import (
	"context"
	"log/slog"
	"os"

	"carousel/internal/logging"
	"carousel/internal/services"
	"carousel/internal/services/instagram"
	"carousel/internal/services/ytdlp"
	"carousel/internal/store"
)

// ProcessNext runs one pipeline pass for an account: it takes the account's
// serialization lock, claims the oldest pending item, and carries it through
// acquisition, normalization, staging, and remote publication. When nothing
// is queued the pass is recorded as a skip.
func (m *Manager) ProcessNext(ctx context.Context, runID *int64, account *store.Account) Result {
	release, err := m.locks.acquire(ctx, account.ID)
	if err != nil {
		return Result{
			AccountID: account.ID,
			Username:  account.Username,
			Outcome:   OutcomeFailed,
			Reason:    "canceled while waiting for account lock: " + err.Error(),
		}
	}
	defer release()

	logger := m.logger.With(
		logging.Int64(logging.FieldAccountID, account.ID),
		logging.String("username", account.Username),
	)

	item, err := m.store.NextPending(ctx, account.ID)
	if err != nil {
		return Result{AccountID: account.ID, Username: account.Username, Outcome: OutcomeFailed, Reason: err.Error()}
	}
	if item == nil {
		attempt, err := m.store.LogSkipped(ctx, runID, account.ID, store.SkipReasonNoPendingItem)
		if err != nil {
			logger.Warn("record skip failed", logging.Error(err))
		}
		logger.Info("nothing queued, skipping")
		return skippedResult(account, attempt)
	}

	attempt, err := m.store.OpenAttempt(ctx, runID, account.ID, &item.ID, item.Kind)
	if err != nil {
		return Result{AccountID: account.ID, Username: account.Username, Outcome: OutcomeFailed, Reason: err.Error()}
	}
	logger = logger.With(
		logging.Int64(logging.FieldItemID, item.ID),
		logging.Int64(logging.FieldAttemptID, attempt.ID),
	)

	result := Result{
		AccountID: account.ID,
		Username:  account.Username,
		ItemID:    &item.ID,
		ItemName:  item.Name,
		Kind:      item.Kind,
		AttemptID: attempt.ID,
	}

	mediaID, err := m.publishItem(ctx, logger, account, item)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Reason = err.Error()
		if closeErr := m.store.CloseAttempt(ctx, attempt.ID, store.AttemptFailed, result.Reason); closeErr != nil {
			logger.Warn("close attempt failed", logging.Error(closeErr))
		}
		logger.Error("pipeline pass failed", logging.Error(err))
		return result
	}

	updated, err := m.store.MarkPosted(ctx, item.ID)
	if err != nil {
		logger.Warn("mark posted failed", logging.Error(err))
	} else if !updated {
		logger.Warn("item was no longer pending when marked posted")
	}
	if closeErr := m.store.CloseAttempt(ctx, attempt.ID, store.AttemptSuccess, ""); closeErr != nil {
		logger.Warn("close attempt failed", logging.Error(closeErr))
	}

	result.Outcome = OutcomeSuccess
	result.MediaID = mediaID
	logger.Info("published item", logging.String("media_id", mediaID), logging.String("kind", string(item.Kind)))
	return result
}

// publishItem moves one item through the external services and returns the
// remote media id. Local artifacts (download directory, staged copy) are
// removed before returning, whatever the outcome.
func (m *Manager) publishItem(ctx context.Context, logger *slog.Logger, account *store.Account, item *store.Item) (string, error) {
	download, err := m.fetcher.Fetch(ctx, item.SourceURL, ytdlp.AuthOptions{})
	if err != nil {
		return "", err
	}
	defer func() {
		if download.Dir != "" {
			if removeErr := os.RemoveAll(download.Dir); removeErr != nil {
				logger.Warn("remove download directory failed", logging.Error(removeErr))
			}
		}
	}()

	mediaPath := download.Path
	if item.Kind == store.KindVideo {
		converted, err := m.transcoder.Transcode(ctx, download.Path)
		if err != nil {
			// The original file may still be acceptable upstream, so a
			// conversion failure downgrades to the raw download.
			logger.Warn("transcode failed, publishing original file", logging.Error(err))
		} else {
			mediaPath = converted
		}
	}

	staged, err := m.staging.Publish(mediaPath)
	if err != nil {
		return "", err
	}
	defer func() {
		if retractErr := m.staging.Retract(staged.Path); retractErr != nil {
			logger.Warn("retract staged file failed", logging.Error(retractErr))
		}
	}()

	// Resolve the account from the item rather than trusting the caller's
	// row; under concurrent fan-out that reference may be stale.
	owner, err := m.store.GetAccount(ctx, item.AccountID)
	if err != nil {
		return "", err
	}
	if owner == nil {
		return "", services.Wrap(services.ErrNotFound, "workflow", "publish",
			"item's account no longer exists", nil)
	}
	if owner.ID != account.ID {
		logger.Warn("item owner differs from locked account",
			logging.Int64("owner_account_id", owner.ID))
	}
	if !owner.HasCredentials() {
		return "", services.Wrap(services.ErrMissingCredentials, "workflow", "publish",
			"account "+owner.Username+" has no remote credentials", nil)
	}

	containerID, err := m.remote.CreateContainer(ctx, instagram.CreateContainerRequest{
		IGUserID:  owner.IGUserID,
		Token:     owner.AccessToken,
		Kind:      item.Kind,
		PublicURL: staged.URL,
		Caption:   item.Name,
	})
	if err != nil {
		return "", err
	}

	if _, err := m.remote.AwaitReady(ctx, owner.AccessToken, containerID, m.cfg.ReadyTimeout(), m.cfg.PollInterval()); err != nil {
		return "", err
	}

	return m.remote.PublishContainer(ctx, instagram.PublishRequest{
		IGUserID:    owner.IGUserID,
		Token:       owner.AccessToken,
		ContainerID: containerID,
	})
}
