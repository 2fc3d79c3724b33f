package workflow

import (
	"context"
	"sync"
)

// accountLocks serializes pipeline work per account. Waiters form a chain of
// channels, so the lock is granted in strict arrival order.
type accountLocks struct {
	mu    sync.Mutex
	tails map[int64]chan struct{}
}

func newAccountLocks() *accountLocks {
	return &accountLocks{tails: make(map[int64]chan struct{})}
}

// acquire blocks until the caller holds the account's lock or ctx is done.
// The returned release function must be called exactly once.
func (l *accountLocks) acquire(ctx context.Context, accountID int64) (func(), error) {
	slot := make(chan struct{})

	l.mu.Lock()
	predecessor := l.tails[accountID]
	l.tails[accountID] = slot
	l.mu.Unlock()

	if predecessor != nil {
		select {
		case <-predecessor:
		case <-ctx.Done():
			// Keep the chain intact for waiters queued behind us.
			go func() {
				<-predecessor
				close(slot)
			}()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			if l.tails[accountID] == slot {
				delete(l.tails, accountID)
			}
			l.mu.Unlock()
			close(slot)
		})
	}
	return release, nil
}
