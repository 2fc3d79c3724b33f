package workflow

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAccountLockGrantsInArrivalOrder(t *testing.T) {
	locks := newAccountLocks()
	ctx := context.Background()

	first, err := locks.acquire(ctx, 1)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 1; i <= 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locks.acquire(ctx, 1)
			if err != nil {
				t.Errorf("acquire failed: %v", err)
				return
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			release()
		}()
		// Give each waiter time to join the chain before the next arrives.
		time.Sleep(20 * time.Millisecond)
	}

	first()
	wg.Wait()

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("expected FIFO order [1 2 3], got %v", order)
	}
}

func TestAccountLocksAreIndependentPerAccount(t *testing.T) {
	locks := newAccountLocks()
	ctx := context.Background()

	releaseA, err := locks.acquire(ctx, 1)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB, err := locks.acquire(ctx, 2)
		if err != nil {
			t.Errorf("acquire failed: %v", err)
		} else {
			releaseB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock for a different account should not block")
	}
}

func TestAcquireHonorsContextCancellation(t *testing.T) {
	locks := newAccountLocks()

	release, err := locks.acquire(context.Background(), 1)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := locks.acquire(ctx, 1); err == nil {
		t.Fatal("expected canceled acquire to fail")
	}

	// The canceled waiter must not wedge the chain for later arrivals.
	release()
	done := make(chan struct{})
	go func() {
		next, err := locks.acquire(context.Background(), 1)
		if err != nil {
			t.Errorf("acquire failed: %v", err)
		} else {
			next()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("chain did not recover after canceled waiter")
	}
}
