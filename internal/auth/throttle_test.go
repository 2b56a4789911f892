package auth

import (
	"context"
	"testing"
	"time"
)

type fakeAttemptStore struct {
	counts  map[string]int64
	windows map[string]time.Duration
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{
		counts:  make(map[string]int64),
		windows: make(map[string]time.Duration),
	}
}

func (s *fakeAttemptStore) Count(_ context.Context, key string) (int, error) {
	return int(s.counts[key]), nil
}

func (s *fakeAttemptStore) Incr(_ context.Context, key string) (int64, error) {
	s.counts[key]++
	return s.counts[key], nil
}

func (s *fakeAttemptStore) Expire(_ context.Context, key string, window time.Duration) error {
	s.windows[key] = window
	return nil
}

func (s *fakeAttemptStore) Del(_ context.Context, key string) error {
	delete(s.counts, key)
	delete(s.windows, key)
	return nil
}

func TestLoginThrottle_BlocksAfterMaxFailures(t *testing.T) {
	store := newFakeAttemptStore()
	throttle := &LoginThrottle{store: store, maxAttempts: 3, window: time.Minute}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := throttle.RecordFailure(ctx, "a@x.com"); err != nil {
			t.Fatalf("record: %v", err)
		}
		blocked, err := throttle.Blocked(ctx, "a@x.com")
		if err != nil {
			t.Fatalf("blocked: %v", err)
		}
		if blocked {
			t.Fatalf("blocked after %d failures, budget is 3", i+1)
		}
	}

	if err := throttle.RecordFailure(ctx, "a@x.com"); err != nil {
		t.Fatalf("record: %v", err)
	}
	blocked, err := throttle.Blocked(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if !blocked {
		t.Fatalf("expected block after 3 failures")
	}

	// Window TTL is set once, on the first failure.
	if store.windows["login_attempts:a@x.com"] != time.Minute {
		t.Fatalf("expected window on the attempt key, got %v", store.windows)
	}
}

func TestLoginThrottle_ResetUnblocks(t *testing.T) {
	store := newFakeAttemptStore()
	throttle := &LoginThrottle{store: store, maxAttempts: 2, window: time.Minute}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := throttle.RecordFailure(ctx, "a@x.com"); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	blocked, err := throttle.Blocked(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if !blocked {
		t.Fatalf("expected block at the budget")
	}

	if err := throttle.Reset(ctx, "a@x.com"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	blocked, err = throttle.Blocked(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if blocked {
		t.Fatalf("reset must clear the counter")
	}
}

func TestLoginThrottle_CountersArePerEmail(t *testing.T) {
	store := newFakeAttemptStore()
	throttle := &LoginThrottle{store: store, maxAttempts: 1, window: time.Minute}
	ctx := context.Background()

	if err := throttle.RecordFailure(ctx, "a@x.com"); err != nil {
		t.Fatalf("record: %v", err)
	}
	blocked, err := throttle.Blocked(ctx, "b@x.com")
	if err != nil {
		t.Fatalf("blocked: %v", err)
	}
	if blocked {
		t.Fatalf("failures for one email must not block another")
	}
}
