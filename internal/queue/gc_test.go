package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type stubPurger struct {
	purgeFunc func(ctx context.Context, retention time.Duration) (int, error)
}

func (s *stubPurger) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	if s.purgeFunc != nil {
		return s.purgeFunc(ctx, retention)
	}
	return 0, nil
}

func TestGarbageCollector_NilPurgerIsNoOp(t *testing.T) {
	t.Parallel()
	gc := NewGarbageCollector(nil, time.Minute, 24*time.Hour, nil)
	if err := gc.collect(context.Background()); err != nil {
		t.Errorf("collect with nil purger: %v", err)
	}
}

func TestGarbageCollector_PassesRetention(t *testing.T) {
	t.Parallel()
	var called atomic.Bool
	stub := &stubPurger{
		purgeFunc: func(ctx context.Context, retention time.Duration) (int, error) {
			called.Store(true)
			if retention != 48*time.Hour {
				return 0, errors.New("unexpected retention")
			}
			return 2, nil
		},
	}
	gc := NewGarbageCollector(stub, time.Minute, 48*time.Hour, nil)
	if err := gc.collect(context.Background()); err != nil {
		t.Errorf("collect: %v", err)
	}
	if !called.Load() {
		t.Error("PurgeOlderThan was not called")
	}
}

func TestGarbageCollector_PropagatesPurgeError(t *testing.T) {
	t.Parallel()
	stub := &stubPurger{
		purgeFunc: func(context.Context, time.Duration) (int, error) {
			return 0, errors.New("purge failed")
		},
	}
	gc := NewGarbageCollector(stub, time.Minute, time.Hour, nil)
	if err := gc.collect(context.Background()); err == nil {
		t.Error("expected error from collect")
	}
}

func TestGarbageCollector_StartStopsOnCancel(t *testing.T) {
	t.Parallel()
	stub := &stubPurger{purgeFunc: func(context.Context, time.Duration) (int, error) { return 0, nil }}
	gc := NewGarbageCollector(stub, 24*time.Hour, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := gc.Start(ctx); err == nil {
		t.Error("expected context cancelled error")
	}
}
