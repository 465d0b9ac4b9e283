package otp

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper periodically removes expired records from a Store. It only bounds
// memory growth from abandoned codes: lazy expiry in ConsumeIfValid already
// guarantees no expired code is ever accepted. It never runs on the request
// path.
type Sweeper struct {
	store    *Store
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewSweeper(store *Store, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine. The loop exits when
// ctx is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.store.Sweep(time.Now()); n > 0 {
					slog.Info("swept expired verification codes",
						"removed", n, "remaining", s.store.Len())
				}
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit. Safe to call
// more than once.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
