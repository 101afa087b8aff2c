package geo

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nvraman/suraksha/core"
)

// BoundedLocator wraps a position provider with the two bounds the
// submission flow needs: a hard timeout on acquisition and reuse of a
// recent cached fix. A cached fix inside MaxCachedAge short-circuits the
// provider entirely.
type BoundedLocator struct {
	provider core.Locator

	mu       sync.Mutex
	lastFix  *core.Location
	lastTime time.Time
}

var _ core.Locator = (*BoundedLocator)(nil)

func NewBoundedLocator(provider core.Locator) *BoundedLocator {
	return &BoundedLocator{provider: provider}
}

func (l *BoundedLocator) Locate(ctx context.Context, opts core.LocateOptions) (*core.Location, error) {
	l.mu.Lock()
	if l.lastFix != nil && opts.MaxCachedAge > 0 && time.Since(l.lastTime) <= opts.MaxCachedAge {
		fix := l.lastFix
		l.mu.Unlock()
		return fix, nil
	}
	l.mu.Unlock()

	if opts.Timeout <= 0 {
		opts.Timeout = core.DefaultLocateOptions().Timeout
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	type result struct {
		fix *core.Location
		err error
	}

	// Buffered so a late provider return does not leak the goroutine.
	ch := make(chan result, 1)
	go func() {
		fix, err := l.provider.Locate(ctx, opts)
		ch <- result{fix, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		l.mu.Lock()
		l.lastFix = res.fix
		l.lastTime = time.Now()
		l.mu.Unlock()
		return res.fix, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, core.ErrLocationTimeout
		}
		return nil, ctx.Err()
	}
}

// StaticLocator always reports one fixed position. Useful for kiosks and
// fixed help points where the host, not the user, supplies coordinates.
type StaticLocator struct {
	Fix core.Location
}

var _ core.Locator = (*StaticLocator)(nil)

func (s *StaticLocator) Locate(ctx context.Context, opts core.LocateOptions) (*core.Location, error) {
	fix := s.Fix
	return &fix, nil
}

// Unavailable reports every acquisition as denied. It is the default when
// no locator is configured, so submissions proceed location-less.
type Unavailable struct{}

var _ core.Locator = (*Unavailable)(nil)

func (Unavailable) Locate(ctx context.Context, opts core.LocateOptions) (*core.Location, error) {
	return nil, core.ErrLocationDenied
}
