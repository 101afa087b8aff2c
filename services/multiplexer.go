package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nvraman/suraksha/core"
)

// LiveViewMultiplexer maintains a set of independent live subscriptions to
// remote collections and exposes one read-only snapshot stream per
// collection. Streams for different collections evolve independently;
// consumers must render correctly from partially-stale combinations.
type LiveViewMultiplexer struct {
	source core.CollectionSource
	logger *zap.Logger

	mu   sync.Mutex
	subs map[string]*Subscription
}

func NewLiveViewMultiplexer(source core.CollectionSource, logger *zap.Logger) *LiveViewMultiplexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveViewMultiplexer{
		source: source,
		logger: logger,
		subs:   make(map[string]*Subscription),
	}
}

// Subscription is one live view of a collection. Snapshots() yields
// full-collection snapshots until Cancel is called or the owning context
// ends; the channel is then closed. A subscription outliving its consumer
// is a leak - Cancel is the consumer's obligation on unmount.
type Subscription struct {
	collection string
	ch         chan core.Snapshot
	cancel     context.CancelFunc
	once       sync.Once
	mux        *LiveViewMultiplexer
}

// Snapshots returns the stream of full-collection snapshots, in
// non-decreasing server-time order for this collection.
func (s *Subscription) Snapshots() <-chan core.Snapshot {
	return s.ch
}

// Collection returns the observed collection key.
func (s *Subscription) Collection() string {
	return s.collection
}

// Cancel stops the subscription. It is idempotent; after it returns no
// further snapshots are delivered and the stream channel is closed.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
		s.mux.remove(s.collection, s)
	})
}

// Observe establishes the single live subscription for a collection key.
// A second Observe for a key that is still live returns ErrAlreadyObserved;
// the key becomes observable again once the prior subscription is
// cancelled. Establishment errors are surfaced once and not retried -
// reconnection is the consumer's policy.
func (m *LiveViewMultiplexer) Observe(ctx context.Context, collection string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, live := m.subs[collection]; live {
		return nil, core.ErrAlreadyObserved
	}

	wctx, cancel := context.WithCancel(ctx)
	src, err := m.source.Watch(wctx, collection)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch %s: %w", collection, err)
	}

	sub := &Subscription{
		collection: collection,
		ch:         make(chan core.Snapshot),
		cancel:     cancel,
		mux:        m,
	}
	m.subs[collection] = sub

	m.logger.Debug("collection observed", zap.String("collection", collection))
	go sub.pump(wctx, src)

	return sub, nil
}

// Live reports whether a collection currently has a live subscription.
func (m *LiveViewMultiplexer) Live(collection string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, live := m.subs[collection]
	return live
}

// Get returns the live subscription for a collection, if any.
func (m *LiveViewMultiplexer) Get(collection string) (*Subscription, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subs[collection]
	return sub, ok
}

// CancelAll tears down every live subscription. Called on session logout
// so no read outlives the authenticated principal.
func (m *LiveViewMultiplexer) CancelAll() {
	m.mu.Lock()
	subs := make([]*Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

// pump forwards source snapshots to the consumer. Delivery is unbuffered
// and checked against cancellation on both sides, so nothing is handed to
// a consumer after Cancel.
func (s *Subscription) pump(ctx context.Context, src <-chan core.Snapshot) {
	defer close(s.ch)
	for {
		select {
		case snap, ok := <-src:
			if !ok {
				s.mux.remove(s.collection, s)
				return
			}
			select {
			case s.ch <- snap:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// remove detaches a subscription so the key can be observed again. Guarded
// by identity so a replacement subscription is never evicted by a stale
// cancel.
func (m *LiveViewMultiplexer) remove(collection string, sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if current, ok := m.subs[collection]; ok && current == sub {
		delete(m.subs, collection)
		m.logger.Debug("collection released", zap.String("collection", collection))
	}
}
