package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/nvraman/suraksha/core"
)

// DefaultPollInterval bounds staleness when a change signal is lost.
const DefaultPollInterval = 30 * time.Second

// Source establishes collection subscriptions. Each Watch holds one
// pub/sub subscription and re-reads the collection through the lister
// whenever a change signal or the poll ticker fires.
type Source struct {
	client       *redis.Client
	lister       core.CollectionLister
	logger       *zap.Logger
	pollInterval time.Duration
}

var _ core.CollectionSource = (*Source)(nil)

func NewSource(client *redis.Client, lister core.CollectionLister, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		client:       client,
		lister:       lister,
		logger:       logger,
		pollInterval: DefaultPollInterval,
	}
}

// WithPollInterval overrides the fallback re-read interval.
func (s *Source) WithPollInterval(d time.Duration) *Source {
	s.pollInterval = d
	return s
}

// Watch subscribes to a collection. Establishment is synchronous: the
// pub/sub subscription and the initial read both succeed before any
// channel is handed out, so a failed Watch occupies nothing.
func (s *Source) Watch(ctx context.Context, collection string) (<-chan core.Snapshot, error) {
	pubsub := s.client.Subscribe(ctx, changeChannelPrefix+collection)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	initial, err := s.snapshot(ctx, collection)
	if err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan core.Snapshot)
	go s.pump(ctx, collection, pubsub, initial, out)
	return out, nil
}

func (s *Source) snapshot(ctx context.Context, collection string) (core.Snapshot, error) {
	docs, err := s.lister.ListCollection(ctx, collection)
	if err != nil {
		return core.Snapshot{}, err
	}
	return core.Snapshot{
		Collection: collection,
		Docs:       docs,
		ServerTime: time.Now(),
	}, nil
}

func (s *Source) pump(ctx context.Context, collection string, pubsub *redis.PubSub, initial core.Snapshot, out chan<- core.Snapshot) {
	defer pubsub.Close()
	defer close(out)

	select {
	case out <- initial:
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	signals := pubsub.Channel()
	for {
		select {
		case _, ok := <-signals:
			if !ok {
				return
			}
		case <-ticker.C:
		case <-ctx.Done():
			return
		}

		snap, err := s.snapshot(ctx, collection)
		if err != nil {
			// Keep the subscription; the ticker retries. The consumer's
			// last delivered view stays valid until a read succeeds.
			s.logger.Warn("collection re-read failed",
				zap.String("collection", collection),
				zap.Error(err),
			)
			continue
		}

		select {
		case out <- snap:
		case <-ctx.Done():
			return
		}
	}
}
