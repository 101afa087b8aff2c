// Package redis implements the live-view collection source on Redis
// pub/sub. Writers publish a change signal per collection; watchers
// re-read the authoritative store and emit a full snapshot, so a dropped
// signal degrades to the polling interval instead of a stale view.
package redis

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/nvraman/suraksha/core"
)

const changeChannelPrefix = "suraksha:changes:"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}

// Publisher fans out collection change signals over Redis pub/sub.
type Publisher struct {
	client *redis.Client
}

var _ core.ChangePublisher = (*Publisher)(nil)

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishChange(ctx context.Context, collection string) error {
	return p.client.Publish(ctx, changeChannelPrefix+collection, collection).Err()
}
