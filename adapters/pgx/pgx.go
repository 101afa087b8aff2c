// Package pgx backs the profile, account, and incident stores with
// PostgreSQL via pgxpool. It is the authoritative tier: the local cache
// and the live-view layer both defer to what is written here.
package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/nvraman/suraksha/core"
)

type Adapter struct {
	pool      *pgxpool.Pool
	publisher core.ChangePublisher // optional change fan-out, may be nil
	logger    *zap.Logger
}

var (
	_ core.ProfileStore     = (*Adapter)(nil)
	_ core.AccountStore     = (*Adapter)(nil)
	_ core.IncidentStore    = (*Adapter)(nil)
	_ core.CollectionLister = (*Adapter)(nil)
)

func New(pool *pgxpool.Pool, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{pool: pool, logger: logger}
}

// WithPublisher attaches a change publisher so collection watchers learn
// about writes. Publish failures never fail the write itself.
func (a *Adapter) WithPublisher(p core.ChangePublisher) *Adapter {
	a.publisher = p
	return a
}

// notifyChange signals watchers of a collection, best effort.
func (a *Adapter) notifyChange(ctx context.Context, collection string) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.PublishChange(ctx, collection); err != nil {
		a.logger.Warn("change publish failed",
			zap.String("collection", collection),
			zap.Error(err),
		)
	}
}

// PostgreSQL error codes this adapter classifies.
const (
	codeUniqueViolation       = "23505"
	codeInsufficientPrivilege = "42501"
)

// mapError folds driver errors into the core taxonomy. Conflicts keep
// their caller-specific sentinel; everything that looks like a reachability
// problem becomes Unavailable.
func mapError(err error, onConflict error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			if onConflict != nil {
				return onConflict
			}
		case codeInsufficientPrivilege:
			return core.ErrPermissionDenied
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errors.Join(core.ErrUnavailable, err)
	}

	// Anything else from the driver at this point is a connection-level
	// failure (DNS, refused socket, pool shutdown).
	return errors.Join(core.ErrUnavailable, err)
}
