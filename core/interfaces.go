package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (remote document store)
// ============================================

// ProfileStore is the remote, authoritative profile tier.
type ProfileStore interface {
	// GetProfile returns ErrProfileNotFound when no record exists.
	GetProfile(ctx context.Context, id string) (*UserProfile, error)

	// CreateProfile writes a profile only if no record exists for its id,
	// returning ErrProfileExists on conflict. Resolution write-back uses
	// this so a synthesized default can never overwrite an authoritative
	// record.
	CreateProfile(ctx context.Context, p *UserProfile) error

	// PutProfile unconditionally writes a profile. Used by registration,
	// where the caller-chosen role is authoritative.
	PutProfile(ctx context.Context, p *UserProfile) error
}

// IncidentStore persists incident records.
type IncidentStore interface {
	// CreateIncident assigns the record id and server timestamp.
	CreateIncident(ctx context.Context, rec *IncidentRecord) error

	ListIncidents(ctx context.Context, kind IncidentKind) ([]*IncidentRecord, error)

	// UpdateIncidentStatus is the administrator resolve path.
	UpdateIncidentStatus(ctx context.Context, id string, status IncidentStatus) error
}

// AccountStore holds credential records for the auth backend.
type AccountStore interface {
	// CreateAccount returns ErrAccountExists when the email is taken.
	CreateAccount(ctx context.Context, a *Account) error

	// GetAccountByEmail returns ErrAccountNotFound when no record exists.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
}

// ============================================
// CACHE PORT (local fallback tier)
// ============================================

// ProfileCache is the local, non-authoritative profile tier. Written and
// read by session resolution only; writes are assumed to always succeed.
type ProfileCache interface {
	Get(id string) (*UserProfile, error)
	Set(id string, p *UserProfile) error
	Delete(id string) error
	Clear() error
}

// CacheWithStats extends ProfileCache with statistics tracking
type CacheWithStats interface {
	ProfileCache
	Stats() CacheStats
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats are simple counters for cache behavior.
// These are intended for diagnostics and monitoring.
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// ============================================
// LIVE VIEW PORTS
// ============================================

// CollectionSource establishes server-side collection subscriptions. The
// returned channel carries full-collection snapshots in non-decreasing
// server-time order and is closed when ctx is cancelled.
type CollectionSource interface {
	Watch(ctx context.Context, collection string) (<-chan Snapshot, error)
}

// CollectionLister reads the full current membership of a collection.
// Sources use it to build snapshots from the authoritative store.
type CollectionLister interface {
	ListCollection(ctx context.Context, collection string) ([]Document, error)
}

// ChangePublisher signals that a collection's membership changed. Stores
// invoke it after writes so watchers re-snapshot; delivery is best-effort.
type ChangePublisher interface {
	PublishChange(ctx context.Context, collection string) error
}

// ============================================
// GEOLOCATION PORT
// ============================================

// LocateOptions bounds a geolocation attempt.
type LocateOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaxCachedAge time.Duration
}

// Locator acquires a position fix. Implementations return
// ErrLocationDenied or ErrLocationTimeout on failure.
type Locator interface {
	Locate(ctx context.Context, opts LocateOptions) (*Location, error)
}

// ============================================
// DIALER PORT (emergency-call affordance)
// ============================================

// Dialer places the best-effort emergency call after a successful SOS.
// It does not retry and does not confirm the call connected.
type Dialer interface {
	Dial(number string) error
}

// ============================================
// AUTH BACKEND PORT
// ============================================

// AuthBackend confirms principals from credentials. Registration only
// issues the principal; profile creation happens in the session layer
// before resolution.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*Principal, error)
	Register(ctx context.Context, input RegisterInput) (*Principal, error)
}

// RegisterInput contains the data needed to register a new account.
type RegisterInput struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName string  `json:"displayName"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Role        Role    `json:"role"`
}

// LoginInput contains the credentials for authentication.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
