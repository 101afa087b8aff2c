// Package suraksha is the core of the pilgrim safety dashboard backend:
// tiered session-identity resolution, live collection views, and the
// SOS / help-request submission workflow. Storage, transport, and the
// live source plug in through the ports in core; the adapters package
// provides PostgreSQL, Redis, and Fiber implementations.
package suraksha

import (
	"context"

	"go.uber.org/zap"

	"github.com/nvraman/suraksha/core"
	"github.com/nvraman/suraksha/pkg/cache"
	"github.com/nvraman/suraksha/pkg/crypto"
	"github.com/nvraman/suraksha/services"
)

// interfaces
type (
	ProfileStore     = core.ProfileStore
	IncidentStore    = core.IncidentStore
	AccountStore     = core.AccountStore
	ProfileCache     = core.ProfileCache
	CollectionSource = core.CollectionSource
	CollectionLister = core.CollectionLister
	ChangePublisher  = core.ChangePublisher
	Locator          = core.Locator
	Dialer           = core.Dialer
	AuthBackend      = core.AuthBackend

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	Config        = core.Config
	SessionConfig = core.SessionConfig
	CacheConfig   = core.CacheConfig
	CacheStats    = core.CacheStats

	Principal      = core.Principal
	UserProfile    = core.UserProfile
	IncidentRecord = core.IncidentRecord
	Location       = core.Location
	Document       = core.Document
	Snapshot       = core.Snapshot
	Account        = core.Account
	RegisterInput  = core.RegisterInput
	LoginInput     = core.LoginInput

	Session      = services.Session
	Subscription = services.Subscription
	StartResult  = services.StartResult
)

type (
	Role           = core.Role
	IncidentKind   = core.IncidentKind
	IncidentStatus = core.IncidentStatus
	Severity       = core.Severity
)

const (
	RoleAdmin = core.RoleAdmin
	RoleUser  = core.RoleUser

	KindSOS         = core.KindSOS
	KindHelpRequest = core.KindHelpRequest

	StatusActive   = core.StatusActive
	StatusPending  = core.StatusPending
	StatusResolved = core.StatusResolved

	CollectionSOSAlerts    = core.CollectionSOSAlerts
	CollectionHelpRequests = core.CollectionHelpRequests
	CollectionUsers        = core.CollectionUsers
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache     = cache.NewInMemoryCache
	NewArgon2            = crypto.NewArgon2
	DefaultSessionConfig = core.DefaultSessionConfig

	PendingCount        = services.PendingCount
	UnresolvedAlerts    = services.UnresolvedAlerts
	ActiveIncidents     = services.ActiveIncidents
	RegisteredUserCount = services.RegisteredUserCount
)

var (
	ErrUnauthenticated  = core.ErrUnauthenticated
	ErrPermissionDenied = core.ErrPermissionDenied
	ErrUnavailable      = core.ErrUnavailable
	ErrLocationDenied   = core.ErrLocationDenied
	ErrLocationTimeout  = core.ErrLocationTimeout
)

var (
	ErrProfileNotFound  = core.ErrProfileNotFound
	ErrProfileExists    = core.ErrProfileExists
	ErrIncidentNotFound = core.ErrIncidentNotFound
)

var (
	ErrAccountExists      = core.ErrAccountExists
	ErrAccountNotFound    = core.ErrAccountNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
)

var (
	ErrMissingAuthHeader = core.ErrMissingAuthHeader
	ErrInvalidToken      = core.ErrInvalidToken
	ErrSessionNotFound   = core.ErrSessionNotFound
	ErrSessionExpired    = core.ErrSessionExpired
)

var (
	ErrAlreadyObserved = core.ErrAlreadyObserved
	ErrInvalidStatus   = core.ErrInvalidStatus
)

// Suraksha is the assembled core: the auth backend, the session
// registry, and the admin surface over incidents.
type Suraksha struct {
	Auth     AuthBackend
	Sessions *services.Registry

	profiles  core.ProfileStore
	incidents core.IncidentStore
	cache     core.ProfileCache
	logger    *zap.Logger
}

func New(config Config) (*Suraksha, error) {
	if config.Profiles == nil {
		return nil, core.ErrProfileStoreRequired
	}
	if config.Incidents == nil {
		return nil, core.ErrIncidentStoreRequired
	}
	if config.Accounts == nil {
		return nil, core.ErrAccountStoreRequired
	}
	if config.Source == nil {
		return nil, core.ErrSourceRequired
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	profileCache := config.Cache
	if profileCache == nil {
		profileCache = cache.NewInMemoryCache(config.CacheConfig)
	}

	sessionConfig := config.SessionConfig
	if sessionConfig == nil {
		def := core.DefaultSessionConfig()
		sessionConfig = &def
	}

	emergencyNumber := config.EmergencyNumber
	if emergencyNumber == "" {
		emergencyNumber = core.DefaultEmergencyNumber
	}

	dialDelay := config.DialDelay
	if dialDelay == 0 {
		dialDelay = core.DefaultDialDelay
	}

	registry := services.NewRegistry(*sessionConfig, services.RegistryDeps{
		Profiles:        config.Profiles,
		Cache:           profileCache,
		Source:          config.Source,
		Incidents:       config.Incidents,
		Locator:         config.Locator,
		Dialer:          config.Dialer,
		Logger:          logger,
		EmergencyNumber: emergencyNumber,
		DialDelay:       dialDelay,
	})

	return &Suraksha{
		Auth:      services.NewAuthService(config.Accounts, crypto.NewArgon2(), logger),
		Sessions:  registry,
		profiles:  config.Profiles,
		incidents: config.Incidents,
		cache:     profileCache,
		logger:    logger,
	}, nil
}

// Register creates an account, writes the caller-chosen profile, and
// starts a session. The profile write happens before session creation so
// resolution finds an authoritative record instead of synthesizing a
// default; if the remote write fails the profile is parked in the cache
// tier and registration still succeeds.
func (s *Suraksha) Register(ctx context.Context, input RegisterInput) (*StartResult, error) {
	principal, err := s.Auth.Register(ctx, input)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = core.RoleUser
	}
	profile := &core.UserProfile{
		ID:          principal.ID,
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
		PhoneNumber: principal.PhoneNumber,
		Role:        role,
	}
	if err := s.profiles.PutProfile(ctx, profile); err != nil {
		s.logger.Warn("profile write failed during registration, caching locally",
			zap.String("principal_id", principal.ID),
			zap.Error(err),
		)
		_ = s.cache.Set(profile.ID, profile)
	}

	return s.Sessions.Create(ctx, principal)
}

// Login confirms credentials and starts a session. The returned session
// always carries a resolved profile.
func (s *Suraksha) Login(ctx context.Context, email, password string) (*StartResult, error) {
	principal, err := s.Auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.Sessions.Create(ctx, principal)
}

// Logout destroys the session for a raw token.
func (s *Suraksha) Logout(token string) error {
	return s.Sessions.Destroy(token)
}

// SessionFor returns the live session for a raw token.
func (s *Suraksha) SessionFor(token string) (*Session, error) {
	return s.Sessions.Verify(token)
}

// ResolveIncident is the administrator path for closing out an incident.
// The caller's resolved role gates it; a non-admin is rejected before
// the store is touched.
func (s *Suraksha) ResolveIncident(ctx context.Context, session *Session, incidentID string, status IncidentStatus) error {
	profile := session.Profile()
	if profile == nil {
		return core.ErrUnauthenticated
	}
	if profile.Role != core.RoleAdmin {
		return core.ErrPermissionDenied
	}
	switch status {
	case core.StatusActive, core.StatusPending, core.StatusResolved:
	default:
		return core.ErrInvalidStatus
	}
	return s.incidents.UpdateIncidentStatus(ctx, incidentID, status)
}

// Incidents lists incidents of one kind. Admin-only, like ResolveIncident.
func (s *Suraksha) Incidents(ctx context.Context, session *Session, kind IncidentKind) ([]*IncidentRecord, error) {
	profile := session.Profile()
	if profile == nil {
		return nil, core.ErrUnauthenticated
	}
	if profile.Role != core.RoleAdmin {
		return nil, core.ErrPermissionDenied
	}
	return s.incidents.ListIncidents(ctx, kind)
}

// CacheStats reports local-tier cache counters when the configured cache
// tracks them.
func (s *Suraksha) CacheStats() (CacheStats, bool) {
	if sc, ok := s.cache.(core.CacheWithStats); ok {
		return sc.Stats(), true
	}
	return CacheStats{}, false
}
