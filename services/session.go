package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nvraman/suraksha/core"
	"github.com/nvraman/suraksha/pkg/crypto"
)

// Session is the explicitly owned context of one authenticated session:
// its resolver, its live subscriptions, and its submission workflow. It
// replaces any ambient global auth state - dashboards receive a Session
// and must call Teardown when they are done with it.
type Session struct {
	ID        string
	Principal *core.Principal
	ExpiresAt time.Time
	CreatedAt time.Time

	resolver  *SessionResolver
	mux       *LiveViewMultiplexer
	submitter *IncidentSubmitter

	// ctx bounds every subscription opened through this session; teardown
	// cancels it so no read outlives the principal.
	ctx    context.Context
	cancel context.CancelFunc

	tokenHash string
}

// Profile returns the session's resolved profile, nil before resolution.
func (s *Session) Profile() *core.UserProfile {
	return s.resolver.Profile()
}

// Resolver exposes the session's resolution state machine.
func (s *Session) Resolver() *SessionResolver {
	return s.resolver
}

// Submitter exposes the session's incident workflow state machine.
func (s *Session) Submitter() *IncidentSubmitter {
	return s.submitter
}

// Observe opens the session's single live subscription for a collection.
// The subscription is bounded by the session lifetime.
func (s *Session) Observe(collection string) (*Subscription, error) {
	if s.resolver.Profile() == nil {
		return nil, core.ErrUnauthenticated
	}
	return s.mux.Observe(s.ctx, collection)
}

// Observation returns the live subscription for a collection, if any.
func (s *Session) Observation(collection string) (*Subscription, bool) {
	return s.mux.Get(collection)
}

// SubmitIncident runs the submission workflow with this session's profile.
func (s *Session) SubmitIncident(ctx context.Context, kind core.IncidentKind, severity core.Severity) (*core.IncidentRecord, error) {
	return s.submitter.Activate(ctx, s.resolver.Profile(), kind, severity)
}

// CancelSubmission returns the submission workflow to idle.
func (s *Session) CancelSubmission() {
	s.submitter.Cancel()
}

// Teardown cancels all live subscriptions, then signs the resolver out.
// Safe to call more than once.
func (s *Session) Teardown() {
	s.mux.CancelAll()
	s.cancel()
	s.submitter.Cancel()
	s.resolver.SignOut()
}

// Registry owns the process-local map from session tokens to sessions.
// Session records are not persisted: a session is client-side state and
// dies with the process, unlike the profiles and incidents it touches.
type Registry struct {
	config    core.SessionConfig
	profiles  core.ProfileStore
	cache     core.ProfileCache
	source    core.CollectionSource
	incidents core.IncidentStore
	locator   core.Locator
	dialer    core.Dialer
	logger    *zap.Logger

	emergencyNumber string
	dialDelay       time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session // key: token hash
}

// RegistryDeps carries the collaborators each new session is wired with.
type RegistryDeps struct {
	Profiles  core.ProfileStore
	Cache     core.ProfileCache
	Source    core.CollectionSource
	Incidents core.IncidentStore
	Locator   core.Locator
	Dialer    core.Dialer
	Logger    *zap.Logger

	EmergencyNumber string
	DialDelay       time.Duration
}

func NewRegistry(config core.SessionConfig, deps RegistryDeps) *Registry {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		config:          config,
		profiles:        deps.Profiles,
		cache:           deps.Cache,
		source:          deps.Source,
		incidents:       deps.Incidents,
		locator:         deps.Locator,
		dialer:          deps.Dialer,
		logger:          logger,
		emergencyNumber: deps.EmergencyNumber,
		dialDelay:       deps.DialDelay,
		sessions:        make(map[string]*Session),
	}
}

// StartResult contains a freshly started session and its raw token.
type StartResult struct {
	Session *Session
	Token   string // The raw token (not the hash)
}

// Create starts a session for a confirmed principal and runs resolution
// before returning, so the caller always receives a session with a
// non-nil profile.
func (r *Registry) Create(ctx context.Context, principal *core.Principal) (*StartResult, error) {
	pair, err := crypto.GenerateHashedToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sctx, cancel := context.WithCancel(context.Background())
	session := &Session{
		ID:        uuid.NewString(),
		Principal: principal,
		ExpiresAt: now.Add(r.config.MaxAge),
		CreatedAt: now,
		resolver:  NewSessionResolver(r.profiles, r.cache, r.logger),
		mux:       NewLiveViewMultiplexer(r.source, r.logger),
		submitter: NewIncidentSubmitter(r.incidents, r.locator, r.dialer, r.logger),
		ctx:       sctx,
		cancel:    cancel,
		tokenHash: pair.Hash,
	}
	session.submitter.SetEmergencyCall(r.emergencyNumber, r.dialDelay)

	// The auth confirmation is the single trigger for resolution.
	session.resolver.Resolve(ctx, principal)

	r.mu.Lock()
	r.sessions[pair.Hash] = session
	r.mu.Unlock()

	r.logger.Debug("session started",
		zap.String("session_id", session.ID),
		zap.String("principal_id", principal.ID),
	)
	return &StartResult{Session: session, Token: pair.Token}, nil
}

// Verify returns the live session for a raw token.
func (r *Registry) Verify(token string) (*Session, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	tokenHash := crypto.HashToken(token)

	r.mu.RLock()
	session, ok := r.sessions[tokenHash]
	r.mu.RUnlock()

	if !ok {
		return nil, core.ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		r.destroyByHash(tokenHash)
		return nil, core.ErrSessionExpired
	}

	return session, nil
}

// Destroy tears down and forgets the session for a raw token. The
// teardown runs before the registry entry disappears, so subscriptions
// are cancelled while the principal is still known.
func (r *Registry) Destroy(token string) error {
	if token == "" {
		return core.ErrInvalidToken
	}
	if !r.destroyByHash(crypto.HashToken(token)) {
		return core.ErrSessionNotFound
	}
	return nil
}

// DestroyExpired drops every session past its expiry. Returns the count.
func (r *Registry) DestroyExpired() int {
	r.mu.Lock()
	var expired []*Session
	now := time.Now()
	for hash, session := range r.sessions {
		if now.After(session.ExpiresAt) {
			expired = append(expired, session)
			delete(r.sessions, hash)
		}
	}
	r.mu.Unlock()

	for _, session := range expired {
		session.Teardown()
	}
	return len(expired)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) destroyByHash(tokenHash string) bool {
	r.mu.Lock()
	session, ok := r.sessions[tokenHash]
	if ok {
		delete(r.sessions, tokenHash)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	session.Teardown()
	r.logger.Debug("session destroyed", zap.String("session_id", session.ID))
	return true
}
