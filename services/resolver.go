package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nvraman/suraksha/core"
)

// ResolverState tracks where a session is in its identity lifecycle.
type ResolverState int

const (
	StateSignedOut ResolverState = iota
	StateAuthenticating
	StateProfileLoading
	StateResolved
	StateResolvedDegraded
)

func (s ResolverState) String() string {
	switch s {
	case StateSignedOut:
		return "signed_out"
	case StateAuthenticating:
		return "authenticating"
	case StateProfileLoading:
		return "profile_loading"
	case StateResolved:
		return "resolved"
	case StateResolvedDegraded:
		return "resolved_degraded"
	default:
		return "unknown"
	}
}

// SessionResolver turns a confirmed principal into exactly one role-bearing
// profile for the lifetime of a session, using the cheapest authoritative
// source available: remote store, then local cache, then a synthesized
// default. Resolution never fails - the dashboards' role gating depends on
// always having a profile.
type SessionResolver struct {
	remote core.ProfileStore
	cache  core.ProfileCache // optional, can be nil if the fallback tier is disabled
	logger *zap.Logger

	// mu serializes the auth-confirmation -> resolution sequence; a second
	// Resolve cannot start before the first completes.
	mu      sync.Mutex
	state   ResolverState
	profile *core.UserProfile
}

func NewSessionResolver(remote core.ProfileStore, cache core.ProfileCache, logger *zap.Logger) *SessionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionResolver{
		remote: remote,
		cache:  cache,
		logger: logger,
		state:  StateSignedOut,
	}
}

// BeginAuth marks the credential round-trip in progress.
func (r *SessionResolver) BeginAuth() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateAuthenticating
}

// State returns the current lifecycle state.
func (r *SessionResolver) State() ResolverState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Profile returns the resolved profile, or nil before resolution / after
// sign-out.
func (r *SessionResolver) Profile() *core.UserProfile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profile
}

// Degraded reports whether the resolved profile was confirmed against the
// authoritative remote store.
func (r *SessionResolver) Degraded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == StateResolvedDegraded
}

// Resolve produces the session's profile for a confirmed principal. It
// always terminates in a profile: tier order is remote store (authoritative),
// local cache (degraded but trusted for this session), then a synthesized
// default with role "user". Store errors are absorbed into tier fallback
// and never escape. Calling Resolve again for the same principal returns
// the already-resolved profile without re-running the tiers.
func (r *SessionResolver) Resolve(ctx context.Context, principal *core.Principal) *core.UserProfile {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.profile != nil && r.profile.ID == principal.ID {
		return r.profile
	}

	r.state = StateProfileLoading

	// Tier (a): remote store, authoritative.
	profile, err := r.remote.GetProfile(ctx, principal.ID)
	if err == nil {
		r.logger.Debug("profile resolved from remote store",
			zap.String("principal_id", principal.ID),
			zap.String("role", string(profile.Role)),
		)
		if r.cache != nil {
			_ = r.cache.Set(principal.ID, profile)
		}
		r.profile = profile
		r.state = StateResolved
		return profile
	}
	if !errors.Is(err, core.ErrProfileNotFound) {
		r.logger.Warn("remote profile read failed, trying cache tier",
			zap.String("principal_id", principal.ID),
			zap.Error(err),
		)
	}

	// Tier (b): local cache, non-authoritative but trusted for this session.
	if r.cache != nil {
		if cached, cerr := r.cache.Get(principal.ID); cerr == nil {
			r.logger.Info("profile resolved from local cache",
				zap.String("principal_id", principal.ID),
				zap.String("role", string(cached.Role)),
			)
			r.profile = cached
			r.state = StateResolvedDegraded
			return cached
		}
	}

	// Tier (c): synthesize a degraded default and attempt repair.
	profile = synthesizeProfile(principal)
	r.logger.Info("no profile record in any tier, synthesized default",
		zap.String("principal_id", principal.ID),
	)
	r.writeBack(ctx, profile)

	r.profile = profile
	r.state = StateResolvedDegraded
	return profile
}

// SignOut clears the resolved profile and returns to the signed-out state.
func (r *SessionResolver) SignOut() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profile = nil
	r.state = StateSignedOut
}

// writeBack persists a synthesized profile to both tiers, best effort.
// The remote write is create-if-absent: if an authoritative record exists
// after all (the earlier read may have failed on a transient error), it is
// never overwritten with the default role.
func (r *SessionResolver) writeBack(ctx context.Context, profile *core.UserProfile) {
	if err := r.remote.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, core.ErrProfileExists) {
			r.logger.Info("authoritative record present after read failure, keeping synthesized profile session-local",
				zap.String("principal_id", profile.ID),
			)
		} else {
			r.logger.Warn("could not write back synthesized profile",
				zap.String("principal_id", profile.ID),
				zap.Error(err),
			)
		}
	}
	if r.cache != nil {
		_ = r.cache.Set(profile.ID, profile)
	}
}

func synthesizeProfile(principal *core.Principal) *core.UserProfile {
	displayName := principal.DisplayName
	if displayName == "" {
		displayName = "User"
	}
	return &core.UserProfile{
		ID:          principal.ID,
		Email:       principal.Email,
		DisplayName: displayName,
		PhoneNumber: principal.PhoneNumber,
		Role:        core.RoleUser,
		CreatedAt:   time.Now(),
	}
}
