package core

import (
	"time"

	"go.uber.org/zap"
)

// Config wires the external collaborators into the core. Stores and the
// collection source are required; everything else has a default.
type Config struct {
	Profiles  ProfileStore
	Incidents IncidentStore
	Accounts  AccountStore
	Source    CollectionSource

	// Optional config
	Cache           ProfileCache // local fallback tier; in-memory when nil
	Locator         Locator      // position fixes; submissions proceed without one
	Dialer          Dialer       // emergency-call affordance; no-op when nil
	Logger          *zap.Logger
	SessionConfig   *SessionConfig
	CacheConfig     CacheConfig
	EmergencyNumber string        // dialed after a successful SOS
	DialDelay       time.Duration // delay before the automatic call
}

// SessionConfig bounds the lifetime of an authenticated session.
type SessionConfig struct {
	MaxAge time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge: 24 * time.Hour,
	}
}

// DefaultLocateOptions bounds geolocation during submission: a 10s hard
// timeout, cached fixes accepted up to 60s old.
func DefaultLocateOptions() LocateOptions {
	return LocateOptions{
		HighAccuracy: true,
		Timeout:      10 * time.Second,
		MaxCachedAge: 60 * time.Second,
	}
}

const (
	// DefaultEmergencyNumber is dialed by the post-SOS affordance.
	DefaultEmergencyNumber = "+911234567890"

	// DefaultDialDelay is the pause between a confirmed SOS write and the
	// automatic emergency call.
	DefaultDialDelay = 2 * time.Second
)
