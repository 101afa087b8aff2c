package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nvraman/suraksha/core"
)

// ActivationState is the local state of the submission workflow between
// user action and write completion.
type ActivationState int

const (
	ActivationIdle ActivationState = iota
	ActivationActivating
	ActivationActivated
)

func (s ActivationState) String() string {
	switch s {
	case ActivationIdle:
		return "idle"
	case ActivationActivating:
		return "activating"
	case ActivationActivated:
		return "activated"
	default:
		return "unknown"
	}
}

// IncidentSubmitter converts a user action into exactly one incident
// write. Geolocation and the network write are the unreliable steps; every
// failure is classified and rolls the activation state back to idle. No
// idempotency key is attached - two rapid activations produce two distinct
// records, a deliberate trade-off for a low-frequency user action.
type IncidentSubmitter struct {
	incidents core.IncidentStore
	locator   core.Locator
	dialer    core.Dialer
	logger    *zap.Logger

	emergencyNumber string
	dialDelay       time.Duration
	locateOpts      core.LocateOptions

	mu        sync.Mutex
	state     ActivationState
	location  *core.Location
	dialTimer *time.Timer
}

func NewIncidentSubmitter(incidents core.IncidentStore, locator core.Locator, dialer core.Dialer, logger *zap.Logger) *IncidentSubmitter {
	if locator == nil {
		locator = noLocator{}
	}
	if dialer == nil {
		dialer = noDialer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncidentSubmitter{
		incidents:       incidents,
		locator:         locator,
		dialer:          dialer,
		logger:          logger,
		emergencyNumber: core.DefaultEmergencyNumber,
		dialDelay:       core.DefaultDialDelay,
		locateOpts:      core.DefaultLocateOptions(),
	}
}

// SetEmergencyCall overrides the post-activation call affordance.
func (s *IncidentSubmitter) SetEmergencyCall(number string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if number != "" {
		s.emergencyNumber = number
	}
	if delay > 0 {
		s.dialDelay = delay
	}
}

// State returns the current activation state.
func (s *IncidentSubmitter) State() ActivationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Location returns the fix attached to the last successful activation, or
// nil if none was acquired.
func (s *IncidentSubmitter) Location() *core.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location
}

// Activate runs the submission workflow on behalf of the resolved profile:
// precondition check, bounded geolocation, one incident write, then the
// activated state plus a delayed best-effort emergency call for SOS kinds.
// A missing fix never blocks the write - a location-less alert is still
// more useful than none. Any failure rolls back to idle and surfaces a
// classified error.
func (s *IncidentSubmitter) Activate(ctx context.Context, profile *core.UserProfile, kind core.IncidentKind, severity core.Severity) (*core.IncidentRecord, error) {
	// Precondition: a resolved identity, before any side effect.
	if profile == nil || profile.ID == "" {
		return nil, core.ErrUnauthenticated
	}

	s.mu.Lock()
	s.state = ActivationActivating
	s.mu.Unlock()

	location, err := s.locator.Locate(ctx, s.locateOpts)
	if err != nil {
		s.logger.Warn("proceeding without location fix",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		location = nil
	}

	rec := s.buildRecord(profile, kind, severity, location)

	if err := s.incidents.CreateIncident(ctx, rec); err != nil {
		s.rollback()
		classified := core.ClassifySubmitError(err)
		s.logger.Error("incident write failed",
			zap.String("kind", string(kind)),
			zap.String("submitter_id", profile.ID),
			zap.Error(err),
		)
		return nil, classified
	}

	s.mu.Lock()
	s.state = ActivationActivated
	s.location = location
	if kind == core.KindSOS {
		s.scheduleDialLocked()
	}
	s.mu.Unlock()

	s.logger.Info("incident submitted",
		zap.String("incident_id", rec.ID),
		zap.String("kind", string(kind)),
		zap.String("severity", string(rec.Severity)),
		zap.Bool("has_location", location != nil),
	)
	return rec, nil
}

// Cancel returns the workflow to idle and stops a not-yet-fired emergency
// call. The written record, if any, is untouched - only administrators
// mutate incidents after creation.
func (s *IncidentSubmitter) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollbackLocked()
}

func (s *IncidentSubmitter) rollback() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollbackLocked()
}

func (s *IncidentSubmitter) rollbackLocked() {
	if s.dialTimer != nil {
		s.dialTimer.Stop()
		s.dialTimer = nil
	}
	s.state = ActivationIdle
	s.location = nil
}

// scheduleDialLocked arms the automatic emergency call. A UX affordance,
// not a reliability mechanism: it fires once, does not retry, and does not
// confirm the call connected.
func (s *IncidentSubmitter) scheduleDialLocked() {
	if s.dialTimer != nil {
		s.dialTimer.Stop()
	}
	number := s.emergencyNumber
	s.dialTimer = time.AfterFunc(s.dialDelay, func() {
		if err := s.dialer.Dial(number); err != nil {
			s.logger.Warn("emergency dial failed", zap.Error(err))
		}
	})
}

func (s *IncidentSubmitter) buildRecord(profile *core.UserProfile, kind core.IncidentKind, severity core.Severity, location *core.Location) *core.IncidentRecord {
	name := profile.DisplayName
	if name == "" {
		name = profile.Email
	}
	if name == "" {
		name = "Unknown User"
	}

	contact := "Not provided"
	if profile.PhoneNumber != nil && *profile.PhoneNumber != "" {
		contact = *profile.PhoneNumber
	}

	status := core.StatusActive
	if kind == core.KindHelpRequest {
		status = core.StatusPending
	}

	if severity == "" {
		severity = core.SeverityMedium
		if kind == core.KindSOS {
			severity = core.SeverityCritical
		}
	}

	// ID and SubmittedAt are assigned by the store.
	return &core.IncidentRecord{
		SubmitterID:   profile.ID,
		SubmitterName: name,
		ContactInfo:   contact,
		Location:      location,
		Status:        status,
		Severity:      severity,
		Kind:          kind,
	}
}

type noLocator struct{}

func (noLocator) Locate(ctx context.Context, opts core.LocateOptions) (*core.Location, error) {
	return nil, core.ErrLocationDenied
}

type noDialer struct{}

func (noDialer) Dial(number string) error { return nil }
