package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nvraman/suraksha/core"
)

func resolvedProfile() *core.UserProfile {
	phone := "+91-98765-43210"
	return &core.UserProfile{
		ID:          "pilgrim-1",
		Email:       "pilgrim@example.com",
		DisplayName: "Asha Devi",
		PhoneNumber: &phone,
		Role:        core.RoleUser,
		CreatedAt:   time.Now(),
	}
}

// Requirement: an unauthenticated submission is rejected before any side
// effect and never leaves idle.
func TestActivate_UnauthenticatedRejectedBeforeSideEffects(t *testing.T) {
	tests := []struct {
		name    string
		profile *core.UserProfile
	}{
		{name: "nil profile", profile: nil},
		{name: "empty id", profile: &core.UserProfile{Email: "x@example.com"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			store := NewFakeIncidentStore()
			locator := NewFakeLocator(&core.Location{Lat: 1, Lng: 2}, nil)
			submitter := NewIncidentSubmitter(store, locator, nil, nil)

			// Act
			_, err := submitter.Activate(context.Background(), test.profile, core.KindSOS, core.SeverityCritical)

			// Assert
			if !errors.Is(err, core.ErrUnauthenticated) {
				t.Fatalf("Activate() error = %v, want ErrUnauthenticated", err)
			}
			if len(store.All()) != 0 {
				t.Error("incident written despite missing identity")
			}
			if locator.Calls() != 0 {
				t.Error("geolocation attempted despite missing identity")
			}
			if submitter.State() != ActivationIdle {
				t.Errorf("state = %v, want idle", submitter.State())
			}
		})
	}
}

func TestActivate_SOSWritesRecordAndActivates(t *testing.T) {
	// Arrange
	store := NewFakeIncidentStore()
	locator := NewFakeLocator(&core.Location{Lat: 29.9457, Lng: 78.1642}, nil)
	submitter := NewIncidentSubmitter(store, locator, nil, nil)

	// Act
	rec, err := submitter.Activate(context.Background(), resolvedProfile(), core.KindSOS, core.SeverityCritical)

	// Assert
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if rec.ID == "" {
		t.Error("record id not assigned")
	}
	if rec.SubmitterID != "pilgrim-1" {
		t.Errorf("SubmitterID = %q, want pilgrim-1", rec.SubmitterID)
	}
	if rec.SubmitterName != "Asha Devi" {
		t.Errorf("SubmitterName = %q, want display name", rec.SubmitterName)
	}
	if rec.Status != core.StatusActive {
		t.Errorf("Status = %q, want active", rec.Status)
	}
	if rec.Severity != core.SeverityCritical {
		t.Errorf("Severity = %q, want critical", rec.Severity)
	}
	if rec.Location == nil || rec.Location.Lat != 29.9457 {
		t.Errorf("Location = %+v, want acquired fix", rec.Location)
	}
	if submitter.State() != ActivationActivated {
		t.Errorf("state = %v, want activated", submitter.State())
	}
}

// Scenario: geolocation times out - the record is still written, with a
// nil location, and activation completes.
func TestActivate_LocationTimeoutStillWrites(t *testing.T) {
	store := NewFakeIncidentStore()
	locator := NewFakeLocator(nil, core.ErrLocationTimeout)
	submitter := NewIncidentSubmitter(store, locator, nil, nil)

	rec, err := submitter.Activate(context.Background(), resolvedProfile(), core.KindSOS, core.SeverityCritical)
	if err != nil {
		t.Fatalf("Activate() error = %v, location failure must be non-fatal", err)
	}
	if rec.Location != nil {
		t.Errorf("Location = %+v, want nil", rec.Location)
	}
	if submitter.State() != ActivationActivated {
		t.Errorf("state = %v, want activated", submitter.State())
	}
}

// Requirement: write failures are classified and roll the state back to
// idle - the workflow is never stuck in activating.
func TestActivate_WriteFailureRollsBackAndClassifies(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		wantErr  error
	}{
		{name: "permission denied", storeErr: core.ErrPermissionDenied, wantErr: core.ErrPermissionDenied},
		{name: "unavailable", storeErr: core.ErrUnavailable, wantErr: core.ErrUnavailable},
		{name: "unclassified maps to unavailable", storeErr: errors.New("socket closed"), wantErr: core.ErrUnavailable},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := NewFakeIncidentStore()
			store.createErr = test.storeErr
			submitter := NewIncidentSubmitter(store, NewFakeLocator(nil, core.ErrLocationDenied), nil, nil)

			_, err := submitter.Activate(context.Background(), resolvedProfile(), core.KindSOS, "")

			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Activate() error = %v, want %v", err, test.wantErr)
			}
			if submitter.State() != ActivationIdle {
				t.Errorf("state = %v, want idle after failure", submitter.State())
			}
		})
	}
}

// Requirement: submissions carry no idempotency key - two activations in
// one session write two distinct records for the same submitter.
func TestActivate_TwoSubmissionsTwoDistinctRecords(t *testing.T) {
	store := NewFakeIncidentStore()
	submitter := NewIncidentSubmitter(store, NewFakeLocator(&core.Location{Lat: 1, Lng: 2}, nil), nil, nil)
	profile := resolvedProfile()

	first, err := submitter.Activate(context.Background(), profile, core.KindSOS, core.SeverityCritical)
	if err != nil {
		t.Fatalf("first Activate() error = %v", err)
	}
	second, err := submitter.Activate(context.Background(), profile, core.KindSOS, core.SeverityCritical)
	if err != nil {
		t.Fatalf("second Activate() error = %v", err)
	}

	if first.ID == second.ID {
		t.Error("two submissions share an incident id")
	}
	for _, rec := range store.All() {
		if rec.SubmitterID != profile.ID {
			t.Errorf("record %s has SubmitterID %q, want %q", rec.ID, rec.SubmitterID, profile.ID)
		}
	}
	if len(store.All()) != 2 {
		t.Errorf("store holds %d records, want 2", len(store.All()))
	}
}

func TestActivate_SOSDialsEmergencyNumberAfterDelay(t *testing.T) {
	store := NewFakeIncidentStore()
	dialer := NewFakeDialer()
	submitter := NewIncidentSubmitter(store, nil, dialer, nil)
	submitter.SetEmergencyCall("+911234567890", 20*time.Millisecond)

	if _, err := submitter.Activate(context.Background(), resolvedProfile(), core.KindSOS, core.SeverityCritical); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	if len(dialer.Dialed()) != 0 {
		t.Error("dial fired before its delay")
	}

	deadline := time.Now().Add(time.Second)
	for len(dialer.Dialed()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("emergency dial never fired")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if dialer.Dialed()[0] != "+911234567890" {
		t.Errorf("dialed %q, want the emergency number", dialer.Dialed()[0])
	}
}

func TestCancel_ReturnsToIdleAndStopsPendingDial(t *testing.T) {
	store := NewFakeIncidentStore()
	dialer := NewFakeDialer()
	submitter := NewIncidentSubmitter(store, nil, dialer, nil)
	submitter.SetEmergencyCall("+911234567890", 50*time.Millisecond)

	if _, err := submitter.Activate(context.Background(), resolvedProfile(), core.KindSOS, core.SeverityCritical); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	submitter.Cancel()

	if submitter.State() != ActivationIdle {
		t.Errorf("state = %v, want idle after cancel", submitter.State())
	}
	if submitter.Location() != nil {
		t.Error("location survived cancel")
	}

	time.Sleep(120 * time.Millisecond)
	if len(dialer.Dialed()) != 0 {
		t.Error("dial fired despite cancel")
	}
}

func TestActivate_HelpRequestDefaults(t *testing.T) {
	store := NewFakeIncidentStore()
	submitter := NewIncidentSubmitter(store, nil, nil, nil)

	rec, err := submitter.Activate(context.Background(), resolvedProfile(), core.KindHelpRequest, "")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if rec.Status != core.StatusPending {
		t.Errorf("Status = %q, want pending", rec.Status)
	}
	if rec.Severity != core.SeverityMedium {
		t.Errorf("Severity = %q, want medium", rec.Severity)
	}
	if rec.Kind != core.KindHelpRequest {
		t.Errorf("Kind = %q, want help_request", rec.Kind)
	}
}
