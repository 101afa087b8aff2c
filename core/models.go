package core

import "time"

// Role gates access to the administrator surfaces of the dashboards.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Principal is the raw identity confirmed by the auth backend
//
// This is the "claim" - who the auth service says someone is. It never
// carries a role; roles only exist on resolved profiles.
type Principal struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	DisplayName string  `json:"displayName,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

// UserProfile is the resolved, role-bearing identity of a session
//
// This is the "identity" - at most one authoritative profile exists per
// principal id. Role is set once at creation and never changed by a
// fallback path.
type UserProfile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
	PhoneNumber *string   `json:"phoneNumber,omitempty"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Location is a geographic fix acquired during incident submission.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IncidentKind distinguishes the two submission paths that share the
// unified incident shape.
type IncidentKind string

const (
	KindSOS         IncidentKind = "sos"
	KindHelpRequest IncidentKind = "help_request"
)

type IncidentStatus string

const (
	StatusActive   IncidentStatus = "active"
	StatusPending  IncidentStatus = "pending"
	StatusResolved IncidentStatus = "resolved"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// IncidentRecord is one SOS alert or help request. Created exclusively by
// the submission workflow; mutated only by administrator status updates.
// Location is nil when no fix could be acquired - a location-less alert
// is still written.
type IncidentRecord struct {
	ID            string         `json:"id"`
	SubmitterID   string         `json:"submitterId"`
	SubmitterName string         `json:"submitterName"`
	ContactInfo   string         `json:"contactInfo,omitempty"`
	Location      *Location      `json:"location"`
	SubmittedAt   time.Time      `json:"submittedAt"`
	Status        IncidentStatus `json:"status"`
	Severity      Severity       `json:"severity"`
	Kind          IncidentKind   `json:"kind"`
}

// Collection keys observed by the live view layer.
const (
	CollectionSOSAlerts    = "sos_alerts"
	CollectionHelpRequests = "help_requests"
	CollectionUsers        = "users"
)

// Document is one member of a remote collection: an id plus an opaque
// field map. Dashboards derive everything they render from these.
type Document struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Snapshot is the full current membership of one collection at a point in
// time. Each emission replaces the prior local view entirely - partial
// updates are never merged.
type Snapshot struct {
	Collection string     `json:"collection"`
	Docs       []Document `json:"docs"`
	ServerTime time.Time  `json:"serverTime"`
}

// Account is a credential record held by the auth backend
//
// This is the "credential" - how someone proves who they are
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PhoneNumber  *string   `json:"phoneNumber,omitempty"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time `json:"createdAt"`
}
