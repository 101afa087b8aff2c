package core

import "errors"

// Failure taxonomy surfaced to dashboards. Submission failures are always
// classified into one of these before they reach the user.
var (
	ErrUnauthenticated  = errors.New("no resolved identity")                 // 401 Unauthorized
	ErrPermissionDenied = errors.New("store rejected the operation")         // 403 Forbidden
	ErrUnavailable      = errors.New("remote store unreachable")             // 503 Service Unavailable
	ErrLocationDenied   = errors.New("location permission denied")           // non-fatal in submission
	ErrLocationTimeout  = errors.New("location acquisition timed out")       // non-fatal in submission
)

// Profile errors. ErrProfileNotFound never surfaces to users - resolution
// absorbs it into the synthesized-default tier.
var (
	ErrProfileNotFound = errors.New("profile not found")      // 404 Not Found
	ErrProfileExists   = errors.New("profile already exists") // 409 Conflict
	ErrCacheNotFound   = errors.New("profile not found in cache")
)

// Incident errors
var (
	ErrIncidentNotFound = errors.New("incident not found") // 404 Not Found
)

// Auth errors
var (
	ErrAccountExists      = errors.New("account already exists")     // 409 Conflict
	ErrAccountNotFound    = errors.New("account not found")          // 404 Not Found
	ErrInvalidCredentials = errors.New("invalid email or password")  // 401 Unauthorized
)

// Session errors
var (
	ErrMissingAuthHeader = errors.New("missing authorization header") // 401
	ErrInvalidToken      = errors.New("invalid session token")        // 401
	ErrSessionNotFound   = errors.New("session not found")            // 401
	ErrSessionExpired    = errors.New("session expired")              // 401
)

// Live view errors
var (
	ErrAlreadyObserved    = errors.New("collection already observed by this session") // 409 Conflict
	ErrSubscriptionClosed = errors.New("subscription closed")
)

// Validation errors (client input)
var (
	ErrEmailRequired       = errors.New("email is required")        // 400
	ErrInvalidEmail        = errors.New("invalid email format")     // 400
	ErrPasswordRequired    = errors.New("password is required")     // 400
	ErrPasswordTooShort    = errors.New("password is too short")    // 400
	ErrDisplayNameRequired = errors.New("display name is required") // 400
	ErrInvalidRole         = errors.New("invalid role")             // 400
	ErrInvalidKind         = errors.New("invalid incident kind")    // 400
	ErrInvalidStatus       = errors.New("invalid incident status")  // 400
)

// Config errors (server-side configuration)
var (
	ErrProfileStoreRequired  = errors.New("profile store is required")  // 500
	ErrIncidentStoreRequired = errors.New("incident store is required") // 500
	ErrAccountStoreRequired  = errors.New("account store is required")  // 500
	ErrSourceRequired        = errors.New("collection source is required") // 500
)

// ClassifySubmitError maps an incident-write failure onto the taxonomy.
// Errors already in the taxonomy pass through; anything unrecognized is
// reported as Unavailable, which matches what the user can act on (check
// connectivity and retry).
func ClassifySubmitError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrUnavailable):
		return err
	default:
		return errors.Join(ErrUnavailable, err)
	}
}
