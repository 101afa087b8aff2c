package fiber

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/nvraman/suraksha"
	"github.com/nvraman/suraksha/core"
)

// pollTimeout bounds a live-view long poll; an idle poll ends with 204
// and the client simply re-polls.
const pollTimeout = 25 * time.Second

type submitInput struct {
	Severity core.Severity `json:"severity"`
}

type statusInput struct {
	Status core.IncidentStatus `json:"status"`
}

func (a *Adapter) signup(c fiber.Ctx) error {
	var input suraksha.RegisterInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := a.svc.Register(c.Context(), input)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(startResponse(result))
}

func (a *Adapter) signin(c fiber.Ctx) error {
	var input suraksha.LoginInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := a.svc.Login(c.Context(), input.Email, input.Password)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(startResponse(result))
}

func (a *Adapter) signout(c fiber.Ctx) error {
	if err := a.svc.Logout(extractToken(c)); err != nil {
		return handleError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "signed out successfully",
	})
}

func (a *Adapter) session(c fiber.Ctx) error {
	sess := sessionFromLocals(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"id":        sess.ID,
		"expiresAt": sess.ExpiresAt,
		"profile":   sess.Profile(),
		"degraded":  sess.Resolver().Degraded(),
	})
}

func (a *Adapter) submitSOS(c fiber.Ctx) error {
	return a.submit(c, core.KindSOS)
}

func (a *Adapter) submitHelpRequest(c fiber.Ctx) error {
	return a.submit(c, core.KindHelpRequest)
}

func (a *Adapter) submit(c fiber.Ctx, kind core.IncidentKind) error {
	var input submitInput
	// An empty body is fine; severity then takes the kind's default.
	_ = c.Bind().Body(&input)

	sess := sessionFromLocals(c)
	rec, err := sess.SubmitIncident(c.Context(), kind, input.Severity)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(rec)
}

func (a *Adapter) cancelSubmission(c fiber.Ctx) error {
	sessionFromLocals(c).CancelSubmission()
	return c.SendStatus(http.StatusNoContent)
}

// liveSnapshot long-polls the session's subscription for a collection,
// opening it on first use. Each successful poll returns one full
// snapshot; an idle poll returns 204.
func (a *Adapter) liveSnapshot(c fiber.Ctx) error {
	sess := sessionFromLocals(c)
	collection := c.Params("collection")

	sub, ok := sess.Observation(collection)
	if !ok {
		var err error
		sub, err = sess.Observe(collection)
		if err != nil {
			return handleError(c, err)
		}
	}

	select {
	case snap, open := <-sub.Snapshots():
		if !open {
			return handleError(c, core.ErrSubscriptionClosed)
		}
		return c.Status(http.StatusOK).JSON(snap)
	case <-time.After(pollTimeout):
		return c.SendStatus(http.StatusNoContent)
	case <-c.Context().Done():
		return c.SendStatus(http.StatusNoContent)
	}
}

func (a *Adapter) liveCancel(c fiber.Ctx) error {
	sess := sessionFromLocals(c)
	if sub, ok := sess.Observation(c.Params("collection")); ok {
		sub.Cancel()
	}
	return c.SendStatus(http.StatusNoContent)
}

func (a *Adapter) listIncidents(c fiber.Ctx) error {
	kind := core.IncidentKind(c.Params("kind"))
	if kind != core.KindSOS && kind != core.KindHelpRequest {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": core.ErrInvalidKind.Error(),
		})
	}

	records, err := a.svc.Incidents(c.Context(), sessionFromLocals(c), kind)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"incidents": records})
}

func (a *Adapter) updateIncidentStatus(c fiber.Ctx) error {
	var input statusInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	err := a.svc.ResolveIncident(c.Context(), sessionFromLocals(c), c.Params("id"), input.Status)
	if err != nil {
		return handleError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "incident updated",
	})
}

func startResponse(result *suraksha.StartResult) fiber.Map {
	return fiber.Map{
		"token":     result.Token,
		"sessionId": result.Session.ID,
		"expiresAt": result.Session.ExpiresAt,
		"profile":   result.Session.Profile(),
	}
}

// extractToken extracts the session token from the request.
// Checks Authorization header (Bearer token) first, then falls back to cookie.
func extractToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}

	return c.Cookies("auth_token")
}

// handleError maps core errors to appropriate HTTP responses
func handleError(c fiber.Ctx, err error) error {
	return c.Status(mapErrorToStatus(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// mapErrorToStatus maps core error types to HTTP status codes
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, core.ErrUnauthenticated),
		errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrMissingAuthHeader),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrSessionExpired):
		return http.StatusUnauthorized

	case errors.Is(err, core.ErrPermissionDenied):
		return http.StatusForbidden

	case errors.Is(err, core.ErrEmailRequired),
		errors.Is(err, core.ErrInvalidEmail),
		errors.Is(err, core.ErrPasswordRequired),
		errors.Is(err, core.ErrPasswordTooShort),
		errors.Is(err, core.ErrDisplayNameRequired),
		errors.Is(err, core.ErrInvalidRole),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidStatus):
		return http.StatusBadRequest

	case errors.Is(err, core.ErrIncidentNotFound),
		errors.Is(err, core.ErrProfileNotFound):
		return http.StatusNotFound

	case errors.Is(err, core.ErrAccountExists),
		errors.Is(err, core.ErrProfileExists),
		errors.Is(err, core.ErrAlreadyObserved):
		return http.StatusConflict

	case errors.Is(err, core.ErrSubscriptionClosed):
		return http.StatusGone

	case errors.Is(err, core.ErrUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}
