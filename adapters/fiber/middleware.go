package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/nvraman/suraksha"
	"github.com/nvraman/suraksha/core"
)

const sessionLocal = "session"

// requireAuth validates the session token and stores the live session in
// the context for downstream handlers.
func (a *Adapter) requireAuth(c fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"error": core.ErrMissingAuthHeader.Error(),
		})
	}

	sess, err := a.svc.SessionFor(token)
	if err != nil {
		return c.Status(mapErrorToStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Locals(sessionLocal, sess)
	return c.Next()
}

// requireAdmin gates administrator routes on the resolved role. Runs
// after requireAuth.
func (a *Adapter) requireAdmin(c fiber.Ctx) error {
	profile := sessionFromLocals(c).Profile()
	if profile == nil || profile.Role != core.RoleAdmin {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{
			"error": core.ErrPermissionDenied.Error(),
		})
	}
	return c.Next()
}

func sessionFromLocals(c fiber.Ctx) *suraksha.Session {
	sess, _ := c.Locals(sessionLocal).(*suraksha.Session)
	return sess
}
