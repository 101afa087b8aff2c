// Package fiber exposes the dashboard backend over HTTP. Live views are
// served as long-polled full snapshots: each GET returns the next
// emission of the session's subscription for that collection.
package fiber

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/nvraman/suraksha"
)

const defaultBasePath = "/api"

type Adapter struct {
	app      *fiber.App
	svc      *suraksha.Suraksha
	logger   *zap.Logger
	basePath string
}

func New(app *fiber.App, svc *suraksha.Suraksha, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		app:      app,
		svc:      svc,
		logger:   logger,
		basePath: defaultBasePath,
	}
}

// WithBasePath overrides the route prefix.
func (a *Adapter) WithBasePath(basePath string) *Adapter {
	a.basePath = basePath
	return a
}
