package fiber

func (a *Adapter) RegisterRoutes() {
	api := a.app.Group(a.basePath)

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/sign-up", a.signup)
	auth.Post("/sign-in", a.signin)

	// Protected routes
	auth.Post("/sign-out", a.requireAuth, a.signout)
	auth.Get("/session", a.requireAuth, a.session)

	incidents := api.Group("/incidents", a.requireAuth)
	incidents.Post("/sos", a.submitSOS)
	incidents.Post("/help", a.submitHelpRequest)
	incidents.Delete("/pending", a.cancelSubmission)

	live := api.Group("/live", a.requireAuth)
	live.Get("/:collection", a.liveSnapshot)
	live.Delete("/:collection", a.liveCancel)

	admin := api.Group("/admin", a.requireAuth, a.requireAdmin)
	admin.Get("/incidents/:kind", a.listIncidents)
	admin.Patch("/incidents/:id", a.updateIncidentStatus)
}
