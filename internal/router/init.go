package router

import (
	"github.com/oksasatya/go-user-registration/internal/container"
	handlers "github.com/oksasatya/go-user-registration/internal/interface/http"
	"github.com/oksasatya/go-user-registration/internal/router/modules"
)

// InitModules builds the HTTP handlers from c and adds their modules to r.
// Call once during start-up, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	checks := make([]handlers.HealthCheck, 0, len(c.Probes))
	for name, probe := range c.Probes {
		checks = append(checks, handlers.HealthCheck{Name: name, Check: probe})
	}
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(checks...)))

	userHandler := handlers.NewUserHandler(c.Users, c.Logger)
	r.Add(modules.NewUserModule(userHandler, c.Redis, c.Config.RegisterRateLimit, c.Config.RateLimitBypassPrivate))

	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
