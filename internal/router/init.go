package router

import (
	"github.com/oksasatya/user-accounts/internal/application"
	"github.com/oksasatya/user-accounts/internal/container"
	"github.com/oksasatya/user-accounts/internal/infrastructure/cache"
	handlers "github.com/oksasatya/user-accounts/internal/interface/http"
	"github.com/oksasatya/user-accounts/internal/router/modules"
)

type AccountModuleDeps struct {
	Service   *application.Service
	Validator *application.Validator
	Handler   *handlers.AccountHandler
}

func buildAccountDeps(c *container.Container) AccountModuleDeps {
	// Interfaces stay nil when the backing client is absent.
	var viewCache application.ViewCache
	if c.Redis != nil && c.Config.DurableStore() {
		viewCache = cache.NewAccountCache(c.Redis, c.Config.CacheTTL)
	}
	var events application.EventPublisher
	if c.Publisher != nil {
		events = c.Publisher
	}

	service := application.NewService(c.Store, viewCache, events, c.Logger)
	validator := application.NewValidator(nil)
	handler := handlers.NewAccountHandler(service, validator, c.Logger)

	return AccountModuleDeps{
		Service:   service,
		Validator: validator,
		Handler:   handler,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry, c *container.Container) {
	deps := buildAccountDeps(c)
	r.Add(
		modules.NewAccountModule(deps.Handler, c.Redis),
		modules.NewHealthModule(handlers.NewHealthHandler(c.Store)),
	)
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
