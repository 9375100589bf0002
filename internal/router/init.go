package router

import (
	"github.com/oksasatya/go-movie-catalog/internal/application"
	"github.com/oksasatya/go-movie-catalog/internal/container"
	"github.com/oksasatya/go-movie-catalog/internal/infrastructure/events"
	handlers "github.com/oksasatya/go-movie-catalog/internal/interface/http"
	"github.com/oksasatya/go-movie-catalog/internal/interface/middleware"
	"github.com/oksasatya/go-movie-catalog/internal/router/modules"
	"github.com/oksasatya/go-movie-catalog/pkg/helpers"
)

type CatalogModuleDeps struct {
	Handler  *handlers.EntryHandler
	Identity *middleware.IdentityResolver
}

func buildIdentityResolver() *middleware.IdentityResolver {
	// a nil *TokenRevocations must not reach the interface
	var revocations middleware.RevocationList
	if rdb := container.GetRedis(); rdb != nil {
		revocations = helpers.NewTokenRevocations(rdb)
	}
	return middleware.NewIdentityResolver(container.GetJWT(), revocations, container.GetLogger())
}

func buildCatalogDeps() CatalogModuleDeps {
	var publisher application.EventPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		publisher = events.NewPublisher(pub)
	}

	service := application.NewEntryService(container.GetEntryRepository(), publisher, container.GetLogger())
	handler := handlers.NewEntryHandler(service, container.GetLogger(), container.GetConfig().OpenLikes)

	return CatalogModuleDeps{
		Handler:  handler,
		Identity: buildIdentityResolver(),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildCatalogDeps()
	r.Add(modules.NewCatalogModule(deps.Handler, deps.Identity, container.GetConfig().OpenLikes))
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(container.GetEntryRepository())))
}
