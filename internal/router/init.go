package router

import (
	"github.com/satriajagad/portfolio-backend/internal/application"
	"github.com/satriajagad/portfolio-backend/internal/container"
	pginfra "github.com/satriajagad/portfolio-backend/internal/infrastructure/postgres"
	handlers "github.com/satriajagad/portfolio-backend/internal/interface/http"
	"github.com/satriajagad/portfolio-backend/internal/router/modules"
	"github.com/satriajagad/portfolio-backend/pkg/storage"
)

func buildAccountHandler() *handlers.AccountHandler {
	cfg := container.GetConfig()
	repo := pginfra.NewAccountRepository(container.GetPGPool())
	assets := storage.NewGCS(container.GetGCS(), cfg.GCSBucket)

	service := application.NewService(
		repo,
		container.GetJWT(),
		assets,
		container.GetMailgun(),
		container.GetRabbitPub(),
		container.GetLogger(),
		cfg,
	)

	return handlers.NewAccountHandler(
		service,
		container.GetLogger(),
		cfg.CookieDomain,
		cfg.CookieSecure,
	)
}

// InitModules wires all feature modules into the router registry. Called
// once during startup.
func InitModules(r *Registry) {
	h := buildAccountHandler()
	r.Add(modules.NewAccountModule(h, container.GetJWT()))
	r.Add(modules.NewPasswordModule(h, container.GetJWT()))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
