// Package api assembles the HTTP API: domain systems, their routes, the
// shared middleware stack and the realtime listener feeding event streams.
package api

import (
	"net/http"

	"github.com/JaimeStill/corretora/internal/config"
	"github.com/JaimeStill/corretora/internal/infrastructure"
	"github.com/JaimeStill/corretora/internal/realtime"
	"github.com/JaimeStill/corretora/pkg/lifecycle"
	"github.com/JaimeStill/corretora/pkg/middleware"
)

// Module is the mounted API.
type Module struct {
	handler  http.Handler
	listener *realtime.Listener
}

// NewModule builds the API from the configuration and infrastructure.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) *Module {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime, cfg)

	mux := http.NewServeMux()
	registerRoutes(mux, cfg.API.BasePath, runtime, domain)

	mw := middleware.New()
	mw.Use(middleware.TrimSlash())
	mw.Use(middleware.CORS(&cfg.API.CORS))
	mw.Use(middleware.Logger(runtime.Logger))

	return &Module{
		handler: mw.Apply(mux),
		listener: realtime.NewListener(
			cfg.Database.URL(),
			runtime.Hub,
			domain.Resolvers(),
			cfg.Realtime.ReconnectDelayDuration(),
			runtime.Logger,
		),
	}
}

// Handler returns the API's http.Handler.
func (m *Module) Handler() http.Handler {
	return m.handler
}

// Start runs the realtime listener until shutdown.
func (m *Module) Start(lc *lifecycle.Coordinator) error {
	return m.listener.Start(lc)
}
