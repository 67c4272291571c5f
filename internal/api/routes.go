package api

import (
	"context"
	"net/http"
	"time"

	"github.com/JaimeStill/corretora/internal/anotacoes"
	"github.com/JaimeStill/corretora/internal/auth"
	"github.com/JaimeStill/corretora/internal/cep"
	"github.com/JaimeStill/corretora/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, basePath string, runtime *Runtime, domain *Domain) {
	authn := auth.Authenticate(domain.Auth, runtime.Logger)

	groups := []routes.Group{
		auth.NewHandler(domain.Auth, runtime.RegistrationURL, runtime.Logger).Routes(),
		anotacoes.NewHandler(domain.Anotacoes, runtime.Hub, runtime.Logger).Routes().With(authn),
		cep.NewHandler(domain.CEP, runtime.Logger).Routes().With(authn),
	}
	for _, c := range domain.Collections {
		groups = append(groups, c.Routes().With(authn))
	}

	routes.Register(mux, basePath, groups...)

	mux.HandleFunc("GET /healthz", handleHealthCheck)
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		handleReadinessCheck(w, r, runtime)
	})
}

// handleHealthCheck responds with OK status for health monitoring.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func handleReadinessCheck(w http.ResponseWriter, r *http.Request, runtime *Runtime) {
	if !runtime.Lifecycle.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("NOT READY"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := runtime.Database.Ping(ctx); err != nil {
		runtime.Logger.Warn("readiness ping failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("DATABASE UNAVAILABLE"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
