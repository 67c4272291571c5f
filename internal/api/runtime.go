package api

import (
	"github.com/JaimeStill/corretora/internal/config"
	"github.com/JaimeStill/corretora/internal/infrastructure"
	"github.com/JaimeStill/corretora/pkg/pagination"
	"github.com/JaimeStill/corretora/pkg/storage"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Uploads    storage.Limits
	// RegistrationURL is the front end's sign-up page, if configured.
	RegistrationURL string
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Hub:       infra.Hub,
		},
		Pagination:      cfg.API.Pagination,
		Uploads:         cfg.Storage.Limits(),
		RegistrationURL: cfg.API.RegistrationURL(),
	}
}
