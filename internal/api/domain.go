package api

import (
	"github.com/JaimeStill/corretora/internal/anotacoes"
	"github.com/JaimeStill/corretora/internal/auth"
	"github.com/JaimeStill/corretora/internal/cep"
	"github.com/JaimeStill/corretora/internal/config"
	"github.com/JaimeStill/corretora/internal/realtime"
	"github.com/JaimeStill/corretora/internal/seguros"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Auth        auth.System
	Collections []seguros.Collection
	Anotacoes   anotacoes.System
	CEP         cep.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	db := runtime.Database.Connection()

	return &Domain{
		Auth: auth.New(auth.NewStore(db), &cfg.Auth, runtime.Logger),
		Collections: seguros.New(&seguros.Runtime{
			DB:         db,
			Storage:    runtime.Storage,
			Hub:        runtime.Hub,
			Logger:     runtime.Logger,
			Pagination: runtime.Pagination,
			Uploads:    runtime.Uploads,
		}),
		Anotacoes: anotacoes.New(db, runtime.Logger),
		CEP:       cep.New(&cfg.CEP, nil, runtime.Logger),
	}
}

// Resolvers maps every realtime topic to the lookup that loads its records.
func (d *Domain) Resolvers() realtime.Resolvers {
	r := seguros.Resolvers(d.Collections)
	r[anotacoes.Collection] = d.Anotacoes.Resolve
	return r
}
