// Package seguros declares the brokerage collections: one payload type and
// one records.Definition each, mounted on the generic records client.
package seguros

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/JaimeStill/corretora/internal/realtime"
	"github.com/JaimeStill/corretora/internal/records"
	"github.com/JaimeStill/corretora/pkg/pagination"
	"github.com/JaimeStill/corretora/pkg/routes"
	"github.com/JaimeStill/corretora/pkg/storage"
	"github.com/google/uuid"
)

// Collection definitions. Name and Table coincide for every collection.
var (
	Imobiliarias = records.Definition{
		Name:         "imobiliarias",
		Table:        "imobiliarias",
		SearchFields: []string{"nome", "cnpj", "email"},
		Description:  "Partner real estate agencies",
		Access:       records.AccessAdmin,
	}
	SegurosIncendio = records.Definition{
		Name:         "seguro_incendio",
		Table:        "seguro_incendio",
		SearchFields: []string{"nome_segurado", "cpf"},
		Description:  "Residential fire insurance",
	}
	SegurosIncendioComercial = records.Definition{
		Name:         "seguro_incendio_comercial",
		Table:        "seguro_incendio_comercial",
		SearchFields: []string{"razao_social", "cnpj"},
		Description:  "Commercial fire insurance",
	}
	SegurosFiancaResidencial = records.Definition{
		Name:         "seguro_fianca_residencial",
		Table:        "seguro_fianca_residencial",
		SearchFields: []string{"nome_locatario", "cpf_locatario", "nome_proprietario"},
		Description:  "Residential rental guarantee",
	}
	SegurosFiancaEmpresarialMais2Anos = records.Definition{
		Name:         "seguro_fianca_empresarial_mais_2_anos",
		Table:        "seguro_fianca_empresarial_mais_2_anos",
		SearchFields: []string{"razao_social", "cnpj", "nome_socio"},
		Description:  "Business rental guarantee, companies two years or older",
	}
	SegurosFiancaEmpresarialMenos2Anos = records.Definition{
		Name:         "seguro_fianca_empresarial_menos_2_anos",
		Table:        "seguro_fianca_empresarial_menos_2_anos",
		SearchFields: []string{"razao_social", "cnpj", "nome_socio"},
		Description:  "Business rental guarantee, companies under two years",
	}
	AberturasSinistro = records.Definition{
		Name:         "abertura_sinistro",
		Table:        "abertura_sinistro",
		SearchFields: []string{"nome_segurado", "numero_apolice"},
		Description:  "Claim openings",
	}
	CancelamentosSeguros = records.Definition{
		Name:         "cancelamento_seguros",
		Table:        "cancelamento_seguros",
		SearchFields: []string{"nome_segurado", "numero_apolice"},
		Description:  "Policy cancellations",
	}
	Notificacoes = records.Definition{
		Name:         "notificacoes",
		Table:        "notificacoes",
		SearchFields: []string{"titulo", "mensagem"},
		StatusField:  "status",
		Description:  "Notices sent to agencies",
		Access:       records.AccessRead,
	}
	EnviosBoletos = records.Definition{
		Name:         "envio_boletos",
		Table:        "envio_boletos",
		SearchFields: []string{"descricao", "competencia"},
		Description:  "Payment slips sent to agencies",
		Access:       records.AccessRead,
	}
)

// Definitions returns every collection in display order.
func Definitions() []records.Definition {
	return []records.Definition{
		Imobiliarias,
		SegurosIncendio,
		SegurosIncendioComercial,
		SegurosFiancaResidencial,
		SegurosFiancaEmpresarialMais2Anos,
		SegurosFiancaEmpresarialMenos2Anos,
		AberturasSinistro,
		CancelamentosSeguros,
		Notificacoes,
		EnviosBoletos,
	}
}

// Lookup returns the definition named name.
func Lookup(name string) (records.Definition, bool) {
	for _, d := range Definitions() {
		if d.Name == name {
			return d, true
		}
	}
	return records.Definition{}, false
}

// Collection is a mounted collection with its payload type erased.
type Collection interface {
	Definition() records.Definition
	Resolve(ctx context.Context, id uuid.UUID) (json.RawMessage, error)
	Routes() routes.Group
}

// Runtime carries what every collection needs.
type Runtime struct {
	DB         *sql.DB
	Storage    storage.System
	Hub        *realtime.Hub
	Logger     *slog.Logger
	Pagination pagination.Config
	Uploads    storage.Limits
}

type collection[T records.Payload] struct {
	records.System[T]
	handler *records.Handler[T]
}

func (c collection[T]) Routes() routes.Group {
	return c.handler.Routes()
}

func mount[T records.Payload](def records.Definition, rt *Runtime) Collection {
	sys := records.New[T](def, rt.DB, rt.Storage, rt.Logger, rt.Pagination)
	return collection[T]{
		System:  sys,
		handler: records.NewHandler(sys, rt.Hub, rt.Logger, rt.Pagination, rt.Uploads),
	}
}

// New mounts every collection.
func New(rt *Runtime) []Collection {
	return []Collection{
		mount[Imobiliaria](Imobiliarias, rt),
		mount[SeguroIncendio](SegurosIncendio, rt),
		mount[SeguroIncendioComercial](SegurosIncendioComercial, rt),
		mount[SeguroFiancaResidencial](SegurosFiancaResidencial, rt),
		mount[SeguroFiancaEmpresarialMais2Anos](SegurosFiancaEmpresarialMais2Anos, rt),
		mount[SeguroFiancaEmpresarialMenos2Anos](SegurosFiancaEmpresarialMenos2Anos, rt),
		mount[AberturaSinistro](AberturasSinistro, rt),
		mount[CancelamentoSeguro](CancelamentosSeguros, rt),
		mount[Notificacao](Notificacoes, rt),
		mount[EnvioBoleto](EnviosBoletos, rt),
	}
}

// Resolvers indexes the collections' record lookups by name for the
// realtime listener.
func Resolvers(collections []Collection) realtime.Resolvers {
	r := make(realtime.Resolvers, len(collections))
	for _, c := range collections {
		r[c.Definition().Name] = c.Resolve
	}
	return r
}
