package seguros

import (
	"fmt"
	"time"
)

// Notificacao is a message from the brokerage to an agency.
type Notificacao struct {
	Titulo   string `json:"titulo"`
	Mensagem string `json:"mensagem"`
	Link     string `json:"link,omitempty"`
}

func (n Notificacao) Validate() error {
	return required(
		field{"titulo", n.Titulo},
		field{"mensagem", n.Mensagem},
	)
}

// EnvioBoleto delivers a payment slip to an agency. The slip itself is an
// attached file.
type EnvioBoleto struct {
	Descricao   string  `json:"descricao"`
	Competencia string  `json:"competencia"`
	Vencimento  string  `json:"vencimento,omitempty"`
	Valor       float64 `json:"valor,omitempty"`
}

func (b EnvioBoleto) Validate() error {
	if err := required(
		field{"descricao", b.Descricao},
		field{"competencia", b.Competencia},
	); err != nil {
		return err
	}
	if _, err := time.Parse("2006-01", b.Competencia); err != nil {
		return fmt.Errorf("competencia must be a YYYY-MM month")
	}
	return firstError(
		optionalDate("vencimento", b.Vencimento),
		nonNegative("valor", b.Valor),
	)
}
