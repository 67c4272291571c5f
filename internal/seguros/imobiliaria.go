package seguros

import "fmt"

// Imobiliaria is a partner real estate agency.
type Imobiliaria struct {
	Nome        string    `json:"nome"`
	CNPJ        string    `json:"cnpj"`
	CRECI       string    `json:"creci,omitempty"`
	Email       string    `json:"email"`
	Telefone    string    `json:"telefone,omitempty"`
	Responsavel string    `json:"responsavel,omitempty"`
	Endereco    *Endereco `json:"endereco,omitempty"`
}

func (i Imobiliaria) Validate() error {
	if err := required(
		field{"nome", i.Nome},
		field{"cnpj", i.CNPJ},
		field{"email", i.Email},
	); err != nil {
		return err
	}
	if i.Endereco != nil {
		if err := i.Endereco.Validate(); err != nil {
			return fmt.Errorf("endereco: %w", err)
		}
	}
	return nil
}
