package seguros

import "fmt"

// SeguroIncendio is a residential fire insurance request.
type SeguroIncendio struct {
	NomeSegurado   string   `json:"nome_segurado"`
	CPF            string   `json:"cpf"`
	Email          string   `json:"email,omitempty"`
	Telefone       string   `json:"telefone,omitempty"`
	TipoImovel     string   `json:"tipo_imovel,omitempty"`
	EnderecoImovel Endereco `json:"endereco_imovel"`
	ValorAluguel   float64  `json:"valor_aluguel,omitempty"`
	InicioVigencia string   `json:"inicio_vigencia,omitempty"`
	Observacoes    string   `json:"observacoes,omitempty"`
}

func (s SeguroIncendio) Validate() error {
	if err := required(
		field{"nome_segurado", s.NomeSegurado},
		field{"cpf", s.CPF},
	); err != nil {
		return err
	}
	if err := s.EnderecoImovel.Validate(); err != nil {
		return fmt.Errorf("endereco_imovel: %w", err)
	}
	return firstError(
		nonNegative("valor_aluguel", s.ValorAluguel),
		optionalDate("inicio_vigencia", s.InicioVigencia),
	)
}

// SeguroIncendioComercial is a fire insurance request for commercial property.
type SeguroIncendioComercial struct {
	RazaoSocial    string   `json:"razao_social"`
	CNPJ           string   `json:"cnpj"`
	Atividade      string   `json:"atividade"`
	Email          string   `json:"email,omitempty"`
	Telefone       string   `json:"telefone,omitempty"`
	EnderecoImovel Endereco `json:"endereco_imovel"`
	ValorAluguel   float64  `json:"valor_aluguel,omitempty"`
	InicioVigencia string   `json:"inicio_vigencia,omitempty"`
	Observacoes    string   `json:"observacoes,omitempty"`
}

func (s SeguroIncendioComercial) Validate() error {
	if err := required(
		field{"razao_social", s.RazaoSocial},
		field{"cnpj", s.CNPJ},
		field{"atividade", s.Atividade},
	); err != nil {
		return err
	}
	if err := s.EnderecoImovel.Validate(); err != nil {
		return fmt.Errorf("endereco_imovel: %w", err)
	}
	return firstError(
		nonNegative("valor_aluguel", s.ValorAluguel),
		optionalDate("inicio_vigencia", s.InicioVigencia),
	)
}
