package seguros

import "fmt"

// AberturaSinistro opens a claim on an existing policy.
type AberturaSinistro struct {
	NumeroApolice  string    `json:"numero_apolice"`
	NomeSegurado   string    `json:"nome_segurado"`
	CPF            string    `json:"cpf,omitempty"`
	Telefone       string    `json:"telefone,omitempty"`
	TipoSinistro   string    `json:"tipo_sinistro"`
	DataOcorrencia string    `json:"data_ocorrencia"`
	Descricao      string    `json:"descricao"`
	ValorEstimado  float64   `json:"valor_estimado,omitempty"`
	EnderecoImovel *Endereco `json:"endereco_imovel,omitempty"`
}

func (s AberturaSinistro) Validate() error {
	if err := required(
		field{"numero_apolice", s.NumeroApolice},
		field{"nome_segurado", s.NomeSegurado},
		field{"tipo_sinistro", s.TipoSinistro},
		field{"data_ocorrencia", s.DataOcorrencia},
		field{"descricao", s.Descricao},
	); err != nil {
		return err
	}
	if s.EnderecoImovel != nil {
		if err := s.EnderecoImovel.Validate(); err != nil {
			return fmt.Errorf("endereco_imovel: %w", err)
		}
	}
	return firstError(
		optionalDate("data_ocorrencia", s.DataOcorrencia),
		nonNegative("valor_estimado", s.ValorEstimado),
	)
}

// CancelamentoSeguro asks for a policy to be cancelled.
type CancelamentoSeguro struct {
	NumeroApolice    string `json:"numero_apolice"`
	NomeSegurado     string `json:"nome_segurado"`
	CPF              string `json:"cpf,omitempty"`
	TipoSeguro       string `json:"tipo_seguro"`
	Motivo           string `json:"motivo"`
	DataCancelamento string `json:"data_cancelamento,omitempty"`
}

func (c CancelamentoSeguro) Validate() error {
	if err := required(
		field{"numero_apolice", c.NumeroApolice},
		field{"nome_segurado", c.NomeSegurado},
		field{"tipo_seguro", c.TipoSeguro},
		field{"motivo", c.Motivo},
	); err != nil {
		return err
	}
	return optionalDate("data_cancelamento", c.DataCancelamento)
}
