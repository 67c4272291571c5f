package seguros

import (
	"fmt"
	"time"
)

// SeguroFiancaResidencial is a rental guarantee request for a home lease.
type SeguroFiancaResidencial struct {
	NomeLocatario    string   `json:"nome_locatario"`
	CPFLocatario     string   `json:"cpf_locatario"`
	Email            string   `json:"email,omitempty"`
	Telefone         string   `json:"telefone,omitempty"`
	Profissao        string   `json:"profissao,omitempty"`
	RendaMensal      float64  `json:"renda_mensal,omitempty"`
	NomeProprietario string   `json:"nome_proprietario,omitempty"`
	EnderecoImovel   Endereco `json:"endereco_imovel"`
	ValorAluguel     float64  `json:"valor_aluguel"`
	ValorCondominio  float64  `json:"valor_condominio,omitempty"`
	ValorIPTU        float64  `json:"valor_iptu,omitempty"`
}

func (s SeguroFiancaResidencial) Validate() error {
	if err := required(
		field{"nome_locatario", s.NomeLocatario},
		field{"cpf_locatario", s.CPFLocatario},
	); err != nil {
		return err
	}
	if err := s.EnderecoImovel.Validate(); err != nil {
		return fmt.Errorf("endereco_imovel: %w", err)
	}
	if s.ValorAluguel <= 0 {
		return fmt.Errorf("valor_aluguel must be positive")
	}
	return firstError(
		nonNegative("renda_mensal", s.RendaMensal),
		nonNegative("valor_condominio", s.ValorCondominio),
		nonNegative("valor_iptu", s.ValorIPTU),
	)
}

// fiancaEmpresarial is the shape shared by both business rental
// guarantee collections. They differ only in company age.
type fiancaEmpresarial struct {
	RazaoSocial       string   `json:"razao_social"`
	CNPJ              string   `json:"cnpj"`
	DataAbertura      string   `json:"data_abertura"`
	NomeSocio         string   `json:"nome_socio"`
	CPFSocio          string   `json:"cpf_socio"`
	Email             string   `json:"email,omitempty"`
	Telefone          string   `json:"telefone,omitempty"`
	FaturamentoMensal float64  `json:"faturamento_mensal,omitempty"`
	EnderecoImovel    Endereco `json:"endereco_imovel"`
	ValorAluguel      float64  `json:"valor_aluguel"`
}

func (s fiancaEmpresarial) validate() (time.Time, error) {
	if err := required(
		field{"razao_social", s.RazaoSocial},
		field{"cnpj", s.CNPJ},
		field{"data_abertura", s.DataAbertura},
		field{"nome_socio", s.NomeSocio},
		field{"cpf_socio", s.CPFSocio},
	); err != nil {
		return time.Time{}, err
	}
	opened, err := time.Parse(time.DateOnly, s.DataAbertura)
	if err != nil {
		return time.Time{}, fmt.Errorf("data_abertura must be a YYYY-MM-DD date")
	}
	if err := s.EnderecoImovel.Validate(); err != nil {
		return time.Time{}, fmt.Errorf("endereco_imovel: %w", err)
	}
	if s.ValorAluguel <= 0 {
		return time.Time{}, fmt.Errorf("valor_aluguel must be positive")
	}
	if err := nonNegative("faturamento_mensal", s.FaturamentoMensal); err != nil {
		return time.Time{}, err
	}
	return opened, nil
}

// twoYearsBefore is the opening date cutoff separating the two business
// collections.
func twoYearsBefore(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y-2, m, d, 0, 0, 0, 0, time.UTC)
}

// SeguroFiancaEmpresarialMais2Anos is a business rental guarantee for
// companies open for at least two years.
type SeguroFiancaEmpresarialMais2Anos struct {
	fiancaEmpresarial
}

func (s SeguroFiancaEmpresarialMais2Anos) Validate() error {
	opened, err := s.validate()
	if err != nil {
		return err
	}
	if opened.After(twoYearsBefore(time.Now())) {
		return fmt.Errorf("data_abertura must be at least two years ago")
	}
	return nil
}

// SeguroFiancaEmpresarialMenos2Anos is a business rental guarantee for
// companies open for less than two years.
type SeguroFiancaEmpresarialMenos2Anos struct {
	fiancaEmpresarial
}

func (s SeguroFiancaEmpresarialMenos2Anos) Validate() error {
	opened, err := s.validate()
	if err != nil {
		return err
	}
	if !opened.After(twoYearsBefore(time.Now())) {
		return fmt.Errorf("data_abertura must be less than two years ago")
	}
	return nil
}
