package seguros

import (
	"fmt"
	"strings"
	"time"

	"github.com/JaimeStill/corretora/internal/cep"
)

type field struct {
	name  string
	value string
}

// required fails listing every blank field, in order.
func required(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required", strings.Join(missing, ", "))
	}
	return nil
}

// optionalDate accepts an empty value or a YYYY-MM-DD date.
func optionalDate(name, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return fmt.Errorf("%s must be a YYYY-MM-DD date", name)
	}
	return nil
}

func nonNegative(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%s must not be negative", name)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Endereco is a Brazilian street address.
type Endereco struct {
	CEP         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento,omitempty"`
	Bairro      string `json:"bairro,omitempty"`
	Cidade      string `json:"cidade"`
	UF          string `json:"uf"`
}

// Validate checks required parts and the CEP format.
func (e Endereco) Validate() error {
	if err := required(
		field{"cep", e.CEP},
		field{"logradouro", e.Logradouro},
		field{"numero", e.Numero},
		field{"cidade", e.Cidade},
		field{"uf", e.UF},
	); err != nil {
		return err
	}
	if _, err := cep.Normalize(e.CEP); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.UF)) != 2 {
		return fmt.Errorf("uf must have two letters")
	}
	return nil
}
