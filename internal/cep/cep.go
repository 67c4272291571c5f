// Package cep looks up Brazilian postal codes through a ViaCEP compatible
// service.
package cep

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"
)

// Address is the lookup result.
type Address struct {
	CEP         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Localidade  string `json:"localidade"`
	UF          string `json:"uf"`
	IBGE        string `json:"ibge,omitempty"`
	DDD         string `json:"ddd,omitempty"`
}

// System resolves postal codes to addresses.
type System interface {
	Lookup(ctx context.Context, code string) (*Address, error)
}

type client struct {
	http    *http.Client
	baseURL string
	group   singleflight.Group
	logger  *slog.Logger
}

// New creates a lookup client. A nil httpClient gets one with the
// configured timeout.
func New(cfg *Config, httpClient *http.Client, logger *slog.Logger) System {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.TimeoutDuration()}
	}
	return &client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:  logger.With("system", "cep"),
	}
}

// Normalize strips separators and returns the 8 digit code.
func Normalize(code string) (string, error) {
	var b strings.Builder
	for _, r := range code {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '.' || r == ' ':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidCEP, code)
		}
	}
	if b.Len() != 8 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCEP, code)
	}
	return b.String(), nil
}

// Lookup validates code and fetches its address. Concurrent lookups of
// the same code share one request; a caller whose ctx ends stops waiting
// without cancelling the shared request.
func (c *client) Lookup(ctx context.Context, code string) (*Address, error) {
	normalized, err := Normalize(code)
	if err != nil {
		return nil, err
	}

	ch := c.group.DoChan(normalized, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), normalized)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		addr := *res.Val.(*Address)
		return &addr, nil
	}
}

type viaCEPResponse struct {
	Address
	Erro json.RawMessage `json:"erro"`
}

// notFound reports ViaCEP's miss marker, sent as true or "true".
func (r viaCEPResponse) notFound() bool {
	switch strings.Trim(string(r.Erro), `"`) {
	case "", "false":
		return false
	}
	return true
}

func (c *client) fetch(ctx context.Context, code string) (*Address, error) {
	url := fmt.Sprintf("%s/%s/json/", c.baseURL, code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("lookup failed", "cep", code, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		c.logger.Warn("lookup rejected", "cep", code, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	if body.notFound() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}

	c.logger.Debug("lookup resolved", "cep", code, "localidade", body.Localidade)
	return &body.Address, nil
}
