// Package viacep resolves Brazilian postal codes through the public ViaCEP
// JSON API.
package viacep

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/dwikikusuma/storefront/internal/address/domain"
)

const (
	DefaultBaseURL = "https://viacep.com.br"
	DefaultRPS     = 5

	maxBody = 64 << 10
)

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client that issues at most rps requests per second. Callers
// over the limit wait rather than fail.
func New(baseURL string, rps float64, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if rps <= 0 {
		rps = DefaultRPS
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches cep, which must already be eight digits.
func (c *Client) Lookup(ctx context.Context, cep string) (domain.Address, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Address{}, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}

	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Address{}, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Address{}, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	// ViaCEP answers 400 for malformed codes, which Normalize already rules out.
	if resp.StatusCode == http.StatusBadRequest {
		return domain.Address{}, domain.ErrInvalidPostalCode
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Address{}, fmt.Errorf("%w: viacep status %d", domain.ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return domain.Address{}, fmt.Errorf("%w: read body: %v", domain.ErrNetwork, err)
	}
	return parse(body)
}

func parse(body []byte) (domain.Address, error) {
	if !gjson.ValidBytes(body) {
		return domain.Address{}, fmt.Errorf("%w: malformed viacep response", domain.ErrNetwork)
	}

	res := gjson.ParseBytes(body)
	// "erro" arrives as either true or "true" depending on the API version.
	if res.Get("erro").Bool() {
		return domain.Address{}, domain.ErrNotFound
	}

	return domain.Address{
		PostalCode:   res.Get("cep").String(),
		Street:       res.Get("logradouro").String(),
		Complement:   res.Get("complemento").String(),
		Neighborhood: res.Get("bairro").String(),
		City:         res.Get("localidade").String(),
		State:        res.Get("uf").String(),
		Country:      "Brasil",
	}, nil
}
