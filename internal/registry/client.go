// Package registry talks to the central bank directory service.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/brigita/brigitabank/internal/domain"
)

// Client queries the central bank registry. Every lookup is a live network
// round-trip: nothing is cached here, and unavailability surfaces as
// domain.ErrRegistryUnavailable so callers can treat it as transient.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New returns a registry client with a bounded request timeout.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ResolveBankByPrefix returns the bank registered under the given routing
// prefix, domain.ErrBankNotFound when the registry has no record of it, or
// domain.ErrRegistryUnavailable when the registry cannot be reached.
func (c *Client) ResolveBankByPrefix(ctx context.Context, prefix string) (domain.Bank, error) {
	l := zerolog.Ctx(ctx)

	var bank domain.Bank

	url := fmt.Sprintf("%s/banks/%s", c.baseURL, prefix)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return bank, domain.ErrRegistryUnavailable
	}

	req.Header.Set("X-API-Key", c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		l.Warn().Err(err).Str("prefix", prefix).Msg("central bank unreachable")
		return bank, domain.ErrRegistryUnavailable
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return bank, domain.ErrBankNotFound
	case res.StatusCode != http.StatusOK:
		l.Warn().Int("status", res.StatusCode).Str("prefix", prefix).Msg("central bank error")
		return bank, domain.ErrRegistryUnavailable
	}

	if err := json.NewDecoder(res.Body).Decode(&bank); err != nil {
		l.Error().Err(err).Send()
		return bank, domain.ErrRegistryUnavailable
	}

	return bank, nil
}

// RegisterParams holds this bank's own endpoints for registration.
type RegisterParams struct {
	Name           string `json:"name"`
	Prefix         string `json:"prefix"`
	TransactionURL string `json:"transactionUrl"`
	JWKSURL        string `json:"jwksUrl"`
}

// RegisterSelf registers this bank's endpoints with the central bank. It is
// an administrative call, never on the hot path of a transfer.
func (c *Client) RegisterSelf(ctx context.Context, arg RegisterParams) (domain.Bank, error) {
	l := zerolog.Ctx(ctx)

	var bank domain.Bank

	body, err := json.Marshal(arg)
	if err != nil {
		l.Error().Err(err).Send()
		return bank, domain.ErrRegistryUnavailable
	}

	url := fmt.Sprintf("%s/banks/register", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		l.Error().Err(err).Send()
		return bank, domain.ErrRegistryUnavailable
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	res, err := c.client.Do(req)
	if err != nil {
		l.Warn().Err(err).Msg("central bank unreachable")
		return bank, domain.ErrRegistryUnavailable
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		l.Warn().Int("status", res.StatusCode).Msg("bank registration refused")
		return bank, fmt.Errorf("registration returned status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(&bank); err != nil {
		l.Error().Err(err).Send()
		return bank, domain.ErrRegistryUnavailable
	}

	return bank, nil
}
