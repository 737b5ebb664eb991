// Package counterparty delivers signed assertions to other banks.
package counterparty

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/brigita/brigitabank/internal/domain"
)

// Client POSTs a signed assertion to a counterparty bank's transfer endpoint
// and returns the receiver name the counterparty confirms. Calls are never
// retried: a failed delivery is terminal for that attempt.
type Client struct {
	client *http.Client
}

// New returns a counterparty client with a bounded request timeout.
func New(timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type request struct {
	Token string `json:"token"`
}

type response struct {
	ReceiverName string `json:"receiverName"`
	Message      string `json:"message"`
}

// SendAssertion delivers the token to transactionURL. A non-2xx response is
// domain.ErrCounterpartyRejected; a connectivity failure is
// domain.ErrCounterpartyUnavailable.
func (c *Client) SendAssertion(ctx context.Context, transactionURL, token string) (string, error) {
	l := zerolog.Ctx(ctx)

	body, err := json.Marshal(request{Token: token})
	if err != nil {
		l.Error().Err(err).Send()
		return "", domain.ErrCounterpartyUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, transactionURL, bytes.NewReader(body))
	if err != nil {
		l.Error().Err(err).Send()
		return "", domain.ErrCounterpartyUnavailable
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		l.Warn().Err(err).Str("url", transactionURL).Msg("counterparty unreachable")
		return "", domain.ErrCounterpartyUnavailable
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		l.Warn().
			Int("status", res.StatusCode).
			Str("url", transactionURL).
			Str("detail", string(detail)).
			Msg("counterparty rejected transfer")

		return "", domain.ErrCounterpartyRejected
	}

	var r response
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		l.Error().Err(err).Send()
		return "", domain.ErrCounterpartyUnavailable
	}

	return r.ReceiverName, nil
}
