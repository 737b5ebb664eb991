// Package assertion encodes, decodes and verifies signed interbank transfer
// assertions exchanged between banks as RS256 JWTs.
package assertion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"

	"github.com/brigita/brigitabank/internal/domain"
	"github.com/brigita/brigitabank/internal/keyring"
)

// Claims is the signed claims set of a transfer assertion.
type Claims struct {
	AccountFrom string `json:"accountFrom"`
	AccountTo   string `json:"accountTo"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Explanation string `json:"explanation"`
	SenderName  string `json:"senderName"`
	jwt.RegisteredClaims
}

func (c *Claims) payload() domain.AssertionPayload {
	return domain.AssertionPayload{
		AccountFrom: c.AccountFrom,
		AccountTo:   c.AccountTo,
		Amount:      c.Amount,
		Currency:    c.Currency,
		Explanation: c.Explanation,
		SenderName:  c.SenderName,
	}
}

// Codec signs assertions with the ring's active key and verifies incoming
// assertions against a counterparty's published key set.
type Codec struct {
	ring   *keyring.Ring
	ttl    time.Duration
	client *http.Client
}

// New returns a Codec. The ttl bounds the replay window of issued
// assertions; the timeout bounds key-discovery fetches.
func New(ring *keyring.Ring, ttl, timeout time.Duration) *Codec {
	return &Codec{
		ring: ring,
		ttl:  ttl,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Sign serializes the payload as a claims set, signs it with the active key
// and embeds the key-id in the token header.
func (c *Codec) Sign(payload domain.AssertionPayload) (string, error) {
	key := c.ring.Active()

	now := time.Now()
	claims := &Claims{
		AccountFrom: payload.AccountFrom,
		AccountTo:   payload.AccountTo,
		Amount:      payload.Amount,
		Currency:    payload.Currency,
		Explanation: payload.Explanation,
		SenderName:  payload.SenderName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = key.KID

	signed, err := token.SignedString(key.Private)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}

	return signed, nil
}

// DecodeUnverified parses the token structure without checking the
// signature. It exists only to extract routing fields before the issuer's
// key can be located and its output must never be trusted.
func (c *Codec) DecodeUnverified(token string) (domain.AssertionPayload, error) {
	claims := &Claims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return domain.AssertionPayload{}, domain.ErrInvalidAssertion
	}

	return claims.payload(), nil
}

// Verify fetches the issuer's key set from jwksURL, matches the embedded
// key-id and checks signature and expiry. It reports false on any failure:
// this is a security boundary and ambiguous input fails closed.
func (c *Codec) Verify(ctx context.Context, token, jwksURL string) bool {
	l := zerolog.Ctx(ctx)

	keySet, err := c.fetchKeySet(ctx, jwksURL)
	if err != nil {
		l.Info().Err(err).Str("jwks_url", jwksURL).Msg("key discovery failed")
		return false
	}

	return c.VerifyWithKeySet(ctx, token, keySet)
}

// VerifyWithKeySet checks the token against an already fetched key set.
func (c *Codec) VerifyWithKeySet(ctx context.Context, token string, keySet keyring.JWKS) bool {
	l := zerolog.Ctx(ctx)

	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		kid, ok := t.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("missing kid header")
		}

		for _, jwk := range keySet.Keys {
			if jwk.Kid != kid {
				continue
			}

			pub, ok := jwk.RSAPublicKey()
			if !ok {
				return nil, fmt.Errorf("malformed key %s", kid)
			}

			return pub, nil
		}

		return nil, fmt.Errorf("no key matches kid %s", kid)
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, keyFunc)
	if err != nil {
		l.Info().Err(err).Msg("assertion verification failed")
		return false
	}

	return parsed.Valid
}

func (c *Codec) fetchKeySet(ctx context.Context, jwksURL string) (keyring.JWKS, error) {
	var keySet keyring.JWKS

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return keySet, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return keySet, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return keySet, fmt.Errorf("key discovery returned status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(&keySet); err != nil {
		return keySet, err
	}

	return keySet, nil
}
