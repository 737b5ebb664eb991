package keyring

import (
	"crypto/rsa"
	"encoding/base64"
	"math/big"
)

// JWKS is the public key discovery document served to other banks.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK is a single RFC 7517 public key descriptor.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKS returns descriptors for every key in the ring so that a counterparty
// can verify assertions signed with a prior key after rotation.
func (r *Ring) JWKS() JWKS {
	doc := JWKS{Keys: []JWK{}}

	for _, k := range r.keys {
		doc.Keys = append(doc.Keys, NewJWK(k.KID, &k.Private.PublicKey))
	}

	return doc
}

// NewJWK builds the descriptor of a single RSA public key.
func NewJWK(kid string, pub *rsa.PublicKey) JWK {
	// RFC 7517: modulus and exponent are base64url-encoded big-endian.
	n := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())

	return JWK{
		Kty: "RSA",
		Use: "sig",
		Alg: "RS256",
		Kid: kid,
		N:   n,
		E:   e,
	}
}

// RSAPublicKey reconstructs the RSA public key from the descriptor.
func (k JWK) RSAPublicKey() (*rsa.PublicKey, bool) {
	if k.Kty != "RSA" {
		return nil, false
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, false
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, false
	}

	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes)

	if !e.IsInt64() || e.Int64() <= 0 {
		return nil, false
	}

	return &rsa.PublicKey{N: n, E: int(e.Int64())}, true
}
