// Package keyring owns the bank's asymmetric signing keys.
//
// Keys are persisted as PEM files so the key-id embedded in issued
// assertions stays valid across restarts. Rotation retains older keys:
// they remain published in the key set until manually pruned, which keeps
// assertions signed shortly before a rotation verifiable until they expire.
package keyring

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const keySize = 2048

// Key pairs a private signing key with its stable key-id.
type Key struct {
	Private *rsa.PrivateKey
	KID     string
}

// Ring holds every signing key the bank has persisted. The newest key signs;
// all keys verify.
type Ring struct {
	dir    string
	keys   []*Key
	active *Key
}

// Load reads every PEM key in dir, generating and persisting a fresh key
// when the directory holds none. The most recently written key becomes the
// signing key. Any failure here is fatal to the caller: without a signing
// key no external transfer can be issued.
func Load(dir string) (*Ring, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create keys dir: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read keys dir: %w", err)
	}

	type fileKey struct {
		key     *Key
		modTime int64
	}

	var found []fileKey

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".pem" {
			continue
		}

		path := filepath.Join(dir, e.Name())

		key, err := readKeyFile(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}

		info, err := e.Info()
		if err != nil {
			return nil, err
		}

		found = append(found, fileKey{key: key, modTime: info.ModTime().UnixNano()})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].modTime < found[j].modTime })

	r := &Ring{dir: dir}
	for _, f := range found {
		r.keys = append(r.keys, f.key)
	}

	if len(r.keys) == 0 {
		if _, err := r.Rotate(); err != nil {
			return nil, err
		}

		return r, nil
	}

	r.active = r.keys[len(r.keys)-1]

	return r, nil
}

// Active returns the current signing key.
func (r *Ring) Active() *Key {
	return r.active
}

// Rotate generates, persists and activates a new signing key. Previously
// loaded keys stay in the ring for verification.
func (r *Ring) Rotate() (*Key, error) {
	private, err := rsa.GenerateKey(rand.Reader, keySize)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	key := &Key{
		Private: private,
		KID:     Fingerprint(&private.PublicKey),
	}

	if err := writeKeyFile(filepath.Join(r.dir, "key-"+key.KID+".pem"), private); err != nil {
		return nil, err
	}

	r.keys = append(r.keys, key)
	r.active = key

	return key, nil
}

// Lookup returns the public key with the given key-id.
func (r *Ring) Lookup(kid string) (*rsa.PublicKey, bool) {
	for _, k := range r.keys {
		if k.KID == kid {
			return &k.Private.PublicKey, true
		}
	}

	return nil, false
}

// Fingerprint derives the stable key-id of a public key: the leading 16 hex
// characters of the SHA-256 digest of its DER encoding.
func Fingerprint(pub *rsa.PublicKey) string {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		// Marshalling an in-memory RSA public key cannot fail.
		panic(err)
	}

	sum := sha256.Sum256(der)

	return hex.EncodeToString(sum[:])[:16]
}

func readKeyFile(path string) (*Key, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	private, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}

	return &Key{Private: private, KID: Fingerprint(&private.PublicKey)}, nil
}

func writeKeyFile(path string, private *rsa.PrivateKey) error {
	der, err := x509.MarshalPKCS8PrivateKey(private)
	if err != nil {
		return fmt.Errorf("marshal signing key: %w", err)
	}

	block := &pem.Block{Type: "PRIVATE KEY", Bytes: der}

	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		return fmt.Errorf("persist signing key: %w", err)
	}

	return nil
}
