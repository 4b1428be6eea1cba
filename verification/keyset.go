package verification

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// RawURLBase64 is base64url without padding, the encoding of JWK key material and request signatures.
type RawURLBase64 string

// EncodeRawURL encodes data as RawURLBase64.
func EncodeRawURL(data []byte) RawURLBase64 {
	return RawURLBase64(base64.RawURLEncoding.EncodeToString(data))
}

// Decode decodes the string. Padded input is rejected.
func (b RawURLBase64) Decode() ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(string(b))
}

// String returns the encoded form.
func (b RawURLBase64) String() string {
	return string(b)
}

// JWK is an Ed25519 public key entry of a key set. Only kid and x are read;
// other members (kty, crv, alg, use) are carried through untouched.
type JWK struct {
	KeyID string       `json:"kid"`
	X     RawURLBase64 `json:"x"`
	KTY   string       `json:"kty,omitempty"`
	CRV   string       `json:"crv,omitempty"`
	ALG   string       `json:"alg,omitempty"`
	Use   string       `json:"use,omitempty"`
}

// KeySet is a parsed key-set document. It is never mutated once parsed.
type KeySet struct {
	Keys []JWK `json:"keys"`
}

// ParseKeySet parses a {"keys":[...]} document.
func ParseKeySet(data []byte) (*KeySet, error) {
	var doc struct {
		Keys *[]JWK `json:"keys"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse key set: %w", err)
	}
	if doc.Keys == nil {
		return nil, fmt.Errorf("parse key set: missing keys")
	}
	return &KeySet{Keys: *doc.Keys}, nil
}

// Find returns the key with the given kid.
func (ks *KeySet) Find(kid string) (*JWK, bool) {
	for i := range ks.Keys {
		if ks.Keys[i].KeyID == kid {
			return &ks.Keys[i], true
		}
	}
	return nil, false
}

// KeySetURL builds the well-known key-set location for a domain.
func KeySetURL(scheme, domain, namespace string) string {
	return fmt.Sprintf("%s://%s/.well-known/%s.jwks.json", scheme, domain, namespace)
}
