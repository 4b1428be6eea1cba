package verification

import (
	"context"
	"errors"

	"github.com/buger/jsonparser"
)

// NoDomainReason is the NotPresent reason when a request names no trust domain.
const NoDomainReason = "No site.domain present"

// KeySetSource provides the key set of a trust domain. *KeySetCache implements it.
type KeySetSource interface {
	Get(ctx context.Context, domain string) (*KeySet, error)
}

// Verifier checks request-id signatures carried in ext.trusted_server.
type Verifier struct {
	keys KeySetSource
}

// NewVerifier creates a verifier that resolves keys through keys.
func NewVerifier(keys KeySetSource) *Verifier {
	return &Verifier{keys: keys}
}

// SignatureFields is the signature block read from a request extension.
type SignatureFields struct {
	Signature RawURLBase64
	KeyID     string
}

// ExtractSignatureFields reads ext.trusted_server.signature and ext.trusted_server.kid.
// A missing block or signature is KindInvalidSignature; a missing kid is KindKeyNotFound.
func ExtractSignatureFields(ext []byte) (*SignatureFields, error) {
	block, dataType, _, err := jsonparser.Get(ext, "trusted_server")
	if err != nil || dataType != jsonparser.Object {
		return nil, invalidSignature("Missing ext.trusted_server")
	}

	signature, err := jsonparser.GetString(block, "signature")
	if err != nil {
		return nil, invalidSignature("Missing ext.trusted_server.signature")
	}

	kid, err := jsonparser.GetString(block, "kid")
	if err != nil {
		return nil, keyNotFound("Missing ext.trusted_server.kid")
	}

	return &SignatureFields{Signature: RawURLBase64(signature), KeyID: kid}, nil
}

// Verify checks that ext carries a valid Ed25519 signature of requestID made with a
// key published by domain. It returns the kid on success.
//
// Processing flow:
//  1. Extract signature and kid from ext.trusted_server
//  2. Load the domain's key set (cached)
//  3. Find the key by kid
//  4. Verify the signature over the UTF-8 bytes of requestID
func (v *Verifier) Verify(ctx context.Context, requestID string, ext []byte, domain string) (string, error) {
	// Step 1: Extract signature fields
	fields, err := ExtractSignatureFields(ext)
	if err != nil {
		return "", err
	}

	if domain == "" {
		return "", &VerificationError{Kind: KindNoDomain}
	}

	// Step 2: Load key set
	keySet, err := v.keys.Get(ctx, domain)
	if err != nil {
		return "", err
	}

	// Step 3: Find key
	key, ok := keySet.Find(fields.KeyID)
	if !ok {
		return "", keyNotFound("Key %s not found in JWKS", fields.KeyID)
	}

	// Step 4: Verify
	if err := VerifyEd25519(key.X, fields.Signature, requestID); err != nil {
		return "", err
	}

	return fields.KeyID, nil
}

// VerifySignature runs Verify and folds the result into a SignatureOutcome.
// With the signature block present and no domain, verification is skipped and
// the outcome is NotPresent.
func (v *Verifier) VerifySignature(ctx context.Context, requestID string, ext []byte, domain string) SignatureOutcome {
	kid, err := v.Verify(ctx, requestID, ext, domain)
	if err == nil {
		return Verified(kid)
	}

	var verr *VerificationError
	if errors.As(err, &verr) && verr.Kind == KindNoDomain {
		return NotPresent(NoDomainReason)
	}
	return Failed(err.Error())
}
