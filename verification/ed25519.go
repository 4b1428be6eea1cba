package verification

import (
	"crypto/ed25519"
	"errors"

	"filippo.io/edwards25519"
	"github.com/veraison/go-cose"
)

// VerifyEd25519 verifies a detached Ed25519 signature over message.
// Key and signature are base64url without padding and must decode to exactly
// 32 and 64 bytes, and the key must be a point on the curve; any encoding,
// length or point problem is KindInvalidSignature, while
// a cryptographic mismatch is KindVerificationFailed.
func VerifyEd25519(publicKey, signature RawURLBase64, message string) error {
	keyBytes, err := publicKey.Decode()
	if err != nil {
		return invalidSignature("Invalid public key encoding: %v", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return invalidSignature("Invalid public key length: expected %d, got %d", ed25519.PublicKeySize, len(keyBytes))
	}

	if _, err := new(edwards25519.Point).SetBytes(keyBytes); err != nil {
		return invalidSignature("Invalid public key: %v", err)
	}

	sigBytes, err := signature.Decode()
	if err != nil {
		return invalidSignature("Invalid signature encoding: %v", err)
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return invalidSignature("Invalid signature length: expected %d, got %d", ed25519.SignatureSize, len(sigBytes))
	}

	verifier, err := cose.NewVerifier(cose.AlgorithmEdDSA, ed25519.PublicKey(keyBytes))
	if err != nil {
		return invalidSignature("Invalid public key: %v", err)
	}

	if err := verifier.Verify([]byte(message), sigBytes); err != nil {
		if errors.Is(err, cose.ErrVerification) {
			return &VerificationError{Kind: KindVerificationFailed, Err: err}
		}
		return &VerificationError{Kind: KindVerificationFailed, Message: err.Error(), Err: err}
	}

	return nil
}
