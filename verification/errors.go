package verification

import "fmt"

// ErrorKind discriminates verification failures so callers can branch on them.
type ErrorKind int

const (
	// KindInvalidSignature covers a missing signature block or field and malformed key or signature encoding.
	KindInvalidSignature ErrorKind = iota + 1
	// KindKeyNotFound covers a missing kid and a kid absent from the key set.
	KindKeyNotFound
	// KindVerificationFailed is a cryptographic mismatch.
	KindVerificationFailed
	// KindTransport is a key-set fetch or parse failure.
	KindTransport
	// KindNoDomain means there was no trust domain to fetch keys from.
	KindNoDomain
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidSignature:
		return "invalid_signature"
	case KindKeyNotFound:
		return "key_not_found"
	case KindVerificationFailed:
		return "verification_failed"
	case KindTransport:
		return "transport"
	case KindNoDomain:
		return "no_domain"
	default:
		return "unknown"
	}
}

// VerificationError is the single error type returned by this package.
type VerificationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (err *VerificationError) Error() string {
	switch err.Kind {
	case KindInvalidSignature:
		return "Invalid signature: " + err.Message
	case KindKeyNotFound:
		return "Key not found: " + err.Message
	case KindVerificationFailed:
		return "Signature verification failed"
	case KindTransport:
		return "HTTP error: " + err.Message
	case KindNoDomain:
		return "No domain for JWKS verification"
	default:
		return err.Message
	}
}

func (err *VerificationError) Unwrap() error {
	return err.Err
}

// Code returns a stable numeric code for the error kind.
func (err *VerificationError) Code() int {
	return int(err.Kind)
}

func invalidSignature(format string, args ...any) error {
	return &VerificationError{Kind: KindInvalidSignature, Message: fmt.Sprintf(format, args...)}
}

func keyNotFound(format string, args ...any) error {
	return &VerificationError{Kind: KindKeyNotFound, Message: fmt.Sprintf(format, args...)}
}

func transportError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg += ": " + err.Error()
	}
	return &VerificationError{Kind: KindTransport, Message: msg, Err: err}
}
