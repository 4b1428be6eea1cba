package core

import "fmt"

// Numeric codes for errors raised by the core.
const (
	UnknownErrorCode = 999
	BadInputErrorCode = iota
	PriceResolutionErrorCode
	PriceDecodeErrorCode
)

// PriceResolutionKind discriminates why a mediation bid price could not be resolved.
type PriceResolutionKind int

const (
	// PriceMissing means the bid carried neither a plain nor an encoded price.
	PriceMissing PriceResolutionKind = iota
	// PriceUndecodable means the encoded price could not be decoded.
	PriceUndecodable
)

func (k PriceResolutionKind) String() string {
	switch k {
	case PriceMissing:
		return "price_missing"
	case PriceUndecodable:
		return "price_undecodable"
	default:
		return "unknown"
	}
}

// BadInputError should be used when a request is malformed or misses required fields.
type BadInputError struct {
	Message string
}

func (err *BadInputError) Error() string {
	return err.Message
}

func (err *BadInputError) Code() int {
	return BadInputErrorCode
}

// PriceResolutionError aborts a whole mediation call.
type PriceResolutionError struct {
	Kind    PriceResolutionKind
	Bidder  string
	ImpID   string
	Message string
}

func (err *PriceResolutionError) Error() string {
	return fmt.Sprintf("%s (bidder=%s, imp=%s)", err.Message, err.Bidder, err.ImpID)
}

func (err *PriceResolutionError) Code() int {
	return PriceResolutionErrorCode
}

// PriceDecodeError is returned when an encoded price token cannot be decoded.
type PriceDecodeError struct {
	Message string
}

func (err *PriceDecodeError) Error() string {
	return err.Message
}

func (err *PriceDecodeError) Code() int {
	return PriceDecodeErrorCode
}
