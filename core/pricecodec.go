package core

import (
	"encoding/base64"
	"math"
	"strconv"
	"unicode/utf8"
)

// EncodedPrice is an opaque price token standing in for an exchange's proprietary
// price obfuscation. The mock encoding is standard base64 of the decimal price,
// so it can be decoded for testing (e.g. "Mi41" -> 2.5).
type EncodedPrice string

// EncodePrice encodes price as an opaque token.
func EncodePrice(price float64) EncodedPrice {
	text := strconv.FormatFloat(price, 'f', -1, 64)
	return EncodedPrice(base64.StdEncoding.EncodeToString([]byte(text)))
}

// Decode recovers the price from the token. It fails on any input that was not
// produced by EncodePrice for a finite non-negative price.
func (e EncodedPrice) Decode() (float64, error) {
	if e == "" {
		return 0, &PriceDecodeError{Message: "encoded price is empty"}
	}

	raw, err := base64.StdEncoding.DecodeString(string(e))
	if err != nil {
		return 0, &PriceDecodeError{Message: "encoded price is not valid base64: " + err.Error()}
	}
	if !utf8.Valid(raw) {
		return 0, &PriceDecodeError{Message: "encoded price is not valid UTF-8"}
	}

	price, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, &PriceDecodeError{Message: "encoded price is not a number: " + strconv.Quote(string(raw))}
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, &PriceDecodeError{Message: "encoded price out of range: " + strconv.Quote(string(raw))}
	}

	return price, nil
}

// String returns the raw token.
func (e EncodedPrice) String() string {
	return string(e)
}
