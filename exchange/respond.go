package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/stackpop/mocktioneer/exchangeapi"
)

const cborContentType = "application/cbor"

// Error codes returned in exchangeapi.ErrorResponse.
const (
	errorInvalidJSON     = "invalid_json"
	errorBadInput        = "bad_input"
	errorPriceResolution = "price_resolution"
	errorUnavailable     = "unavailable"
	errorInternal        = "internal"
)

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("%w at offset %d", err, syntaxErr.Offset)
		}
		return err
	}
	return nil
}

func acceptsCBOR(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == cborContentType {
			return true
		}
	}
	return false
}

// encodeCBOR converts v through its JSON form so CBOR carries exactly the JSON field names and omissions.
func encodeCBOR(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&generic); err != nil {
		return nil, err
	}
	return cbor.Marshal(generic)
}

// writeResponse renders v as JSON, or as CBOR when the client accepts it.
func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, status int, v any) {
	if acceptsCBOR(r) {
		data, err := encodeCBOR(v)
		if err != nil {
			s.logger.Errorf("Cannot encode CBOR response: %v", err)
			s.writeError(w, r, http.StatusInternalServerError, errorInternal, "failed to encode response")
			return
		}
		w.Header().Set("Content-Type", cborContentType)
		w.WriteHeader(status)
		if _, err := w.Write(data); err != nil {
			s.logger.Errorf("Cannot make HTTP response back: %v", err)
		}
		return
	}

	if err := s.rnr.JSON(w, status, v); err != nil {
		s.logger.Errorf("Cannot make HTTP response back: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	if err := s.rnr.JSON(w, status, exchangeapi.ErrorResponse{Error: code, Message: message}); err != nil {
		s.logger.Errorf("Cannot make HTTP error response back: %v", err)
	}
}

func (s *Server) writeMarkup(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, body); err != nil {
		s.logger.Errorf("Cannot make HTTP response back: %v", err)
	}
}
