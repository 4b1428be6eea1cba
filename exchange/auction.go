package exchange

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/sirupsen/logrus"

	"github.com/stackpop/mocktioneer/core"
	"github.com/stackpop/mocktioneer/creative"
	"github.com/stackpop/mocktioneer/exchangeapi"
	"github.com/stackpop/mocktioneer/verification"
)

func (s *Server) handleAuction(w http.ResponseWriter, r *http.Request) {
	var req openrtb2.BidRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.logger.Errorf("invalid JSON: %v", err)
		s.writeError(w, r, http.StatusBadRequest, errorInvalidJSON, err.Error())
		return
	}
	if err := exchangeapi.ValidateBidRequest(&req); err != nil {
		s.logger.Warnf("rejected auction %s: %v", req.ID, err)
		s.writeError(w, r, http.StatusBadRequest, errorBadInput, err.Error())
		return
	}

	outcome := s.verifyRequest(r.Context(), &req)
	resp := synthesizeWithMetadata(&req, s.requestHost(r), outcome)
	s.metrics.RecordSynthesizedBids(len(resp.SeatBid[0].Bid))

	s.logger.WithFields(logrus.Fields{
		"auction_id": req.ID,
		"imps":       len(req.Imp),
		"signature":  outcome.Status,
	}).Info("auction processed")

	s.writeResponse(w, r, http.StatusOK, resp)
}

// verifyRequest checks ext.trusted_server against the request's site.domain.
// Requests without a site domain are not verified.
func (s *Server) verifyRequest(ctx context.Context, req *openrtb2.BidRequest) verification.SignatureOutcome {
	var outcome verification.SignatureOutcome
	if req.Site == nil || req.Site.Domain == "" {
		outcome = verification.NotPresent(verification.NoDomainReason)
	} else {
		outcome = s.verifier.VerifySignature(ctx, req.ID, req.Ext, req.Site.Domain)
	}

	if outcome.Status == verification.StatusFailed {
		s.logger.Warnf("signature check failed for auction %s: %s", req.ID, outcome.Reason)
	} else {
		s.logger.Debugf("signature outcome for auction %s: %s", req.ID, outcome.Status)
	}
	s.metrics.RecordSignature(outcome)
	return outcome
}

type markupCall struct {
	host, crid string
	w, h       int64
	price      *float64
}

// synthesizeWithMetadata builds the synthetic response and annotates every adm
// with the signature outcome, the request and the response itself with adm stripped.
// The outcome is also attached as ext.mocktioneer.signature.
func synthesizeWithMetadata(req *openrtb2.BidRequest, host string, outcome verification.SignatureOutcome) *openrtb2.BidResponse {
	var calls []markupCall
	resp := core.Synthesize(req, host, func(host, crid string, w, h int64, price *float64) string {
		calls = append(calls, markupCall{host: host, crid: crid, w: w, h: h, price: price})
		return ""
	})

	meta := &creative.Metadata{Signature: outcome, Request: req}
	if stripped, err := json.Marshal(resp); err == nil {
		meta.Response = json.RawMessage(stripped)
	}

	bids := resp.SeatBid[0].Bid
	for i := range bids {
		c := calls[i]
		bids[i].AdM = creative.IframeHTMLWithMetadata(c.host, c.crid, c.w, c.h, c.price, meta)
	}

	if ext, err := json.Marshal(responseExt{Mocktioneer: mocktioneerExt{Signature: outcome}}); err == nil {
		resp.Ext = ext
	}
	return resp
}

type responseExt struct {
	Mocktioneer mocktioneerExt `json:"mocktioneer"`
}

type mocktioneerExt struct {
	Signature verification.SignatureOutcome `json:"signature"`
}
