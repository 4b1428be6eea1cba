package exchange

import (
	"errors"
	"net/http"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/sirupsen/logrus"

	"github.com/stackpop/mocktioneer/core"
	"github.com/stackpop/mocktioneer/creative"
	"github.com/stackpop/mocktioneer/exchangeapi"
	"github.com/stackpop/mocktioneer/verification"
)

// MediationReason is the NotPresent reason embedded in generated mediation creatives.
const MediationReason = "Mediation response"

func (s *Server) handleMediate(w http.ResponseWriter, r *http.Request) {
	var req exchangeapi.MediationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.logger.Errorf("invalid JSON: %v", err)
		s.writeError(w, r, http.StatusBadRequest, errorInvalidJSON, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.logger.Warnf("rejected mediation %s: %v", req.ID, err)
		s.writeError(w, r, http.StatusBadRequest, errorBadInput, err.Error())
		return
	}

	meta := &creative.Metadata{
		Signature: verification.NotPresent(MediationReason),
		Request:   &openrtb2.BidRequest{ID: req.ID, Imp: req.Imp},
	}

	resp, result, err := core.Mediate(req.ID, req.Ext.BidderResponses, req.Ext.Config, s.requestHost(r), creative.MarkupWithMetadata(meta))
	if err != nil {
		var priceErr *core.PriceResolutionError
		if errors.As(err, &priceErr) {
			s.metrics.RecordMediationError(priceErr.Kind)
			s.logger.Warnf("mediation %s failed: %v", req.ID, err)
			s.writeError(w, r, http.StatusUnprocessableEntity, errorPriceResolution, err.Error())
			return
		}
		s.logger.Errorf("mediation %s failed: %v", req.ID, err)
		s.writeError(w, r, http.StatusInternalServerError, errorInternal, err.Error())
		return
	}

	s.metrics.RecordMediation(result)
	for _, impID := range result.ImpOrder {
		if winner, ok := result.Winners[impID]; ok {
			s.logger.Debugf("Mediation: '%s' wins impression '%s' at $%s", winner.Bidder, impID, creative.FormatPrice(winner.Price))
		} else {
			s.logger.Debugf("Mediation: no bids above floor for impression '%s'", impID)
		}
	}
	s.logger.WithFields(logrus.Fields{
		"auction_id":     req.ID,
		"bidders":        len(req.Ext.BidderResponses),
		"bids":           result.BidsConsidered,
		"floor_rejected": result.FloorRejected,
		"seats":          len(resp.SeatBid),
	}).Info("mediation processed")

	s.writeResponse(w, r, http.StatusOK, resp)
}
