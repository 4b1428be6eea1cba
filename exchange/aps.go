package exchange

import (
	"net/http"

	"github.com/stackpop/mocktioneer/core"
	"github.com/stackpop/mocktioneer/exchangeapi"
)

func (s *Server) handleAPSBid(w http.ResponseWriter, r *http.Request) {
	var req exchangeapi.APSBidRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.logger.Errorf("invalid APS JSON: %v", err)
		s.writeError(w, r, http.StatusBadRequest, errorInvalidJSON, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errorBadInput, err.Error())
		return
	}

	bids := core.SynthesizeAPS(req.CoreSlots())
	for _, slot := range req.Slots {
		s.logger.Debugf("APS: slot '%s' sizes %v", slot.SlotID, slot.Sizes)
	}
	s.metrics.RecordAPSSlots(len(req.Slots), len(bids))
	s.logger.Infof("APS: pub %s, %d slot(s), %d bid(s)", req.PubID, len(req.Slots), len(bids))

	s.writeResponse(w, r, http.StatusOK, exchangeapi.NewAPSBidResponse(bids, s.requestHost(r)))
}
