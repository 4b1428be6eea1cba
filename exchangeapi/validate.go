package exchangeapi

import (
	"fmt"

	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/stackpop/mocktioneer/core"
)

func badInput(format string, args ...any) error {
	return &core.BadInputError{Message: fmt.Sprintf(format, args...)}
}

// ValidateBidRequest checks the parts of an auction request the exchange reads.
func ValidateBidRequest(req *openrtb2.BidRequest) error {
	for i := range req.Imp {
		imp := &req.Imp[i]
		if _, err := core.PriceOverride(imp); err != nil {
			return err
		}
		if imp.Banner != nil {
			if imp.Banner.W != nil && *imp.Banner.W < 1 {
				return badInput("imp[%d].banner.w must be >= 1", i)
			}
			if imp.Banner.H != nil && *imp.Banner.H < 1 {
				return badInput("imp[%d].banner.h must be >= 1", i)
			}
		}
	}
	return nil
}

// Validate checks the shape of a mediation request. Empty impression and bidder
// lists are allowed; they produce an empty response.
func (r *MediationRequest) Validate() error {
	if r.ID == "" {
		return badInput("id is required")
	}

	for i, imp := range r.Imp {
		if imp.ID == "" {
			return badInput("imp[%d].id is required", i)
		}
	}

	if floor := r.Ext.Config.Floor(); floor < 0 {
		return badInput("ext.config.price_floor must be >= 0, got %v", floor)
	}

	for i, response := range r.Ext.BidderResponses {
		if response.Bidder == "" {
			return badInput("ext.bidder_responses[%d].bidder is required", i)
		}
		for j, bid := range response.Bids {
			path := fmt.Sprintf("ext.bidder_responses[%d].bids[%d]", i, j)
			if bid.ImpID == "" {
				return badInput("%s.imp_id is required", path)
			}
			if bid.Price != nil && *bid.Price < 0 {
				return badInput("%s.price must be >= 0, got %v", path, *bid.Price)
			}
			if bid.W < 1 || bid.H < 1 {
				return badInput("%s: w and h must be >= 1, got %dx%d", path, bid.W, bid.H)
			}
		}
	}

	return nil
}

// Validate checks that an APS request has at least one slot.
func (r *APSBidRequest) Validate() error {
	if len(r.Slots) == 0 {
		return badInput("slots must not be empty")
	}
	return nil
}
