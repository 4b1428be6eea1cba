package core

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/prebid/openrtb/v20/openrtb2"
)

const (
	// Seat is the seat name used for synthesized bids.
	Seat = "mocktioneer"

	defaultRequestID = "req"
	defaultImpID     = "1"
	creativePrefix   = "mocktioneer-"
)

// AdvertiserDomains are attached to every synthesized bid.
var AdvertiserDomains = []string{"example.com"}

// SizeFromImp resolves the requested geometry of an impression: banner w/h when
// both are set, else the first banner format, else DefaultSize.
func SizeFromImp(imp *openrtb2.Imp) Size {
	if imp.Banner == nil {
		return DefaultSize
	}
	if imp.Banner.W != nil && imp.Banner.H != nil {
		return Size{W: *imp.Banner.W, H: *imp.Banner.H}
	}
	if len(imp.Banner.Format) > 0 {
		return Size{W: imp.Banner.Format[0].W, H: imp.Banner.Format[0].H}
	}
	return DefaultSize
}

// PriceOverride reads imp.ext.mocktioneer.bid. It returns nil without error when
// the field is absent.
func PriceOverride(imp *openrtb2.Imp) (*float64, error) {
	if len(imp.Ext) == 0 {
		return nil, nil
	}
	bid, err := jsonparser.GetFloat(imp.Ext, "mocktioneer", "bid")
	if err != nil {
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			return nil, nil
		}
		return nil, &BadInputError{Message: fmt.Sprintf("imp %q: invalid ext.mocktioneer.bid: %v", imp.ID, err)}
	}
	return &bid, nil
}

// Synthesize builds one synthetic bid per impression of req, all in a single seat.
//
// Parameters:
//   - req: Parsed bid request
//   - host: Base host used for creative URLs
//   - render: Creative markup capability
//
// Processing flow (per impression):
//  1. Resolve size and snap non-standard sizes to DefaultSize
//  2. Price from imp.ext.mocktioneer.bid if present, else the size table
//  3. Render markup with the override price (or none) and assemble the bid
//
// No impression is ever dropped. An unreadable price override is treated as absent.
func Synthesize(req *openrtb2.BidRequest, host string, render MarkupRenderer) *openrtb2.BidResponse {
	bids := make([]openrtb2.Bid, 0, len(req.Imp))

	for i := range req.Imp {
		imp := &req.Imp[i]

		impID := imp.ID
		if impID == "" {
			impID = defaultImpID
		}

		// Step 1: Resolve size
		size := StandardOrDefault(SizeFromImp(imp))

		// Step 2: Resolve price
		override, _ := PriceOverride(imp)
		price := PriceFor(size.W, size.H)
		var ext json.RawMessage
		if override != nil {
			price = *override
			ext, _ = json.Marshal(map[string]any{"mocktioneer": map[string]any{"bid": *override}})
		}

		// Step 3: Assemble bid
		crid := creativePrefix + impID
		bids = append(bids, openrtb2.Bid{
			ID:      NewID(),
			ImpID:   impID,
			Price:   price,
			AdM:     render(host, crid, size.W, size.H, override),
			CrID:    crid,
			W:       size.W,
			H:       size.H,
			ADomain: append([]string(nil), AdvertiserDomains...),
			MType:   openrtb2.MarkupBanner,
			Ext:     ext,
		})
	}

	id := req.ID
	if id == "" {
		id = defaultRequestID
	}

	return &openrtb2.BidResponse{
		ID:      id,
		Cur:     Currency,
		SeatBid: []openrtb2.SeatBid{{Seat: Seat, Bid: bids}},
	}
}
