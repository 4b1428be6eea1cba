package core

import (
	"github.com/prebid/openrtb/v20/openrtb2"
)

const (
	// Currency is the only currency the exchange bids in.
	Currency = "USD"
)

// ResolveBidPrice returns the numeric price of a mediation bid.
// An encoded price takes precedence over a plain one.
func ResolveBidPrice(bidder string, bid *MediationBid) (float64, error) {
	if bid.EncodedPrice != "" {
		price, err := bid.EncodedPrice.Decode()
		if err != nil {
			return 0, &PriceResolutionError{
				Kind:    PriceUndecodable,
				Bidder:  bidder,
				ImpID:   bid.ImpID,
				Message: "failed to decode encoded price: " + err.Error(),
			}
		}
		return price, nil
	}

	if bid.Price != nil {
		return *bid.Price, nil
	}

	return 0, &PriceResolutionError{
		Kind:    PriceMissing,
		Bidder:  bidder,
		ImpID:   bid.ImpID,
		Message: "bid has neither price nor encoded_price",
	}
}

// RunMediation selects one winning bid per impression across all bidder responses.
//
// Parameters:
//   - responses: Bidder responses; their order and the bid order within each is the tie-break order
//   - config: Optional mediation settings (nil means no floor)
//
// Returns:
//   - MediationResult with the winner per impression and bookkeeping counts
//   - PriceResolutionError if any bid price cannot be resolved; no partial result is returned
//
// Processing flow:
//  1. Resolve every bid price, failing the whole call on the first unresolvable price
//  2. Group resolved bids by impression id in encounter order
//  3. Enforce the price floor (inclusive)
//  4. Select the highest price per impression, earliest bid winning ties
func RunMediation(responses []BidderResponse, config *MediationConfig) (*MediationResult, error) {
	result := &MediationResult{
		Winners:  make(map[string]*ResolvedBid),
		ImpOrder: make([]string, 0),
	}

	// Step 1 & 2: Resolve prices and group by impression
	bidsByImp := make(map[string][]*ResolvedBid)
	for i := range responses {
		response := &responses[i]
		for j := range response.Bids {
			bid := &response.Bids[j]

			price, err := ResolveBidPrice(response.Bidder, bid)
			if err != nil {
				return nil, err
			}

			if _, seen := bidsByImp[bid.ImpID]; !seen {
				result.ImpOrder = append(result.ImpOrder, bid.ImpID)
			}
			bidsByImp[bid.ImpID] = append(bidsByImp[bid.ImpID], &ResolvedBid{
				Bidder: response.Bidder,
				Bid:    bid,
				Price:  price,
			})
			result.BidsConsidered++
		}
	}

	floor := config.Floor()
	for _, impID := range result.ImpOrder {
		// Step 3: Enforce the price floor
		eligible, rejected := EnforcePriceFloor(bidsByImp[impID], floor)
		result.FloorRejected += rejected

		// Step 4: Pick the winner; no winner when nothing cleared the floor
		if winner := SelectWinner(eligible); winner != nil {
			result.Winners[impID] = winner
		}
	}

	return result, nil
}

// BuildMediationResponse assembles the auction response for the winners in result.
// Winning bids are grouped into one seat per bidder, seats ordered by the bidder's
// first winning appearance and bids within a seat by impression order. Every output
// bid gets a fresh id. Winners without markup get markup from render.
func BuildMediationResponse(auctionID string, result *MediationResult, host string, render MarkupRenderer) *openrtb2.BidResponse {
	seatIndex := make(map[string]int)
	seats := make([]openrtb2.SeatBid, 0)

	for _, impID := range result.ImpOrder {
		winner, ok := result.Winners[impID]
		if !ok {
			continue
		}

		idx, exists := seatIndex[winner.Bidder]
		if !exists {
			idx = len(seats)
			seatIndex[winner.Bidder] = idx
			seats = append(seats, openrtb2.SeatBid{Seat: winner.Bidder})
		}
		seats[idx].Bid = append(seats[idx].Bid, materializeBid(impID, winner, host, render))
	}

	return &openrtb2.BidResponse{
		ID:      auctionID,
		SeatBid: seats,
		Cur:     Currency,
	}
}

func materializeBid(impID string, winner *ResolvedBid, host string, render MarkupRenderer) openrtb2.Bid {
	bid := winner.Bid

	crid := bid.CrID
	if crid == "" {
		crid = impID
	}

	adm := bid.AdM
	if adm == "" {
		price := winner.Price
		adm = render(host, crid, bid.W, bid.H, &price)
	}

	return openrtb2.Bid{
		ID:      NewID(),
		ImpID:   impID,
		Price:   winner.Price,
		AdM:     adm,
		CrID:    crid,
		W:       bid.W,
		H:       bid.H,
		ADomain: bid.ADomain,
		MType:   openrtb2.MarkupBanner,
	}
}

// Mediate runs mediation and assembles the response in one call.
// The only error is a PriceResolutionError; every other condition yields a
// valid, possibly empty, response.
func Mediate(auctionID string, responses []BidderResponse, config *MediationConfig, host string, render MarkupRenderer) (*openrtb2.BidResponse, *MediationResult, error) {
	result, err := RunMediation(responses, config)
	if err != nil {
		return nil, nil, err
	}
	return BuildMediationResponse(auctionID, result, host, render), result, nil
}
