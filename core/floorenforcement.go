package core

import (
	"github.com/shopspring/decimal"
)

// BidMeetsFloor returns true if the bid price meets or exceeds the floor price.
// Prices are compared exactly in decimal; a bid below the floor by any amount fails.
func BidMeetsFloor(bidPrice, floorPrice float64) bool {
	return decimal.NewFromFloat(bidPrice).GreaterThanOrEqual(decimal.NewFromFloat(floorPrice))
}

// EnforcePriceFloor keeps the bids priced at or above floor, preserving order.
// Returns the eligible bids and the number of bids rejected.
func EnforcePriceFloor(bids []*ResolvedBid, floor float64) (eligible []*ResolvedBid, rejected int) {
	eligible = make([]*ResolvedBid, 0, len(bids))

	for _, bid := range bids {
		if BidMeetsFloor(bid.Price, floor) {
			eligible = append(eligible, bid)
		} else {
			rejected++
		}
	}

	return eligible, rejected
}
