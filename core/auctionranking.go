package core

// SelectWinner returns the highest priced bid, or nil for an empty slice.
// The leader is only replaced on a strictly greater price, so on a tie the
// earliest bid in encounter order wins.
func SelectWinner(bids []*ResolvedBid) *ResolvedBid {
	var winner *ResolvedBid
	for _, bid := range bids {
		if winner == nil || bid.Price > winner.Price {
			winner = bid
		}
	}
	return winner
}

// BestStandardSize picks the standard size with the highest CPM among sizes.
// Non-standard sizes are ignored; on equal CPM the later size wins.
// Returns false when sizes contains no standard size.
func BestStandardSize(sizes []Size) (Size, float64, bool) {
	var (
		best  Size
		price float64
		found bool
	)

	for _, s := range sizes {
		if !IsStandard(s.W, s.H) {
			continue
		}
		cpm := PriceFor(s.W, s.H)
		if !found || cpm >= price {
			best, price, found = s, cpm, true
		}
	}

	return best, price, found
}
