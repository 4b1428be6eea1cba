package core

// MediationBid is a single pre-computed bid supplied by a bidder for mediation.
// Exactly one of Price or EncodedPrice is expected; EncodedPrice wins when both are set.
type MediationBid struct {
	ImpID        string       `json:"imp_id"`
	Price        *float64     `json:"price,omitempty"`
	EncodedPrice EncodedPrice `json:"encoded_price,omitempty"`
	AdM          string       `json:"adm,omitempty"`
	W            int64        `json:"w"`
	H            int64        `json:"h"`
	CrID         string       `json:"crid,omitempty"`
	ADomain      []string     `json:"adomain,omitempty"`
}

// BidderResponse groups the bids of one named bidder. Bid order is the tie-break order.
type BidderResponse struct {
	Bidder string         `json:"bidder"`
	Bids   []MediationBid `json:"bids"`
}

// MediationConfig holds per-call mediation settings.
type MediationConfig struct {
	PriceFloor *float64 `json:"price_floor,omitempty"`
}

// Floor returns the configured price floor, or 0 when none is set.
func (c *MediationConfig) Floor() float64 {
	if c == nil || c.PriceFloor == nil {
		return 0
	}
	return *c.PriceFloor
}

// ResolvedBid is a mediation bid with its price resolved to a number.
// It only lives for the duration of one mediation call.
type ResolvedBid struct {
	Bidder string
	Bid    *MediationBid
	Price  float64
}

// MediationResult contains the outcome of winner selection across all impressions.
type MediationResult struct {
	// Winners maps impression id to its winning bid (absent if no bid cleared the floor)
	Winners map[string]*ResolvedBid

	// ImpOrder lists impression ids in the order they were first seen
	ImpOrder []string

	// BidsConsidered is the number of resolved bids across all bidders
	BidsConsidered int

	// FloorRejected is the number of bids dropped by the price floor
	FloorRejected int
}

// MarkupRenderer produces creative markup for a slot.
// price is nil when no explicit price should be shown in the creative.
type MarkupRenderer func(host, crid string, w, h int64, price *float64) string
