package core

// APSSlot is one ad slot of an APS TAM bid request.
type APSSlot struct {
	SlotID string
	Sizes  []Size
}

// APSBid is a synthetic bid for one APS slot. Price is only exposed to the
// caller through EncodedPrice, as on the real TAM endpoint.
type APSBid struct {
	SlotID       string
	Size         Size
	Price        float64
	EncodedPrice EncodedPrice
	ImpressionID string
	CrID         string
}

// SynthesizeAPS bids on every slot that declares at least one standard size,
// using the standard size with the highest CPM. Slots without a standard size
// get no bid. Output order follows slot order.
func SynthesizeAPS(slots []APSSlot) []APSBid {
	bids := make([]APSBid, 0, len(slots))

	for _, slot := range slots {
		size, price, ok := BestStandardSize(slot.Sizes)
		if !ok {
			continue
		}

		bids = append(bids, APSBid{
			SlotID:       slot.SlotID,
			Size:         size,
			Price:        price,
			EncodedPrice: EncodePrice(price),
			ImpressionID: NewID(),
			CrID:         NewID() + "-" + Seat,
		})
	}

	return bids
}
