package exchangeapi

import (
	"github.com/stackpop/mocktioneer/core"
)

const (
	apsMediaTypeDisplay = "d"
	apsFilled           = "1"
	apsAuctionOpen      = "OPEN"
	apsStatusOK         = "ok"
	apsCSMScript        = "bao-csm/direct/csm_othersv6.js"
	apsCallbackVersion  = "6"
)

var (
	apsTargetingKeys = []string{"amzniid", "amznp", "amznsz", "amznbid", "amznactt"}
	apsMetaKeys      = []string{"slotID", "mediaType", "size"}
)

// CoreSlots converts the request slots into core slots.
func (r *APSBidRequest) CoreSlots() []core.APSSlot {
	slots := make([]core.APSSlot, 0, len(r.Slots))
	for _, slot := range r.Slots {
		sizes := make([]core.Size, 0, len(slot.Sizes))
		for _, wh := range slot.Sizes {
			sizes = append(sizes, core.Size{W: int64(wh[0]), H: int64(wh[1])})
		}
		slots = append(slots, core.APSSlot{SlotID: slot.SlotID, Sizes: sizes})
	}
	return slots
}

// NewAPSBidResponse wraps synthesized APS bids in the TAM response envelope.
// The same encoded price is returned in both amznbid and amznp.
func NewAPSBidResponse(bids []core.APSBid, host string) *APSBidResponse {
	slots := make([]APSSlotResponse, 0, len(bids))
	for _, bid := range bids {
		size := bid.Size.String()
		slots = append(slots, APSSlotResponse{
			SlotID:    bid.SlotID,
			Size:      size,
			CrID:      bid.CrID,
			MediaType: apsMediaTypeDisplay,
			FIF:       apsFilled,
			Targeting: append([]string(nil), apsTargetingKeys...),
			Meta:      append([]string(nil), apsMetaKeys...),
			AmznIID:   bid.ImpressionID,
			AmznBid:   bid.EncodedPrice,
			AmznP:     bid.EncodedPrice,
			AmznSz:    size,
			AmznACTT:  apsAuctionOpen,
		})
	}

	enabled := true
	return &APSBidResponse{
		Contextual: APSContextual{
			Slots:  slots,
			Host:   "https://" + host,
			Status: apsStatusOK,
			CFE:    &enabled,
			EV:     &enabled,
			CFN:    apsCSMScript,
			CB:     apsCallbackVersion,
		},
	}
}
