package exchangeapi

import (
	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/stackpop/mocktioneer/core"
)

// MediationRequest is the body of a mediation call: the impressions of the original
// auction plus the pre-computed responses of every bidder.
type MediationRequest struct {
	ID  string         `json:"id"`
	Imp []openrtb2.Imp `json:"imp"`
	Ext MediationExt   `json:"ext"`
}

// MediationExt carries the mediation-specific inputs.
type MediationExt struct {
	BidderResponses []core.BidderResponse `json:"bidder_responses"`
	Config          *core.MediationConfig `json:"config,omitempty"`
}

// APSBidRequest is an Amazon Publisher Services TAM bid request (/e/dtb/bid).
type APSBidRequest struct {
	PubID     string    `json:"pubId"`
	Slots     []APSSlot `json:"slots"`
	PageURL   string    `json:"pageUrl,omitempty"`
	UserAgent string    `json:"ua,omitempty"`
	Timeout   *uint32   `json:"timeout,omitempty"` // milliseconds
}

// APSSlot is one slot of an APS request. Sizes are [width, height] pairs.
type APSSlot struct {
	SlotID   string      `json:"slotID"`
	Sizes    [][2]uint32 `json:"sizes"`
	SlotName string      `json:"slotName,omitempty"`
}

// APSBidResponse matches the shape of the real TAM response: everything is wrapped in "contextual".
type APSBidResponse struct {
	Contextual APSContextual `json:"contextual"`
}

// APSContextual holds the slot responses and client-side script metadata.
type APSContextual struct {
	Slots  []APSSlotResponse `json:"slots"`
	Host   string            `json:"host,omitempty"`   // event tracking host
	Status string            `json:"status,omitempty"` // "ok"
	CFE    *bool             `json:"cfe,omitempty"`    // client-side feature enablement
	EV     *bool             `json:"ev,omitempty"`     // event tracking enabled
	CFN    string            `json:"cfn,omitempty"`    // CSM script path
	CB     string            `json:"cb,omitempty"`     // callback version
	CMP    string            `json:"cmp,omitempty"`    // campaign tracking URL
}

// APSSlotResponse is the bid for one slot. Targeting keys are flat fields, as on the real endpoint.
type APSSlotResponse struct {
	SlotID    string   `json:"slotID"`
	Size      string   `json:"size"`
	CrID      string   `json:"crid,omitempty"`
	MediaType string   `json:"mediaType,omitempty"` // "d" display, "v" video
	FIF       string   `json:"fif,omitempty"`       // "1" filled
	Targeting []string `json:"targeting"`
	Meta      []string `json:"meta"`

	AmznIID  string            `json:"amzniid,omitempty"`
	AmznBid  core.EncodedPrice `json:"amznbid,omitempty"`
	AmznP    core.EncodedPrice `json:"amznp,omitempty"`
	AmznSz   string            `json:"amznsz,omitempty"`
	AmznACTT string            `json:"amznactt,omitempty"`
}

// ErrorResponse is the JSON body returned for rejected requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
