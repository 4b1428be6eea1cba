package exchangeapi

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/prebid/openrtb/v20/openrtb2"

	"github.com/stackpop/mocktioneer/core"
)

// TestMediationRequest_Unmarshal tests decoding the mediation wire format
func TestMediationRequest_Unmarshal(t *testing.T) {
	body := `{
		"id": "auction-1",
		"imp": [{"id": "imp1", "banner": {"w": 300, "h": 250}}],
		"ext": {
			"bidder_responses": [
				{"bidder": "amazon-aps", "bids": [{"imp_id": "imp1", "encoded_price": "Mi41", "w": 300, "h": 250}]},
				{"bidder": "prebid", "bids": [{"imp_id": "imp1", "price": 2.25, "adm": "<div/>", "w": 300, "h": 250, "crid": "c1", "adomain": ["a.com"]}]}
			],
			"config": {"price_floor": 1.5}
		}
	}`

	var req MediationRequest
	assert.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.NoError(t, req.Validate())

	check.Equal(t, "auction-1", req.ID)
	check.Equal(t, 1, len(req.Imp))
	assert.Equal(t, 2, len(req.Ext.BidderResponses))

	aps := req.Ext.BidderResponses[0].Bids[0]
	check.Equal(t, core.EncodedPrice("Mi41"), aps.EncodedPrice)
	check.Nil(t, aps.Price)

	prebid := req.Ext.BidderResponses[1].Bids[0]
	assert.NotNil(t, prebid.Price)
	check.Equal(t, 2.25, *prebid.Price)
	check.Equal(t, "<div/>", prebid.AdM)
	check.Equal(t, "c1", prebid.CrID)
	check.Equal(t, []string{"a.com"}, prebid.ADomain)

	check.Equal(t, 1.5, req.Ext.Config.Floor())
}

func TestMediationRequest_Validate(t *testing.T) {
	price := func(v float64) *float64 { return &v }
	valid := func() MediationRequest {
		return MediationRequest{
			ID:  "auction",
			Imp: []openrtb2.Imp{{ID: "imp1"}},
			Ext: MediationExt{BidderResponses: []core.BidderResponse{{
				Bidder: "bidder-a",
				Bids:   []core.MediationBid{{ImpID: "imp1", Price: price(1), W: 300, H: 250}},
			}}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *MediationRequest)
		wantErr bool
	}{
		{"valid", func(*MediationRequest) {}, false},
		{"empty lists allowed", func(r *MediationRequest) { r.Imp = nil; r.Ext.BidderResponses = nil }, false},
		{"missing price is not a shape error", func(r *MediationRequest) { r.Ext.BidderResponses[0].Bids[0].Price = nil }, false},
		{"missing id", func(r *MediationRequest) { r.ID = "" }, true},
		{"missing imp id", func(r *MediationRequest) { r.Imp[0].ID = "" }, true},
		{"missing bidder", func(r *MediationRequest) { r.Ext.BidderResponses[0].Bidder = "" }, true},
		{"missing bid imp id", func(r *MediationRequest) { r.Ext.BidderResponses[0].Bids[0].ImpID = "" }, true},
		{"negative price", func(r *MediationRequest) { r.Ext.BidderResponses[0].Bids[0].Price = price(-1) }, true},
		{"zero width", func(r *MediationRequest) { r.Ext.BidderResponses[0].Bids[0].W = 0 }, true},
		{"negative floor", func(r *MediationRequest) { r.Ext.Config = &core.MediationConfig{PriceFloor: price(-0.5)} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)

			err := req.Validate()
			if !tt.wantErr {
				check.NoError(t, err)
				return
			}

			check.Error(t, err)
			var badInput *core.BadInputError
			check.True(t, errors.As(err, &badInput))
		})
	}
}

func TestValidateBidRequest(t *testing.T) {
	width := int64(0)

	check.NoError(t, ValidateBidRequest(&openrtb2.BidRequest{ID: "r", Imp: []openrtb2.Imp{{ID: "1"}}}))
	check.Error(t, ValidateBidRequest(&openrtb2.BidRequest{Imp: []openrtb2.Imp{{ID: "1", Banner: &openrtb2.Banner{W: &width}}}}))
	check.Error(t, ValidateBidRequest(&openrtb2.BidRequest{Imp: []openrtb2.Imp{{ID: "1", Ext: json.RawMessage(`{"mocktioneer":{"bid":"x"}}`)}}}))
}

func TestAPSBidRequest_UnmarshalAndConvert(t *testing.T) {
	body := `{
		"pubId": "5555",
		"slots": [
			{"slotID": "header", "sizes": [[300, 250], [728, 90]], "slotName": "header-slot"},
			{"slotID": "footer", "sizes": [[320, 50]]}
		],
		"pageUrl": "https://example.com/page",
		"ua": "test-agent",
		"timeout": 800
	}`

	var req APSBidRequest
	assert.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.NoError(t, req.Validate())

	check.Equal(t, "5555", req.PubID)
	check.Equal(t, "https://example.com/page", req.PageURL)
	assert.NotNil(t, req.Timeout)
	check.Equal(t, uint32(800), *req.Timeout)

	slots := req.CoreSlots()
	assert.Equal(t, 2, len(slots))
	check.Equal(t, "header", slots[0].SlotID)
	check.Equal(t, []core.Size{{W: 300, H: 250}, {W: 728, H: 90}}, slots[0].Sizes)
	check.Equal(t, []core.Size{{W: 320, H: 50}}, slots[1].Sizes)
}

func TestAPSBidRequest_ValidateEmptySlots(t *testing.T) {
	req := APSBidRequest{PubID: "5555"}
	err := req.Validate()
	var badInput *core.BadInputError
	check.True(t, errors.As(err, &badInput))
}

func TestNewAPSBidResponse(t *testing.T) {
	bids := []core.APSBid{{
		SlotID:       "header",
		Size:         core.Size{W: 728, H: 90},
		Price:        3.00,
		EncodedPrice: core.EncodePrice(3.00),
		ImpressionID: "iid",
		CrID:         "crid-mocktioneer",
	}}

	resp := NewAPSBidResponse(bids, "host.test")

	contextual := resp.Contextual
	check.Equal(t, "https://host.test", contextual.Host)
	check.Equal(t, "ok", contextual.Status)
	assert.NotNil(t, contextual.CFE)
	check.True(t, *contextual.CFE)
	check.True(t, *contextual.EV)
	check.Equal(t, "bao-csm/direct/csm_othersv6.js", contextual.CFN)
	check.Equal(t, "6", contextual.CB)
	check.Equal(t, "", contextual.CMP)

	assert.Equal(t, 1, len(contextual.Slots))
	slot := contextual.Slots[0]
	check.Equal(t, "header", slot.SlotID)
	check.Equal(t, "728x90", slot.Size)
	check.Equal(t, "728x90", slot.AmznSz)
	check.Equal(t, "d", slot.MediaType)
	check.Equal(t, "1", slot.FIF)
	check.Equal(t, "OPEN", slot.AmznACTT)
	check.Equal(t, "iid", slot.AmznIID)
	check.Equal(t, slot.AmznBid, slot.AmznP)
	check.Equal(t, []string{"amzniid", "amznp", "amznsz", "amznbid", "amznactt"}, slot.Targeting)
	check.Equal(t, []string{"slotID", "mediaType", "size"}, slot.Meta)

	price, err := slot.AmznBid.Decode()
	check.NoError(t, err)
	check.Equal(t, 3.00, price)

	data, err := json.Marshal(resp)
	assert.NoError(t, err)
	var generic map[string]map[string]any
	assert.NoError(t, json.Unmarshal(data, &generic))
	_, hasCmp := generic["contextual"]["cmp"]
	check.False(t, hasCmp)
}

func TestNewAPSBidResponse_NoBids(t *testing.T) {
	data, err := json.Marshal(NewAPSBidResponse(nil, "host.test"))
	assert.NoError(t, err)
	check.True(t, json.Valid(data))
	check.Equal(t, `{"contextual":{"slots":[],"host":"https://host.test","status":"ok","cfe":true,"ev":true,"cfn":"bao-csm/direct/csm_othersv6.js","cb":"6"}}`, string(data))
}
