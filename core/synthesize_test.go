package core

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/prebid/openrtb/v20/openrtb2"
)

// recordingRenderer captures render calls and returns a predictable markup string.
type recordingRenderer struct {
	calls []renderCall
}

type renderCall struct {
	host  string
	crid  string
	w, h  int64
	price *float64
}

func (r *recordingRenderer) render(host, crid string, w, h int64, price *float64) string {
	r.calls = append(r.calls, renderCall{host: host, crid: crid, w: w, h: h, price: price})
	if price == nil {
		return fmt.Sprintf("<adm %s %dx%d>", crid, w, h)
	}
	return fmt.Sprintf("<adm %s %dx%d %.2f>", crid, w, h, *price)
}

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }

func TestSizeFromImp(t *testing.T) {
	tests := []struct {
		name     string
		imp      openrtb2.Imp
		expected Size
	}{
		{"no banner defaults", openrtb2.Imp{ID: "1"}, DefaultSize},
		{"empty banner defaults", openrtb2.Imp{ID: "1", Banner: &openrtb2.Banner{}}, DefaultSize},
		{
			"first format when w/h unset",
			openrtb2.Imp{ID: "1", Banner: &openrtb2.Banner{Format: []openrtb2.Format{{W: 320, H: 50}, {W: 728, H: 90}}}},
			Size{320, 50},
		},
		{
			"explicit w/h preferred over format",
			openrtb2.Imp{ID: "1", Banner: &openrtb2.Banner{
				W:      int64Ptr(728),
				H:      int64Ptr(90),
				Format: []openrtb2.Format{{W: 320, H: 50}},
			}},
			Size{728, 90},
		},
		{
			"only width set falls back to format",
			openrtb2.Imp{ID: "1", Banner: &openrtb2.Banner{
				W:      int64Ptr(728),
				Format: []openrtb2.Format{{W: 160, H: 600}},
			}},
			Size{160, 600},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check.Equal(t, tt.expected, SizeFromImp(&tt.imp))
		})
	}
}

func TestPriceOverride(t *testing.T) {
	imp := openrtb2.Imp{ID: "1", Ext: json.RawMessage(`{"mocktioneer":{"bid":9.99}}`)}
	bid, err := PriceOverride(&imp)
	assert.NoError(t, err)
	assert.NotNil(t, bid)
	check.Equal(t, 9.99, *bid)

	imp = openrtb2.Imp{ID: "1", Ext: json.RawMessage(`{"other":{"bid":1}}`)}
	bid, err = PriceOverride(&imp)
	check.NoError(t, err)
	check.Nil(t, bid)

	imp = openrtb2.Imp{ID: "1"}
	bid, err = PriceOverride(&imp)
	check.NoError(t, err)
	check.Nil(t, bid)

	imp = openrtb2.Imp{ID: "1", Ext: json.RawMessage(`{"mocktioneer":{"bid":"high"}}`)}
	bid, err = PriceOverride(&imp)
	check.Error(t, err)
	check.Nil(t, bid)
}

func TestSynthesize_BasicFlow(t *testing.T) {
	req := &openrtb2.BidRequest{
		ID: "auction-1",
		Imp: []openrtb2.Imp{
			{ID: "imp-a", Banner: &openrtb2.Banner{W: int64Ptr(728), H: int64Ptr(90)}},
			{ID: "imp-b", Banner: &openrtb2.Banner{Format: []openrtb2.Format{{W: 320, H: 50}}}},
		},
	}
	renderer := &recordingRenderer{}

	resp := Synthesize(req, "host.test", renderer.render)

	check.Equal(t, "auction-1", resp.ID)
	check.Equal(t, "USD", resp.Cur)
	assert.Equal(t, 1, len(resp.SeatBid))
	check.Equal(t, "mocktioneer", resp.SeatBid[0].Seat)
	assert.Equal(t, 2, len(resp.SeatBid[0].Bid))

	first := resp.SeatBid[0].Bid[0]
	check.Equal(t, "imp-a", first.ImpID)
	check.Equal(t, 3.00, first.Price)
	check.Equal(t, int64(728), first.W)
	check.Equal(t, int64(90), first.H)
	check.Equal(t, "mocktioneer-imp-a", first.CrID)
	check.Equal(t, []string{"example.com"}, first.ADomain)
	check.Equal(t, openrtb2.MarkupBanner, first.MType)
	check.Equal(t, "<adm mocktioneer-imp-a 728x90>", first.AdM)
	check.Equal(t, 32, len(first.ID))
	check.Nil(t, first.Ext)

	second := resp.SeatBid[0].Bid[1]
	check.Equal(t, "imp-b", second.ImpID)
	check.Equal(t, 1.80, second.Price)
	check.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, 2, len(renderer.calls))
	check.Equal(t, "host.test", renderer.calls[0].host)
	check.Nil(t, renderer.calls[0].price)
}

func TestSynthesize_NonStandardSizeSnapsToDefault(t *testing.T) {
	req := &openrtb2.BidRequest{
		ID:  "r",
		Imp: []openrtb2.Imp{{ID: "1", Banner: &openrtb2.Banner{W: int64Ptr(333), H: int64Ptr(222)}}},
	}

	resp := Synthesize(req, "host.test", (&recordingRenderer{}).render)

	bid := resp.SeatBid[0].Bid[0]
	check.Equal(t, int64(300), bid.W)
	check.Equal(t, int64(250), bid.H)
	check.Equal(t, 2.50, bid.Price)
}

func TestSynthesize_PriceOverride(t *testing.T) {
	req := &openrtb2.BidRequest{
		ID: "r",
		Imp: []openrtb2.Imp{{
			ID:     "1",
			Banner: &openrtb2.Banner{W: int64Ptr(300), H: int64Ptr(250)},
			Ext:    json.RawMessage(`{"mocktioneer":{"bid":9.99}}`),
		}},
	}
	renderer := &recordingRenderer{}

	resp := Synthesize(req, "host.test", renderer.render)

	bid := resp.SeatBid[0].Bid[0]
	check.Equal(t, 9.99, bid.Price)
	check.Equal(t, "<adm mocktioneer-1 300x250 9.99>", bid.AdM)
	check.Equal(t, `{"mocktioneer":{"bid":9.99}}`, string(bid.Ext))
	assert.NotNil(t, renderer.calls[0].price)
	check.Equal(t, 9.99, *renderer.calls[0].price)
}

func TestSynthesize_DefaultIDs(t *testing.T) {
	req := &openrtb2.BidRequest{Imp: []openrtb2.Imp{{}}}

	resp := Synthesize(req, "host.test", (&recordingRenderer{}).render)

	check.Equal(t, "req", resp.ID)
	bid := resp.SeatBid[0].Bid[0]
	check.Equal(t, "1", bid.ImpID)
	check.Equal(t, "mocktioneer-1", bid.CrID)
	check.Equal(t, DefaultSize.W, bid.W)
}

func TestSynthesize_NoImpressions(t *testing.T) {
	resp := Synthesize(&openrtb2.BidRequest{ID: "empty"}, "host.test", (&recordingRenderer{}).render)

	check.Equal(t, "empty", resp.ID)
	assert.Equal(t, 1, len(resp.SeatBid))
	check.Equal(t, 0, len(resp.SeatBid[0].Bid))
}

func TestSynthesize_PreservesOrderAndNeverDrops(t *testing.T) {
	imps := make([]openrtb2.Imp, 0, len(StandardSizes())+1)
	for _, s := range StandardSizes() {
		imps = append(imps, openrtb2.Imp{ID: s.String(), Banner: &openrtb2.Banner{W: int64Ptr(s.W), H: int64Ptr(s.H)}})
	}
	imps = append(imps, openrtb2.Imp{ID: "odd", Banner: &openrtb2.Banner{W: int64Ptr(1), H: int64Ptr(1)}})

	resp := Synthesize(&openrtb2.BidRequest{ID: "r", Imp: imps}, "host.test", (&recordingRenderer{}).render)

	bids := resp.SeatBid[0].Bid
	assert.Equal(t, len(imps), len(bids))
	for i, imp := range imps {
		check.Equal(t, imp.ID, bids[i].ImpID)
	}
	for i, s := range StandardSizes() {
		check.Equal(t, PriceFor(s.W, s.H), bids[i].Price)
	}
}
