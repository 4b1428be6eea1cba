package core

import (
	"regexp"
	"strings"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestSynthesizeAPS(t *testing.T) {
	slots := []APSSlot{
		{SlotID: "header", Sizes: []Size{{300, 250}, {728, 90}}},
		{SlotID: "odd", Sizes: []Size{{123, 456}}},
		{SlotID: "sidebar", Sizes: []Size{{160, 600}}},
	}

	bids := SynthesizeAPS(slots)

	assert.Equal(t, 2, len(bids))

	check.Equal(t, "header", bids[0].SlotID)
	check.Equal(t, Size{728, 90}, bids[0].Size)
	check.Equal(t, 3.00, bids[0].Price)
	decoded, err := bids[0].EncodedPrice.Decode()
	check.NoError(t, err)
	check.Equal(t, 3.00, decoded)

	check.Equal(t, "sidebar", bids[1].SlotID)
	check.Equal(t, 3.20, bids[1].Price)

	for _, bid := range bids {
		check.Equal(t, 32, len(bid.ImpressionID))
		check.True(t, strings.HasSuffix(bid.CrID, "-mocktioneer"))
	}
	check.NotEqual(t, bids[0].ImpressionID, bids[1].ImpressionID)
}

func TestSynthesizeAPS_NoSlots(t *testing.T) {
	bids := SynthesizeAPS(nil)
	check.NotNil(t, bids)
	check.Equal(t, 0, len(bids))
}

func TestNewID(t *testing.T) {
	hexID := regexp.MustCompile(`^[0-9a-f]{32}$`)
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		id := NewID()
		check.True(t, hexID.MatchString(id))
		check.False(t, seen[id])
		seen[id] = true
	}
}
