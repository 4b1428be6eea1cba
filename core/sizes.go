package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultCPM is the base price for non-standard sizes before the area bonus.
	DefaultCPM = 1.50

	// MaxAreaBonus caps the area-based bonus added to DefaultCPM.
	MaxAreaBonus = 3.00

	areaBonusDivisor = 100000
	cpmPrecision     int32 = 2
)

// Size is a creative geometry in pixels.
type Size struct {
	W int64
	H int64
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// DefaultSize is used when a request declares no size, and as the snap target for non-standard sizes.
var DefaultSize = Size{W: 300, H: 250}

// standardSizes is the single source of truth for supported sizes and their CPM.
var standardSizes = map[Size]float64{
	// Desktop & general display
	{300, 250}: 2.50, // Medium Rectangle
	{336, 280}: 2.60, // Large Rectangle
	{728, 90}:  3.00, // Leaderboard
	{970, 90}:  3.80, // Large Leaderboard
	{160, 600}: 3.20, // Wide Skyscraper
	{300, 600}: 3.50, // Half Page
	{970, 250}: 4.20, // Billboard
	{468, 60}:  2.00, // Banner
	// Mobile
	{320, 50}:  1.80, // Mobile Leaderboard
	{300, 50}:  1.70, // Mobile Banner
	{320, 100}: 2.20, // Large Mobile Banner
	{320, 480}: 2.80, // Interstitial Portrait
	{480, 320}: 2.80, // Interstitial Landscape
}

// IsStandard reports whether w x h is one of the standard ad sizes.
func IsStandard(w, h int64) bool {
	_, ok := standardSizes[Size{W: w, H: h}]
	return ok
}

// PriceFor returns the CPM for a size: the fixed table value for standard sizes,
// otherwise DefaultCPM + min(area/100000, MaxAreaBonus) rounded to 2 decimals.
func PriceFor(w, h int64) float64 {
	if cpm, ok := standardSizes[Size{W: w, H: h}]; ok {
		return cpm
	}

	area := decimal.NewFromInt(w).Mul(decimal.NewFromInt(h))
	bonus := decimal.Min(
		area.Div(decimal.NewFromInt(areaBonusDivisor)),
		decimal.NewFromFloat(MaxAreaBonus),
	)

	price, _ := decimal.NewFromFloat(DefaultCPM).Add(bonus).Round(cpmPrecision).Float64()
	return price
}

// StandardOrDefault returns s unchanged when it is a standard size, DefaultSize otherwise.
func StandardOrDefault(s Size) Size {
	if IsStandard(s.W, s.H) {
		return s
	}
	return DefaultSize
}

// StandardSizes returns all standard sizes ordered by width, then height.
func StandardSizes() []Size {
	sizes := make([]Size, 0, len(standardSizes))
	for s := range standardSizes {
		sizes = append(sizes, s)
	}
	sort.Slice(sizes, func(i, j int) bool {
		if sizes[i].W != sizes[j].W {
			return sizes[i].W < sizes[j].W
		}
		return sizes[i].H < sizes[j].H
	})
	return sizes
}

// ParseSize parses "WxH" into a Size. Both dimensions must be positive.
func ParseSize(s string) (Size, bool) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return Size{}, false
	}
	w, err := strconv.ParseInt(ws, 10, 64)
	if err != nil || w < 1 {
		return Size{}, false
	}
	h, err := strconv.ParseInt(hs, 10, 64)
	if err != nil || h < 1 {
		return Size{}, false
	}
	return Size{W: w, H: h}, true
}
