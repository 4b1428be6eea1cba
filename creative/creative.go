// Package creative renders the mock creatives the exchange serves: iframe
// markup for bids, the SVG placeholder image, the creative page it frames, and
// the click and info pages.
package creative

import (
	"embed"
	"html/template"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stackpop/mocktioneer/core"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

func execute(name string, data any) string {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		// Templates are compiled in; execution only fails on a data shape bug.
		return ""
	}
	return sb.String()
}

// FormatPrice renders a CPM with two decimals, the form used in creative URLs and labels.
func FormatPrice(price float64) string {
	return decimal.NewFromFloat(price).StringFixed(2)
}

func formatBid(bid *float64) string {
	if bid == nil {
		return ""
	}
	return FormatPrice(*bid)
}

type iframeData struct {
	Host string
	CrID string
	W, H int64
	Bid  string
}

// IframeHTML returns the iframe adm pointing at the creative page for the slot.
// The bid query parameter is added only when bid is non-nil.
func IframeHTML(host, crid string, w, h int64, bid *float64) string {
	return execute("iframe.html.tmpl", iframeData{
		Host: host,
		CrID: crid,
		W:    w,
		H:    h,
		Bid:  formatBid(bid),
	})
}

// Markup adapts IframeHTML to core.MarkupRenderer.
func Markup(host, crid string, w, h int64, price *float64) string {
	return IframeHTML(host, crid, w, h, price)
}

var _ core.MarkupRenderer = Markup

type svgData struct {
	W, H        int64
	Font        int64
	CaptionFont int64
	CaptionY    int64
	BidLabel    string
}

// SVG renders the placeholder image for a slot: the size as a title and,
// when bid is set, the price in the caption.
func SVG(w, h int64, bid *float64) string {
	// fit "WxH" within the width and half the height
	font := int64(math.Max(12, math.Round(math.Min(float64(w)/5, float64(h)/2))))
	captionFont := int64(math.Round(math.Min(math.Max(float64(min(w, h))*0.06, 10), 16)))

	label := ""
	if bid != nil {
		label = " - $" + FormatPrice(*bid)
	}

	return execute("image.svg.tmpl", svgData{
		W:           w,
		H:           h,
		Font:        font,
		CaptionFont: captionFont,
		CaptionY:    h/2 + int64(math.Round(float64(font)*0.7)),
		BidLabel:    label,
	})
}

type creativeData struct {
	W, H        int64
	Host        string
	Bid         string
	PixelHTML   bool
	PixelJS     bool
	PixelHTMLID string
	PixelJSID   string
}

// PageOptions tunes the creative page.
type PageOptions struct {
	// PixelHTML embeds an <img> tracking pixel.
	PixelHTML bool
	// PixelJS fires a tracking pixel from script.
	PixelJS bool
	// Bid is forwarded to the image caption.
	Bid *float64
}

// CreativeHTML renders the page framed by IframeHTML: the SVG image wrapped in a
// click link, plus the requested tracking pixels. Each pixel gets a fresh id.
func CreativeHTML(w, h int64, host string, opts PageOptions) string {
	data := creativeData{
		W:         w,
		H:         h,
		Host:      host,
		Bid:       formatBid(opts.Bid),
		PixelHTML: opts.PixelHTML,
		PixelJS:   opts.PixelJS,
	}
	if opts.PixelHTML {
		data.PixelHTMLID = core.NewID()
	}
	if opts.PixelJS {
		data.PixelJSID = core.NewID()
	}
	return execute("creative.html.tmpl", data)
}

// ClickHTML renders the click landing page echoing the creative id and size.
func ClickHTML(crid, w, h string) string {
	return execute("click.html.tmpl", struct {
		CrID, W, H string
	}{CrID: crid, W: w, H: h})
}

type sizeRow struct {
	Size string
	CPM  string
}

// InfoHTML renders the service landing page with the size table.
func InfoHTML(host, version string) string {
	sizes := core.StandardSizes()
	rows := make([]sizeRow, 0, len(sizes))
	for _, s := range sizes {
		rows = append(rows, sizeRow{Size: s.String(), CPM: FormatPrice(core.PriceFor(s.W, s.H))})
	}
	return execute("info.html.tmpl", struct {
		Title   string
		Host    string
		Version string
		Sizes   []sizeRow
	}{
		Title:   "Mocktioneer Up",
		Host:    host,
		Version: version,
		Sizes:   rows,
	})
}

// ParseSizeParam parses a "<W>x<H><suffix>" path segment such as "300x250.svg".
func ParseSizeParam(param, suffix string) (core.Size, bool) {
	base, ok := strings.CutSuffix(param, suffix)
	if !ok {
		return core.Size{}, false
	}
	return core.ParseSize(base)
}
