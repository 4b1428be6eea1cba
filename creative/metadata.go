package creative

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stackpop/mocktioneer/core"
	"github.com/stackpop/mocktioneer/verification"
)

const (
	metadataOpen  = "<!-- MOCKTIONEER_METADATA\n"
	metadataClose = "\n-->\n"

	badgeStyle = "position:absolute;bottom:0;right:0;font-size:9px;padding:1px 6px;" +
		"background:%s;color:#fff;pointer-events:none;z-index:1;font-family:system-ui,sans-serif"
)

// Metadata is embedded as a comment ahead of annotated iframe markup.
type Metadata struct {
	Signature verification.SignatureOutcome `json:"signature"`
	Request   any                           `json:"request"`
	// Response is the auction response with adm stripped.
	Response any `json:"response,omitempty"`
}

// Badge returns the overlay shown on the creative for a verification outcome.
func Badge(outcome verification.SignatureOutcome) string {
	var background, text string
	switch outcome.Status {
	case verification.StatusVerified:
		background, text = "rgba(0,128,0,.85)", "✔︎ Request signature verified"
	case verification.StatusFailed:
		background, text = "rgba(200,0,0,.85)", "❌ Request signature not verified"
	default:
		background, text = "rgba(128,128,128,.75)", "No signature present"
	}
	return `<div style="` + fmt.Sprintf(badgeStyle, background) + `">` + text + `</div>`
}

// MetadataComment serializes meta as an HTML comment. Every "--" in the JSON is
// rewritten to "- -" so the comment cannot be closed early.
func MetadataComment(meta *Metadata) string {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf(`{"error": %q}`, "Failed to serialize metadata: "+err.Error()))
	}
	body := string(data)
	for strings.Contains(body, "--") {
		body = strings.ReplaceAll(body, "--", "- -")
	}
	return metadataOpen + body + metadataClose
}

// IframeHTMLWithMetadata prefixes IframeHTML with the metadata comment and
// wraps the iframe in a positioned container carrying the verification badge.
func IframeHTMLWithMetadata(host, crid string, w, h int64, bid *float64, meta *Metadata) string {
	var sb strings.Builder
	sb.WriteString(MetadataComment(meta))
	fmt.Fprintf(&sb, `<div style="position:relative;display:inline-block;width:%dpx;height:%dpx">`, w, h)
	sb.WriteString(IframeHTML(host, crid, w, h, bid))
	sb.WriteString(Badge(meta.Signature))
	sb.WriteString(`</div>`)
	return sb.String()
}

// MarkupWithMetadata returns a core.MarkupRenderer that annotates every
// creative with meta.
func MarkupWithMetadata(meta *Metadata) core.MarkupRenderer {
	return func(host, crid string, w, h int64, price *float64) string {
		return IframeHTMLWithMetadata(host, crid, w, h, price, meta)
	}
}
