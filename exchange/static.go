package exchange

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ggicci/httpin"

	"github.com/stackpop/mocktioneer/core"
	"github.com/stackpop/mocktioneer/creative"
)

const (
	htmlContentType = "text/html; charset=utf-8"
	svgContentType  = "image/svg+xml"
	gifContentType  = "image/gif"

	trackingCookie    = "mtkid"
	trackingCookieAge = 365 * 24 * time.Hour
)

// transparentGIF is a 1x1 transparent GIF89a.
var transparentGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00,
	0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02,
	0x44, 0x01, 0x00, 0x3b,
}

type imageInput struct {
	Size string `in:"path=size"`
	Bid  string `in:"query=bid"`
}

type creativeInput struct {
	Size      string `in:"path=size"`
	Bid       string `in:"query=bid"`
	Pixel     bool   `in:"query=pixel;default=true"`
	PixelHTML bool   `in:"query=pixel_html;default=true"`
	PixelJS   bool   `in:"query=pixel_js;default=true"`
}

type clickInput struct {
	CrID string `in:"query=crid"`
	W    string `in:"query=w"`
	H    string `in:"query=h"`
}

// parseBid reads an optional bid query value; malformed values are ignored.
func parseBid(value string) *float64 {
	if value == "" {
		return nil
	}
	bid, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &bid
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeMarkup(w, htmlContentType, creative.InfoHTML(s.requestHost(r), Version))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if err := s.rnr.Text(w, http.StatusOK, "ok"); err != nil {
		s.logger.Errorf("Cannot make HTTP response back: %v", err)
	}
}

func (s *Server) handleStaticImage(w http.ResponseWriter, r *http.Request) {
	input := r.Context().Value(httpin.Input).(*imageInput)

	size, ok := creative.ParseSizeParam(input.Size, ".svg")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !core.IsStandard(size.W, size.H) {
		s.logger.Warnf("non-standard image size %s", size)
		http.NotFound(w, r)
		return
	}

	s.writeMarkup(w, svgContentType, creative.SVG(size.W, size.H, parseBid(input.Bid)))
}

func (s *Server) handleStaticCreative(w http.ResponseWriter, r *http.Request) {
	input := r.Context().Value(httpin.Input).(*creativeInput)

	size, ok := creative.ParseSizeParam(input.Size, ".html")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !core.IsStandard(size.W, size.H) {
		s.logger.Warnf("non-standard creative size %s", size)
		http.NotFound(w, r)
		return
	}

	page := creative.CreativeHTML(size.W, size.H, s.requestHost(r), creative.PageOptions{
		PixelHTML: input.Pixel && input.PixelHTML,
		PixelJS:   input.Pixel && input.PixelJS,
		Bid:       parseBid(input.Bid),
	})
	s.writeMarkup(w, htmlContentType, page)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	input := r.Context().Value(httpin.Input).(*clickInput)
	s.logger.Infof("click crid=%s, size=%sx%s", input.CrID, input.W, input.H)
	s.writeMarkup(w, htmlContentType, creative.ClickHTML(input.CrID, input.W, input.H))
}

// handlePixel serves the tracking pixel and sets the mtkid cookie on first sight.
func (s *Server) handlePixel(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(trackingCookie); err != nil {
		id := core.NewID()
		http.SetCookie(w, &http.Cookie{
			Name:     trackingCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(trackingCookieAge.Seconds()),
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteNoneMode,
		})
		s.logger.Debugf("pixel: issued %s=%s", trackingCookie, id)
	}

	header := w.Header()
	header.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	header.Set("Pragma", "no-cache")
	header.Set("Content-Type", gifContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(transparentGIF); err != nil {
		s.logger.Errorf("Cannot make HTTP response back: %v", err)
	}
}
