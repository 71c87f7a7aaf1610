// Package slideshow turns stored settings and the page size into the parameters
// of the embedded, self-refreshing slideshow page
package slideshow

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/autoslides/settings"
)

// Geometry holds the fixed pixel sizes of the host's embedded viewer chrome.
type Geometry struct {
	// BorderInset is the extra crop that removes the remaining border pixels.
	BorderInset float64
	// BottomInset is the height of the viewer's bottom control bar.
	BottomInset float64
	// MagicRatio converts the aspect ratio into the width of the letterbox bands.
	// It was measured against the viewer and has no closed form.
	MagicRatio float64
}

var DefaultGeometry = Geometry{
	BorderInset: 2,
	BottomInset: 28,
	MagicRatio:  14.25,
}

// Params is everything the embed page needs besides the document itself.
type Params struct {
	Start           bool    `json:"start"`
	Repeat          bool    `json:"repeat"`
	MsAdvance       int     `json:"msAdvance"`
	MsFade          int     `json:"msFade"`
	MsReload        int     `json:"msReload"`
	BackgroundColor string  `json:"backgroundColor"`
	TopInset        float64 `json:"topInset"`
	BottomInset     float64 `json:"bottomInset"`
	SideInset       float64 `json:"sideInset"`
	AspectRatio     float64 `json:"aspectRatio"`
}

var ErrInvalidPageSize = errors.New("page width and height must be positive")

// Generate computes the embed parameters. It has no side effects: the same inputs
// always give the same Params.
func Generate(s settings.Settings, g Geometry, pageWidth, pageHeight float64) (Params, error) {
	if pageWidth <= 0 || pageHeight <= 0 {
		return Params{}, fmt.Errorf("%w, got %vx%v", ErrInvalidPageSize, pageWidth, pageHeight)
	}

	// percentage used as padding-top for the responsive iframe
	aspectRatio := 100 * pageHeight / pageWidth

	var borderOffset float64
	if s.Enabled(settings.KeyHideBorders) {
		borderOffset = g.BorderInset
	}

	p := Params{
		Start:           s.Enabled(settings.KeyStart),
		Repeat:          s.Enabled(settings.KeyRepeat),
		MsAdvance:       s.Int(settings.KeySAdvance) * 1000,
		MsFade:          s.Int(settings.KeyMsFade),
		MsReload:        s.Int(settings.KeySReload) * 1000,
		BackgroundColor: s[settings.KeyBackgroundColor],
		TopInset:        borderOffset,
		AspectRatio:     aspectRatio,
	}
	if s.Enabled(settings.KeyHideMenu) {
		p.BottomInset = math.Ceil(g.BottomInset + borderOffset)
	}
	if s.Enabled(settings.KeyHideBands) {
		p.SideInset = math.Ceil(100*g.MagicRatio/aspectRatio + borderOffset)
	}
	return p, nil
}
