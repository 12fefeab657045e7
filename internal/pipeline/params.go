package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/tiletex/tiletex/pkg/raster"
)

// Defaults applied to unset parameters.
const (
	DefaultScale      = 2.0
	DefaultFontSize   = 16.0
	DefaultMargin     = 4
	DefaultTileHeight = 256
)

// Params is the full set of knobs that affect the rendered bytes. Two
// renders with equal Params produce byte-identical payloads and share one
// cache entry.
//
// Margin and AlphaThreshold keep their zero values when unset, since zero
// is meaningful for both; callers that want the documented defaults fill
// them in (the HTTP and CLI layers do).
type Params struct {
	Markup         string
	Scale          float64
	FontSize       float64
	Color          string
	Margin         int
	AlphaThreshold int
	TileHeight     int
	TargetWidth    int // 0 = no width target
	TargetHeight   int // 0 = no height target
	Fit            raster.Fit
}

// withDefaults fills the parameters whose zero value is never valid.
func (p Params) withDefaults() Params {
	if p.Scale == 0 {
		p.Scale = DefaultScale
	}
	if p.FontSize == 0 {
		p.FontSize = DefaultFontSize
	}
	if p.TileHeight == 0 {
		p.TileHeight = DefaultTileHeight
	}
	return p
}

func (p Params) validate() error {
	if strings.TrimSpace(p.Markup) == "" {
		return &InputError{Field: "markup", Message: "must not be empty"}
	}
	if p.Scale <= 0 {
		return &InputError{Field: "scale", Message: "must be positive"}
	}
	if p.FontSize <= 0 {
		return &InputError{Field: "font_size", Message: "must be positive"}
	}
	if p.Margin < 0 {
		return &InputError{Field: "margin", Message: "must not be negative"}
	}
	if p.AlphaThreshold < 0 {
		return &InputError{Field: "alpha_threshold", Message: "must not be negative"}
	}
	if p.TileHeight <= 0 {
		return &InputError{Field: "tile_height", Message: "must be positive"}
	}
	if p.TargetWidth < 0 {
		return &InputError{Field: "target_width", Message: "must be positive"}
	}
	if p.TargetHeight < 0 {
		return &InputError{Field: "target_height", Message: "must be positive"}
	}
	if p.Fit != raster.FitContain && p.Fit != raster.FitStretch {
		return &InputError{Field: "fit", Message: "must be contain or stretch"}
	}
	return nil
}

// Fingerprint digests every output-affecting field in a fixed order, so
// equal parameter sets collide regardless of how they were supplied.
func (p Params) Fingerprint() string {
	fields := []string{
		p.Markup,
		strconv.FormatFloat(p.Scale, 'g', -1, 64),
		strconv.FormatFloat(p.FontSize, 'g', -1, 64),
		p.Color,
		strconv.Itoa(p.Margin),
		strconv.Itoa(p.AlphaThreshold),
		strconv.Itoa(p.TileHeight),
		strconv.Itoa(p.TargetWidth),
		strconv.Itoa(p.TargetHeight),
		strconv.Itoa(int(p.Fit)),
	}

	h := sha256.New()
	for _, f := range fields {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
