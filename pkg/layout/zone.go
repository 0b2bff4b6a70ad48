package layout

import (
	cferrors "github.com/certforge/certforge/pkg/errors"
)

// Reference canvas. Vertical constants are defined at this height and
// horizontal ones at this width, and scale linearly for other sizes.
const (
	ReferenceWidth  = 800
	ReferenceHeight = 600
)

// Minimum vertical gaps between consecutive blocks at reference scale.
const (
	GapTitleToPresentation = 50
	GapPresentationToName  = 40
	GapNameToBody          = 60
	GapBodyToFooter        = 60

	// TitleTopOffset is the minimum distance of the title below the safe zone top.
	TitleTopOffset = 40

	// FooterBottomOffset keeps the requested footer row above the safe zone bottom.
	FooterBottomOffset = 20

	// FooterInset is the horizontal distance of date and signature from the
	// safe zone's left and right edges.
	FooterInset = 40

	// BodyLineSpacing is added to the body font size to get the line pitch.
	BodyLineSpacing = 5

	// BorderInset is the distance of the decorative border from every edge.
	BorderInset = 20
)

// Block ceilings at reference scale. A requested y above a ceiling is pulled
// up to it so the blocks that follow always have room inside the safe zone.
const (
	titleCeiling        = 180
	presentationCeiling = 220
	nameCeiling         = 280
	bodyCeiling         = 360
)

// ErrInvalidCanvasGeometry is returned for a canvas with a non-positive side.
var ErrInvalidCanvasGeometry = cferrors.New(cferrors.ErrCodeInvalidCanvasGeometry, "canvas width and height must be positive")

// Canvas is the size of the drawing surface in pixels.
type Canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ReferenceCanvas is the 800x600 canvas designs are authored against.
var ReferenceCanvas = Canvas{Width: ReferenceWidth, Height: ReferenceHeight}

// MaxCanvasSide is the default upper bound on either canvas side.
const MaxCanvasSide = 4096

// Validate reports ErrInvalidCanvasGeometry for non-positive sides.
func (c Canvas) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return ErrInvalidCanvasGeometry
	}
	return nil
}

// Within reports INVALID_CANVAS_GEOMETRY when either side exceeds maxSide.
// A non-positive maxSide means MaxCanvasSide.
func (c Canvas) Within(maxSide int) error {
	if maxSide <= 0 {
		maxSide = MaxCanvasSide
	}
	if c.Width > maxSide || c.Height > maxSide {
		return cferrors.New(cferrors.ErrCodeInvalidCanvasGeometry, "canvas %dx%d exceeds %d pixels per side", c.Width, c.Height, maxSide)
	}
	return nil
}

// ScaleX returns the horizontal scale relative to the reference canvas.
func (c Canvas) ScaleX() float64 { return float64(c.Width) / ReferenceWidth }

// ScaleY returns the vertical scale relative to the reference canvas.
func (c Canvas) ScaleY() float64 { return float64(c.Height) / ReferenceHeight }

// SafeZone is the central rectangle all text must stay inside: inset 20%
// from every edge of the canvas.
type SafeZone struct {
	Left    float64 `json:"left"`
	Right   float64 `json:"right"`
	Top     float64 `json:"top"`
	Bottom  float64 `json:"bottom"`
	CenterX float64 `json:"centerX"`
}

// ZoneFor returns the safe zone of c.
func ZoneFor(c Canvas) SafeZone {
	w, h := float64(c.Width), float64(c.Height)
	return SafeZone{
		Left:    0.2 * w,
		Right:   0.8 * w,
		Top:     0.2 * h,
		Bottom:  0.8 * h,
		CenterX: 0.5 * w,
	}
}

// Width returns the horizontal extent of the zone.
func (z SafeZone) Width() float64 { return z.Right - z.Left }

// Contains reports whether (x, y) lies inside the zone, edges included.
func (z SafeZone) Contains(x, y float64) bool {
	return x >= z.Left && x <= z.Right && y >= z.Top && y <= z.Bottom
}

// ClampY limits y to [Top, Bottom].
func (z SafeZone) ClampY(y float64) float64 {
	return clamp(y, z.Top, z.Bottom)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
