package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/certforge/certforge/pkg/design"
	"github.com/certforge/certforge/pkg/fonts"
	"github.com/certforge/certforge/pkg/layout"
)

// outlineSteps is the number of offset copies used to emulate a text stroke.
const outlineSteps = 16

// PNGOption configures raster rendering via [RenderPNG] and [RenderImage].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	background image.Image
	faces      *fonts.Faces
}

// WithBackground draws img stretched over the whole canvas before any op.
func WithBackground(img image.Image) PNGOption {
	return func(r *pngRenderer) { r.background = img }
}

// WithFaces reuses a face cache. The cache must not be shared with a
// concurrent render.
func WithFaces(f *fonts.Faces) PNGOption {
	return func(r *pngRenderer) { r.faces = f }
}

// RenderPNG replays ops onto a canvas of size c and encodes it as PNG.
func RenderPNG(ops []layout.Op, c layout.Canvas, opts ...PNGOption) ([]byte, error) {
	img, err := RenderImage(ops, c, opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderImage replays ops onto a canvas of size c. Ops are applied strictly
// in order.
func RenderImage(ops []layout.Op, c layout.Canvas, opts ...PNGOption) (image.Image, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r := pngRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if r.faces == nil {
		r.faces = fonts.NewFaces()
		defer r.faces.Close()
	}

	dc := gg.NewContext(c.Width, c.Height)
	if r.background != nil {
		dc.DrawImage(imaging.Resize(r.background, c.Width, c.Height, imaging.Lanczos), 0, 0)
	} else {
		dc.SetColor(color.White)
		dc.Clear()
	}

	for _, op := range ops {
		switch op.Kind {
		case layout.KindText:
			if err := r.drawText(dc, op.Text); err != nil {
				return nil, err
			}
		case layout.KindResetShadow:
			// Shadows are drawn per text op on their own layer, so there is
			// no surface state to clear.
		case layout.KindBorder:
			drawBorder(dc, op.Border)
		}
	}
	return dc.Image(), nil
}

func (r *pngRenderer) drawText(dc *gg.Context, t *layout.TextOp) error {
	if t.Text == "" {
		return nil
	}
	face, err := r.faces.Face(t.Style())
	if err != nil {
		return fmt.Errorf("font for %s: %w", t.Role, err)
	}
	ax := anchorX(t.Align)

	if t.Shadow != nil {
		drawShadow(dc, face, t, t.Shadow, ax)
	}

	dc.SetFontFace(face)
	if t.Stroke != nil {
		dc.SetColor(design.MustParseColor(t.Stroke.Color, design.Black))
		for i := 0; i < outlineSteps; i++ {
			a := 2 * math.Pi * float64(i) / outlineSteps
			dx, dy := math.Cos(a)*t.Stroke.Width, math.Sin(a)*t.Stroke.Width
			dc.DrawStringAnchored(t.Text, t.X+dx, t.Y+dy, ax, 0)
		}
	}
	dc.SetColor(design.MustParseColor(t.Fill, design.Black))
	dc.DrawStringAnchored(t.Text, t.X, t.Y, ax, 0)
	return nil
}

// drawShadow paints the text in the shadow color on its own layer, blurs
// the layer, and composites it beneath the glyphs.
func drawShadow(dc *gg.Context, face font.Face, t *layout.TextOp, s *layout.Shadow, ax float64) {
	col := design.MustParseColor(s.Color, color.NRGBA{})
	if col.A == 0 {
		return
	}
	layer := gg.NewContext(dc.Width(), dc.Height())
	layer.SetFontFace(face)
	layer.SetColor(col)
	layer.DrawStringAnchored(t.Text, t.X+s.OffsetX, t.Y+s.OffsetY, ax, 0)

	var img image.Image = layer.Image()
	if s.Blur > 0 {
		img = imaging.Blur(img, s.Blur/2)
	}
	dc.DrawImage(img, 0, 0)
}

func drawBorder(dc *gg.Context, b *layout.BorderOp) {
	dc.Push()
	defer dc.Pop()
	dc.SetColor(design.MustParseColor(b.Color, design.Black))
	dc.SetLineWidth(b.Width)
	if len(b.Dash) > 0 {
		dc.SetDash(b.Dash...)
	}
	dc.DrawRectangle(b.Rect.X, b.Rect.Y, b.Rect.Width, b.Rect.Height)
	dc.Stroke()
}

func anchorX(a layout.Align) float64 {
	switch a {
	case layout.AlignLeft:
		return 0
	case layout.AlignRight:
		return 1
	}
	return 0.5
}
