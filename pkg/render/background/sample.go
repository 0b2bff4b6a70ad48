package background

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/certforge/certforge/pkg/design"
)

// SampleFileName is the suggested file name for the sample background.
const SampleFileName = "sample-certificate-background.png"

const (
	sampleOuterInset = 20
	sampleInnerInset = 40
	sampleCornerSize = 40
)

// Sample draws a neutral certificate background: a diagonal slate gradient,
// an outer and an inner frame, and a filled triangle in each inner corner.
func Sample(width, height int) image.Image {
	w, h := float64(width), float64(height)
	dc := gg.NewContext(width, height)

	grad := gg.NewLinearGradient(0, 0, w, h)
	grad.AddColorStop(0, hex("#f8fafc"))
	grad.AddColorStop(0.5, hex("#e2e8f0"))
	grad.AddColorStop(1, hex("#cbd5e1"))
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.SetColor(hex("#64748b"))
	dc.SetLineWidth(8)
	dc.DrawRectangle(sampleOuterInset, sampleOuterInset, w-2*sampleOuterInset, h-2*sampleOuterInset)
	dc.Stroke()

	dc.SetColor(hex("#94a3b8"))
	dc.SetLineWidth(2)
	dc.DrawRectangle(sampleInnerInset, sampleInnerInset, w-2*sampleInnerInset, h-2*sampleInnerInset)
	dc.Stroke()

	dc.SetColor(hex("#475569"))
	const in, s = sampleInnerInset, sampleCornerSize
	for _, c := range []struct{ x, y, dx, dy float64 }{
		{in, in, 1, 1},
		{w - in, in, -1, 1},
		{in, h - in, 1, -1},
		{w - in, h - in, -1, -1},
	} {
		dc.MoveTo(c.x, c.y)
		dc.LineTo(c.x+c.dx*s, c.y)
		dc.LineTo(c.x, c.y+c.dy*s)
		dc.ClosePath()
		dc.Fill()
	}
	return dc.Image()
}

func hex(s string) color.NRGBA {
	return design.MustParseColor(s, design.Black)
}
