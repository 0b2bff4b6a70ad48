package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/certforge/certforge/pkg/design"
	"github.com/certforge/certforge/pkg/fonts"
	"github.com/certforge/certforge/pkg/layout"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	backgroundURL string
}

// WithSVGBackground sets an image URL (usually a data URL) stretched over
// the whole canvas beneath the text.
func WithSVGBackground(url string) SVGOption {
	return func(r *svgRenderer) { r.backgroundURL = url }
}

// RenderSVG replays ops as an SVG document. Text strokes are painted below
// fills with paint-order, and shadows become drop-shadow filters.
func RenderSVG(ops []layout.Op, c layout.Canvas, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		c.Width, c.Height, c.Width, c.Height)

	filters := collectShadows(ops)
	if len(filters) > 0 {
		buf.WriteString("  <defs>\n")
		for i, s := range filters {
			renderShadowFilter(&buf, i, s)
		}
		buf.WriteString("  </defs>\n")
	}

	if r.backgroundURL != "" {
		fmt.Fprintf(&buf, `  <image href="%s" x="0" y="0" width="%d" height="%d" preserveAspectRatio="none"/>`+"\n",
			escapeXML(r.backgroundURL), c.Width, c.Height)
	} else {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%d" height="%d" fill="#ffffff"/>`+"\n", c.Width, c.Height)
	}

	for _, op := range ops {
		switch op.Kind {
		case layout.KindText:
			renderSVGText(&buf, op.Text, filterIndex(filters, op.Text.Shadow))
		case layout.KindBorder:
			renderSVGBorder(&buf, op.Border)
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderSVGText(buf *bytes.Buffer, t *layout.TextOp, filter int) {
	fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" text-anchor="%s" font-family="%s" font-size="%.2f" font-weight="%s" fill="%s"`,
		t.X, t.Y, textAnchor(t.Align), escapeXML(fonts.CSSFamily(t.Font)), t.Size, t.Weight, escapeXML(t.Fill))
	if t.Stroke != nil {
		fmt.Fprintf(buf, ` stroke="%s" stroke-width="%.2f" stroke-linejoin="round" paint-order="stroke"`,
			t.Stroke.Color, t.Stroke.Width)
	}
	if filter >= 0 {
		fmt.Fprintf(buf, ` filter="url(#shadow-%d)"`, filter)
	}
	fmt.Fprintf(buf, ">%s</text>\n", escapeXML(t.Text))
}

func renderSVGBorder(buf *bytes.Buffer, b *layout.BorderOp) {
	fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-width="%.2f"`,
		b.Rect.X, b.Rect.Y, b.Rect.Width, b.Rect.Height, escapeXML(b.Color), b.Width)
	if len(b.Dash) > 0 {
		parts := make([]string, len(b.Dash))
		for i, d := range b.Dash {
			parts[i] = fmt.Sprintf("%g", d)
		}
		fmt.Fprintf(buf, ` stroke-dasharray="%s"`, strings.Join(parts, " "))
	}
	buf.WriteString("/>\n")
}

func renderShadowFilter(buf *bytes.Buffer, i int, s layout.Shadow) {
	col := design.MustParseColor(s.Color, design.Black)
	fmt.Fprintf(buf, `    <filter id="shadow-%d" x="-20%%" y="-20%%" width="140%%" height="140%%">`+"\n", i)
	fmt.Fprintf(buf, `      <feDropShadow dx="%g" dy="%g" stdDeviation="%g" flood-color="%s" flood-opacity="%.3f"/>`+"\n",
		s.OffsetX, s.OffsetY, s.Blur/2, design.HexString(col), float64(col.A)/255)
	buf.WriteString("    </filter>\n")
}

// collectShadows returns the distinct shadows used by ops, in first-use order.
func collectShadows(ops []layout.Op) []layout.Shadow {
	var out []layout.Shadow
	for _, t := range layout.Texts(ops) {
		if t.Shadow != nil && filterIndex(out, t.Shadow) < 0 {
			out = append(out, *t.Shadow)
		}
	}
	return out
}

func filterIndex(filters []layout.Shadow, s *layout.Shadow) int {
	if s == nil {
		return -1
	}
	for i, f := range filters {
		if f == *s {
			return i
		}
	}
	return -1
}

func textAnchor(a layout.Align) string {
	switch a {
	case layout.AlignLeft:
		return "start"
	case layout.AlignRight:
		return "end"
	}
	return "middle"
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
