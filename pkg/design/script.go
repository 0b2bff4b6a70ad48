package design

import (
	"fmt"
	"strconv"
	"strings"
)

// CanvasScript returns an illustrative HTML canvas script that draws d at
// its raw layout hints. It is descriptive only and is never executed; the
// layout engine is the authority on where text actually lands.
func CanvasScript(d *Design) string {
	if d.Layout == nil || d.Typography == nil || d.Content == nil {
		return "// Background image drawn here"
	}
	var b strings.Builder
	b.WriteString("// Background image drawn here\n")
	b.WriteString("ctx.textAlign = 'center';\n")

	if s := d.Styling; s != nil && s.ShadowEnabled {
		fmt.Fprintf(&b, "ctx.shadowColor = %s;\nctx.shadowBlur = %s;\n", jsString(s.ShadowColor), num(s.ShadowBlur))
		fmt.Fprintf(&b, "ctx.shadowOffsetX = %s;\nctx.shadowOffsetY = %s;\n", num(s.ShadowOffset.X), num(s.ShadowOffset.Y))
	}

	t, c, l := d.Typography, d.Content, d.Layout
	text := func(style TextStyle, s string, p Position) {
		fmt.Fprintf(&b, "ctx.font = %s;\nctx.fillStyle = %s;\n",
			jsString(fmt.Sprintf("%s %spx %s", style.Weight, num(style.Size), style.Font)), jsString(style.Color))
		fmt.Fprintf(&b, "ctx.fillText(%s, %s, %s);\n", jsString(s), num(p.X), num(p.Y))
	}
	text(t.Title(), c.Title, l.TitlePosition)
	text(t.Body(), c.PresentationLine, l.PresentationLinePosition)
	text(t.Name(), c.RecipientPlaceholder, l.RecipientNamePosition)
	for i, line := range strings.Split(c.BodyText, "\n") {
		p := l.BodyTextPosition
		p.Y += float64(i) * (t.BodySize + 5)
		text(t.Body(), line, p)
	}
	text(t.Body(), c.DatePlaceholder, l.DatePosition)
	text(t.Body(), c.SignaturePlaceholder, l.SignaturePosition)

	if s := d.Styling; s != nil && s.BorderStyle != BorderNone && s.BorderWidth > 0 {
		b.WriteString("ctx.shadowColor = 'transparent';\n")
		switch s.BorderStyle {
		case BorderDashed:
			b.WriteString("ctx.setLineDash([5, 5]);\n")
		case BorderDotted:
			b.WriteString("ctx.setLineDash([1, 3]);\n")
		}
		fmt.Fprintf(&b, "ctx.strokeStyle = %s;\nctx.lineWidth = %s;\n", jsString(s.BorderColor), num(s.BorderWidth))
		b.WriteString("ctx.strokeRect(20, 20, canvas.width - 40, canvas.height - 40);\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func jsString(s string) string {
	return strconv.Quote(s)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
