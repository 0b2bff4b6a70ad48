package layout

import (
	"strings"

	"github.com/certforge/certforge/pkg/design"
	cferrors "github.com/certforge/certforge/pkg/errors"
)

// Stroke colors chosen by the contrast rule.
const (
	StrokeDark  = "#000000"
	StrokeLight = "#ffffff"
)

// ErrInvalidDesign matches every error Compute returns for a bad design.
var ErrInvalidDesign = cferrors.New(cferrors.ErrCodeInvalidDesign, "invalid design")

// Measurer reports the rendered width of text in a given style.
type Measurer interface {
	MeasureText(text string, style design.TextStyle) float64
}

type zeroMeasurer struct{}

func (zeroMeasurer) MeasureText(string, design.TextStyle) float64 { return 0 }

// Compute resolves d into an ordered list of draw operations on canvas c.
//
// Requested positions are hints. Each block is placed at its requested y
// when that lies between the minimum legal position (the previous block
// plus its gap, or the safe zone top for the title) and the block's
// ceiling, and is clamped into that range otherwise. Every y is finally
// limited to the safe zone. Text is centered at the zone's center and
// shifted so it stays inside the zone horizontally.
//
// A nil Measurer treats all text as zero width. On error no ops are
// returned.
func Compute(d *design.Design, o design.Overrides, c Canvas, m Measurer) ([]Op, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := Check(d); err != nil {
		return nil, err
	}
	if m == nil {
		m = zeroMeasurer{}
	}

	r := resolver{
		zone:    ZoneFor(c),
		sx:      c.ScaleX(),
		sy:      c.ScaleY(),
		measure: m,
		shadow:  shadowOf(d.Styling),
	}
	l, t, content := d.Layout, d.Typography, d.Content

	titleY := r.place(r.zone.Top+TitleTopOffset*r.sy, l.TitlePosition.Y, titleCeiling)
	presY := r.place(titleY+GapTitleToPresentation*r.sy, l.PresentationLinePosition.Y, presentationCeiling)
	nameY := r.place(presY+GapPresentationToName*r.sy, l.RecipientNamePosition.Y, nameCeiling)
	bodyY := r.place(nameY+GapNameToBody*r.sy, l.BodyTextPosition.Y, bodyCeiling)

	ops := make([]Op, 0, 8)
	ops = append(ops,
		r.centered(RoleTitle, 0, content.Title, titleY, t.Title()),
		r.centered(RolePresentation, 0, content.PresentationLine, presY, t.Body()),
		r.centered(RoleRecipient, 0, o.Recipient(content), nameY, t.Name()),
	)

	lastBodyY := bodyY
	for i, line := range BodyLines(content.BodyText) {
		y := r.zone.ClampY(bodyY + float64(i)*(t.BodySize+BodyLineSpacing))
		ops = append(ops, r.centered(RoleBody, i, line, y, t.Body()))
		lastBodyY = y
	}

	footerY := r.zone.ClampY(max(
		lastBodyY+GapBodyToFooter*r.sy,
		min(r.zone.Bottom-FooterBottomOffset*r.sy, l.DatePosition.Y*r.sy),
	))
	ops = append(ops,
		r.text(RoleDate, 0, o.DateText(content), r.zone.Left+FooterInset*r.sx, footerY, AlignLeft, t.Body()),
		r.text(RoleSignature, 0, o.SignatureText(content), r.zone.Right-FooterInset*r.sx, footerY, AlignRight, t.Body()),
	)

	if b := borderOf(d.Styling, c); b != nil {
		ops = append(ops, Op{Kind: KindResetShadow}, Op{Kind: KindBorder, Border: b})
	}
	return ops, nil
}

// Check reports INVALID_DESIGN when d lacks a section or a typography value
// the engine needs.
func Check(d *design.Design) error {
	if d == nil {
		return invalid("nil design")
	}
	switch {
	case d.Layout == nil:
		return invalid("design %d: missing layout", d.ID)
	case d.Typography == nil:
		return invalid("design %d: missing typography", d.ID)
	case d.Content == nil:
		return invalid("design %d: missing content", d.ID)
	}
	t := d.Typography
	for _, s := range []struct {
		role string
		size float64
		col  string
	}{
		{"title", t.TitleSize, t.TitleColor},
		{"name", t.NameSize, t.NameColor},
		{"body", t.BodySize, t.BodyColor},
	} {
		if s.size <= 0 {
			return invalid("design %d: %s size must be positive", d.ID, s.role)
		}
		if _, err := design.ParseColor(s.col); err != nil {
			return cferrors.Wrap(cferrors.ErrCodeInvalidDesign, err, "design %d: %s color", d.ID, s.role)
		}
	}
	return nil
}

// BodyLines splits body text into lines on \n, \r\n or \r.
func BodyLines(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	return strings.Split(body, "\n")
}

// StrokeFor returns the contrast outline for a fill color: black under light
// fills, white under dark ones. Brightness exactly 128 counts as dark.
func StrokeFor(fill string, size float64) *Stroke {
	c := design.MustParseColor(fill, design.Black)
	col := StrokeLight
	if design.IsLight(c) {
		col = StrokeDark
	}
	return &Stroke{Color: col, Width: max(1, size/25)}
}

type resolver struct {
	zone    SafeZone
	sx, sy  float64
	measure Measurer
	shadow  *Shadow
}

// place returns the requested y (given at reference scale) clamped to
// [lo, ceiling], then limited to the safe zone.
func (r resolver) place(lo, requested, ceiling float64) float64 {
	return r.zone.ClampY(max(lo, min(ceiling*r.sy, requested*r.sy)))
}

func (r resolver) centered(role Role, line int, text string, y float64, style design.TextStyle) Op {
	w := r.measure.MeasureText(text, style)
	if w > r.zone.Width() {
		return r.text(role, line, text, r.zone.Left, y, AlignLeft, style)
	}
	x := clamp(r.zone.CenterX, r.zone.Left+w/2, r.zone.Right-w/2)
	return r.text(role, line, text, x, y, AlignCenter, style)
}

func (r resolver) text(role Role, line int, text string, x, y float64, align Align, style design.TextStyle) Op {
	op := &TextOp{
		Role:   role,
		Line:   line,
		Text:   text,
		X:      x,
		Y:      y,
		Font:   style.Font,
		Size:   style.Size,
		Weight: style.Weight,
		Fill:   style.Color,
		Align:  align,
		Stroke: StrokeFor(style.Color, style.Size),
	}
	if r.shadow != nil {
		s := *r.shadow
		op.Shadow = &s
	}
	return Op{Kind: KindText, Text: op}
}

func shadowOf(s *design.Styling) *Shadow {
	if s == nil || !s.ShadowEnabled {
		return nil
	}
	return &Shadow{
		Color:   s.ShadowColor,
		Blur:    s.ShadowBlur,
		OffsetX: s.ShadowOffset.X,
		OffsetY: s.ShadowOffset.Y,
	}
}

func borderOf(s *design.Styling, c Canvas) *BorderOp {
	if s == nil || s.BorderWidth <= 0 || !s.BorderStyle.Valid() || s.BorderStyle == design.BorderNone {
		return nil
	}
	return &BorderOp{
		Style: s.BorderStyle,
		Width: s.BorderWidth,
		Color: s.BorderColor,
		Rect: Rect{
			X:      BorderInset,
			Y:      BorderInset,
			Width:  float64(c.Width) - 2*BorderInset,
			Height: float64(c.Height) - 2*BorderInset,
		},
		Dash: DashPattern(s.BorderStyle),
	}
}

func invalid(format string, args ...any) error {
	return cferrors.New(cferrors.ErrCodeInvalidDesign, format, args...)
}
