package layout

import "github.com/certforge/certforge/pkg/design"

// Kind discriminates the variants of Op.
type Kind string

const (
	KindText        Kind = "text"
	KindResetShadow Kind = "reset-shadow"
	KindBorder      Kind = "border"
)

// Role names the text block a text op belongs to.
type Role string

const (
	RoleTitle        Role = "title"
	RolePresentation Role = "presentation"
	RoleRecipient    Role = "recipient"
	RoleBody         Role = "body"
	RoleDate         Role = "date"
	RoleSignature    Role = "signature"
)

// Align is the horizontal anchor of a text op's X coordinate.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Stroke is the contrast outline drawn beneath a text fill.
type Stroke struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// Shadow holds drop shadow parameters. The zero value is the neutral state.
type Shadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// TextOp draws one line of text. The stroke is painted first, then the fill.
type TextOp struct {
	Role   Role          `json:"role"`
	Line   int           `json:"line,omitempty"`
	Text   string        `json:"text"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Font   string        `json:"font"`
	Size   float64       `json:"size"`
	Weight design.Weight `json:"weight"`
	Fill   string        `json:"fill"`
	Align  Align         `json:"align"`
	Stroke *Stroke       `json:"stroke,omitempty"`
	Shadow *Shadow       `json:"shadow,omitempty"`
}

// Style returns the font style the op is drawn with.
func (t *TextOp) Style() design.TextStyle {
	return design.TextStyle{Font: t.Font, Size: t.Size, Color: t.Fill, Weight: t.Weight}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BorderOp strokes the decorative border rectangle.
type BorderOp struct {
	Style design.BorderStyle `json:"style"`
	Width float64            `json:"width"`
	Color string             `json:"color"`
	Rect  Rect               `json:"rect"`
	Dash  []float64          `json:"dash,omitempty"`
}

// Op is one resolved drawing instruction. Exactly one of Text or Border is
// set for the matching Kind; a reset-shadow op carries no payload.
type Op struct {
	Kind   Kind      `json:"kind"`
	Text   *TextOp   `json:"text,omitempty"`
	Border *BorderOp `json:"border,omitempty"`
}

// Texts returns the text ops of ops in order.
func Texts(ops []Op) []*TextOp {
	var out []*TextOp
	for _, op := range ops {
		if op.Kind == KindText {
			out = append(out, op.Text)
		}
	}
	return out
}

// ByRole returns the text ops of ops with the given role.
func ByRole(ops []Op, role Role) []*TextOp {
	var out []*TextOp
	for _, t := range Texts(ops) {
		if t.Role == role {
			out = append(out, t)
		}
	}
	return out
}

// DashPattern returns the stroke dash pattern for a border style, or nil for
// a continuous line.
func DashPattern(style design.BorderStyle) []float64 {
	switch style {
	case design.BorderDashed:
		return []float64{5, 5}
	case design.BorderDotted:
		return []float64{1, 3}
	}
	return nil
}
