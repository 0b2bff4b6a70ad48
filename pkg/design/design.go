// Package design defines the certificate design record produced by the
// generator and consumed by the layout engine.
//
// A [Batch] is decoded once from recovered model output (or taken from
// [Fallback]) and then treated as read-only: the layout engine reads a
// [Design] many times and never writes to it.
package design

// Weight is a CSS-style font weight.
type Weight string

const (
	WeightNormal  Weight = "normal"
	WeightBold    Weight = "bold"
	WeightLighter Weight = "lighter"
)

// Valid reports whether w is one of the supported weights.
func (w Weight) Valid() bool {
	switch w {
	case WeightNormal, WeightBold, WeightLighter:
		return true
	}
	return false
}

// OrNormal returns w, or WeightNormal when w is empty or unknown.
func (w Weight) OrNormal() Weight {
	if w.Valid() {
		return w
	}
	return WeightNormal
}

// BorderStyle selects how the decorative border is stroked.
type BorderStyle string

const (
	BorderNone   BorderStyle = "none"
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
)

// Valid reports whether s is one of the supported border styles.
func (s BorderStyle) Valid() bool {
	switch s {
	case BorderNone, BorderSolid, BorderDashed, BorderDotted:
		return true
	}
	return false
}

// Position is a point in canvas coordinates (0-800 x 0-600 nominal).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout holds the requested positions of the six text blocks. They are
// hints: the layout engine clamps them into the safe zone.
type Layout struct {
	TitlePosition            Position `json:"titlePosition"`
	PresentationLinePosition Position `json:"presentationLinePosition"`
	RecipientNamePosition    Position `json:"recipientNamePosition"`
	BodyTextPosition         Position `json:"bodyTextPosition"`
	DatePosition             Position `json:"datePosition"`
	SignaturePosition        Position `json:"signaturePosition"`
}

// Typography holds font settings for the title, recipient name and body.
// Body settings also apply to the presentation line, date and signature.
type Typography struct {
	TitleFont   string  `json:"titleFont"`
	TitleSize   float64 `json:"titleSize"`
	TitleColor  string  `json:"titleColor"`
	TitleWeight Weight  `json:"titleWeight"`
	NameFont    string  `json:"nameFont"`
	NameSize    float64 `json:"nameSize"`
	NameColor   string  `json:"nameColor"`
	NameWeight  Weight  `json:"nameWeight"`
	BodyFont    string  `json:"bodyFont"`
	BodySize    float64 `json:"bodySize"`
	BodyColor   string  `json:"bodyColor"`
	BodyWeight  Weight  `json:"bodyWeight"`
}

// TextStyle is the resolved font of one text role.
type TextStyle struct {
	Font   string
	Size   float64
	Color  string
	Weight Weight
}

// Title returns the style of the title line.
func (t *Typography) Title() TextStyle {
	return TextStyle{Font: t.TitleFont, Size: t.TitleSize, Color: t.TitleColor, Weight: t.TitleWeight.OrNormal()}
}

// Name returns the style of the recipient name line.
func (t *Typography) Name() TextStyle {
	return TextStyle{Font: t.NameFont, Size: t.NameSize, Color: t.NameColor, Weight: t.NameWeight.OrNormal()}
}

// Body returns the style shared by presentation line, body, date and signature.
func (t *Typography) Body() TextStyle {
	return TextStyle{Font: t.BodyFont, Size: t.BodySize, Color: t.BodyColor, Weight: t.BodyWeight.OrNormal()}
}

// Content holds the literal strings drawn on the certificate.
type Content struct {
	Title                string `json:"title"`
	PresentationLine     string `json:"presentationLine"`
	BodyText             string `json:"bodyText"`
	RecipientPlaceholder string `json:"recipientPlaceholder"`
	DatePlaceholder      string `json:"datePlaceholder"`
	SignaturePlaceholder string `json:"signaturePlaceholder"`
}

// Styling holds colors, border and shadow settings.
type Styling struct {
	PrimaryColor   string      `json:"primaryColor"`
	SecondaryColor string      `json:"secondaryColor"`
	AccentColor    string      `json:"accentColor"`
	BorderStyle    BorderStyle `json:"borderStyle"`
	BorderWidth    float64     `json:"borderWidth"`
	BorderColor    string      `json:"borderColor"`
	ShadowEnabled  bool        `json:"shadowEnabled"`
	ShadowColor    string      `json:"shadowColor"`
	ShadowBlur     float64     `json:"shadowBlur"`
	ShadowOffset   Position    `json:"shadowOffset"`
}

// Design is one candidate certificate design.
//
// Layout, Typography and Content are required; a decoded record without
// them is rejected at batch level. Styling is optional and means no border
// and no shadow when absent.
type Design struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Layout      *Layout     `json:"layout"`
	Typography  *Typography `json:"typography"`
	Content     *Content    `json:"content"`
	Styling     *Styling    `json:"styling,omitempty"`
	CanvasCode  string      `json:"canvasCode"`
}

// Batch is the ordered set of designs returned by one generation.
type Batch struct {
	Designs []Design `json:"designs"`
}

// Overrides are user-supplied values that replace the design placeholders.
// An empty field means "use the placeholder".
type Overrides struct {
	RecipientName string `json:"recipientName"`
	Date          string `json:"date"`
	Signature     string `json:"signature"`
}

// Recipient returns the recipient line, falling back to c's placeholder.
func (o Overrides) Recipient(c *Content) string {
	return orDefault(o.RecipientName, c.RecipientPlaceholder)
}

// DateText returns the date text, falling back to c's placeholder.
func (o Overrides) DateText(c *Content) string { return orDefault(o.Date, c.DatePlaceholder) }

// SignatureText returns the signature text, falling back to c's placeholder.
func (o Overrides) SignatureText(c *Content) string {
	return orDefault(o.Signature, c.SignaturePlaceholder)
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
