package design

// Placeholders shared by the fallback designs.
const (
	RecipientPlaceholder = "[Recipient Name]"
	DatePlaceholder      = "[Date]"
	SignaturePlaceholder = "[Signature]"
)

type fallbackSpec struct {
	name, description                string
	title, presentation, body        string
	font                             string
	titleSize, nameSize, bodySize    float64
	y                                [5]float64 // title, presentation, name, body, footer
	accent, borderColor, shadowColor string
	border                           BorderStyle
	borderWidth, shadowBlur          float64
}

var fallbackSpecs = []fallbackSpec{
	{
		name:         "Classic Elegant",
		description:  "Traditional formal certificate with serif typography and high contrast",
		title:        "Certificate of Achievement",
		presentation: "This is to certify that",
		body:         "has demonstrated exceptional skills and dedication\nand is hereby recognized for outstanding achievement.",
		font:         "Georgia",
		titleSize:    48, nameSize: 36, bodySize: 18,
		y:      [5]float64{120, 180, 250, 320, 470},
		accent: "#d69e2e", border: BorderSolid, borderWidth: 3, borderColor: "#d69e2e",
		shadowColor: "rgba(255, 255, 255, 0.8)", shadowBlur: 2,
	},
	{
		name:         "Modern Minimalist",
		description:  "Clean contemporary design with high-contrast sans-serif fonts",
		title:        "Certificate of Completion",
		presentation: "Awarded to",
		body:         "for successfully completing the program\nwith dedication and excellence.",
		font:         "Arial",
		titleSize:    42, nameSize: 32, bodySize: 16,
		y:      [5]float64{100, 160, 220, 290, 450},
		accent: "#3182ce", border: BorderNone, borderWidth: 0, borderColor: "#e2e8f0",
		shadowColor: "rgba(255, 255, 255, 0.7)", shadowBlur: 1,
	},
	{
		name:         "Luxurious Gold",
		description:  "Premium certificate with gold accents and high contrast text",
		title:        "Certificate of Excellence",
		presentation: "Presented to",
		body:         "in recognition of outstanding achievement\nand exemplary performance.",
		font:         "Times New Roman",
		titleSize:    44, nameSize: 38, bodySize: 20,
		y:      [5]float64{130, 190, 260, 330, 480},
		accent: "#d69e2e", border: BorderSolid, borderWidth: 4, borderColor: "#b7791f",
		shadowColor: "rgba(255, 255, 255, 0.8)", shadowBlur: 2,
	},
	{
		name:         "Creative Artistic",
		description:  "Artistic design with high-contrast creative typography",
		title:        "Creative Achievement Award",
		presentation: "Congratulations to",
		body:         "for exceptional creativity and innovation\nin the field of arts and design.",
		font:         "Helvetica",
		titleSize:    40, nameSize: 34, bodySize: 18,
		y:      [5]float64{110, 170, 240, 310, 460},
		accent: "#805ad5", border: BorderDashed, borderWidth: 2, borderColor: "#805ad5",
		shadowColor: "rgba(255, 255, 255, 0.7)", shadowBlur: 2,
	},
	{
		name:         "Corporate Professional",
		description:  "Business-oriented design with high-contrast professional layout",
		title:        "Professional Certificate",
		presentation: "This certifies that",
		body:         "has successfully completed professional training\nand meets all certification requirements.",
		font:         "Arial",
		titleSize:    46, nameSize: 36, bodySize: 19,
		y:      [5]float64{140, 200, 270, 340, 490},
		accent: "#3182ce", border: BorderSolid, borderWidth: 5, borderColor: "#3182ce",
		shadowColor: "rgba(255, 255, 255, 0.7)", shadowBlur: 1,
	},
}

// Fallback returns the built-in batch used when generation or recovery
// fails. Every call returns a fresh copy that callers may modify.
func Fallback() *Batch {
	b := &Batch{Designs: make([]Design, 0, len(fallbackSpecs))}
	for i, fs := range fallbackSpecs {
		d := fs.build(i + 1)
		d.CanvasCode = CanvasScript(&d)
		b.Designs = append(b.Designs, d)
	}
	return b
}

func (fs fallbackSpec) build(id int) Design {
	return Design{
		ID:          id,
		Name:        fs.name,
		Description: fs.description,
		Layout: &Layout{
			TitlePosition:            Position{X: 400, Y: fs.y[0]},
			PresentationLinePosition: Position{X: 400, Y: fs.y[1]},
			RecipientNamePosition:    Position{X: 400, Y: fs.y[2]},
			BodyTextPosition:         Position{X: 400, Y: fs.y[3]},
			DatePosition:             Position{X: 200, Y: fs.y[4]},
			SignaturePosition:        Position{X: 600, Y: fs.y[4]},
		},
		Typography: &Typography{
			TitleFont: fs.font, TitleSize: fs.titleSize, TitleColor: "#000000", TitleWeight: WeightBold,
			NameFont: fs.font, NameSize: fs.nameSize, NameColor: "#1a1a1a", NameWeight: WeightBold,
			BodyFont: fs.font, BodySize: fs.bodySize, BodyColor: "#333333", BodyWeight: WeightNormal,
		},
		Content: &Content{
			Title:                fs.title,
			PresentationLine:     fs.presentation,
			BodyText:             fs.body,
			RecipientPlaceholder: RecipientPlaceholder,
			DatePlaceholder:      DatePlaceholder,
			SignaturePlaceholder: SignaturePlaceholder,
		},
		Styling: &Styling{
			PrimaryColor:   "#000000",
			SecondaryColor: "#1a1a1a",
			AccentColor:    fs.accent,
			BorderStyle:    fs.border,
			BorderWidth:    fs.borderWidth,
			BorderColor:    fs.borderColor,
			ShadowEnabled:  true,
			ShadowColor:    fs.shadowColor,
			ShadowBlur:     fs.shadowBlur,
			ShadowOffset:   Position{X: 1, Y: 1},
		},
	}
}
