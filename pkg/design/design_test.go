package design

import (
	"encoding/json"
	"image/color"
	"strings"
	"testing"

	cferrors "github.com/certforge/certforge/pkg/errors"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#000000", color.NRGBA{0, 0, 0, 255}, false},
		{"#FFFFFF", color.NRGBA{255, 255, 255, 255}, false},
		{"#d69e2e", color.NRGBA{0xd6, 0x9e, 0x2e, 255}, false},
		{"#fff", color.NRGBA{255, 255, 255, 255}, false},
		{"rgb(10, 20, 30)", color.NRGBA{10, 20, 30, 255}, false},
		{"rgba(255, 255, 255, 0.8)", color.NRGBA{255, 255, 255, 204}, false},
		{"rgba(0,0,0,0)", color.NRGBA{0, 0, 0, 0}, false},
		{"transparent", color.NRGBA{}, false},
		{"gold", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
		{"#zzzzzz", color.NRGBA{}, true},
		{"rgb(1,2)", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsLight(t *testing.T) {
	tests := []struct {
		hex  string
		want bool
	}{
		{"#000000", false},
		{"#333333", false},
		{"#808080", false},
		{"#818181", true},
		{"#ffffff", true},
		{"#ffff00", true},
		{"#0000ff", false},
	}

	for _, tt := range tests {
		c, err := ParseColor(tt.hex)
		if err != nil {
			t.Fatal(err)
		}
		if got := IsLight(c); got != tt.want {
			t.Errorf("IsLight(%s) = %v, want %v (brightness %.1f)", tt.hex, got, tt.want, Brightness(c))
		}
	}
}

func TestHexString(t *testing.T) {
	if got := HexString(color.NRGBA{0xd6, 0x9e, 0x2e, 255}); got != "#d69e2e" {
		t.Errorf("HexString() = %q, want #d69e2e", got)
	}
}

func TestWeightOrNormal(t *testing.T) {
	if got := Weight("heavy").OrNormal(); got != WeightNormal {
		t.Errorf("OrNormal() = %q, want normal", got)
	}
	if got := WeightBold.OrNormal(); got != WeightBold {
		t.Errorf("OrNormal() = %q, want bold", got)
	}
}

func TestOverrides(t *testing.T) {
	c := &Content{
		RecipientPlaceholder: RecipientPlaceholder,
		DatePlaceholder:      DatePlaceholder,
		SignaturePlaceholder: SignaturePlaceholder,
	}

	var empty Overrides
	if got := empty.Recipient(c); got != RecipientPlaceholder {
		t.Errorf("Recipient() = %q, want placeholder", got)
	}

	o := Overrides{RecipientName: "Ada Lovelace", Date: "2024-01-01", Signature: "Dean"}
	if got := o.Recipient(c); got != "Ada Lovelace" {
		t.Errorf("Recipient() = %q", got)
	}
	if got := o.DateText(c); got != "2024-01-01" {
		t.Errorf("DateText() = %q", got)
	}
	if got := o.SignatureText(c); got != "Dean" {
		t.Errorf("SignatureText() = %q", got)
	}
}

func TestFallback(t *testing.T) {
	b := Fallback()
	if len(b.Designs) != 5 {
		t.Fatalf("Fallback() has %d designs, want 5", len(b.Designs))
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("Fallback().Validate() = %v", err)
	}

	for i, d := range b.Designs {
		if d.ID != i+1 {
			t.Errorf("design %d id = %d", i, d.ID)
		}
		if d.Content.RecipientPlaceholder != RecipientPlaceholder {
			t.Errorf("design %d recipient placeholder = %q", d.ID, d.Content.RecipientPlaceholder)
		}
		if d.CanvasCode == "" || strings.Contains(d.CanvasCode, "data:image") {
			t.Errorf("design %d canvasCode = %q", d.ID, d.CanvasCode)
		}
		if n := len([]rune(d.CanvasCode)); n > MaxCanvasCode {
			t.Errorf("design %d canvasCode has %d runes", d.ID, n)
		}
	}

	if b.Designs[0].Name != "Classic Elegant" || b.Designs[0].Typography.TitleSize != 48 {
		t.Errorf("first design = %q size %v", b.Designs[0].Name, b.Designs[0].Typography.TitleSize)
	}
	if b.Designs[3].Styling.BorderStyle != BorderDashed {
		t.Errorf("Creative Artistic border = %q, want dashed", b.Designs[3].Styling.BorderStyle)
	}
}

func TestFallbackReturnsFreshCopies(t *testing.T) {
	a := Fallback()
	a.Designs[0].Content.Title = "changed"
	a.Designs[0].Layout.TitlePosition.Y = 1

	b := Fallback()
	if b.Designs[0].Content.Title != "Certificate of Achievement" {
		t.Errorf("fallback title leaked mutation: %q", b.Designs[0].Content.Title)
	}
	if b.Designs[0].Layout.TitlePosition.Y != 120 {
		t.Errorf("fallback layout leaked mutation: %v", b.Designs[0].Layout.TitlePosition.Y)
	}
}

func TestFallbackRoundTripsThroughJSON(t *testing.T) {
	data, err := json.Marshal(Fallback())
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseBatch(string(data))
	if err != nil {
		t.Fatalf("ParseBatch() error = %v", err)
	}
	if b.Designs[4].Styling.BorderWidth != 5 {
		t.Errorf("border width = %v, want 5", b.Designs[4].Styling.BorderWidth)
	}
}

func TestDecodeBatch(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantLen int
		wantErr bool
	}{
		{"strict", `{"designs":[{"id":1,"name":"A"}]}`, 1, false},
		{"trailing comma repaired", `{"designs":[{"id":1,"name":"A"},]}`, 1, false},
		{"empty designs", `{"designs":[]}`, 0, false},
		{"wrong shape", `{"designs":"nope"}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := DecodeBatch(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeBatch() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !cferrors.Is(err, cferrors.ErrCodeRecoveryFailed) {
					t.Errorf("error code = %v, want RECOVERY_FAILED", cferrors.GetCode(err))
				}
				return
			}
			if len(b.Designs) != tt.wantLen {
				t.Errorf("len(Designs) = %d, want %d", len(b.Designs), tt.wantLen)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Design {
		return Design{ID: 1, Name: "A", Layout: &Layout{}, Typography: &Typography{}, Content: &Content{}}
	}

	tests := []struct {
		name    string
		mutate  func(b *Batch)
		wantErr bool
	}{
		{"valid", func(b *Batch) {}, false},
		{"no designs", func(b *Batch) { b.Designs = nil }, true},
		{"zero id", func(b *Batch) { b.Designs[0].ID = 0 }, true},
		{"duplicate id", func(b *Batch) { b.Designs = append(b.Designs, b.Designs[0]) }, true},
		{"missing name", func(b *Batch) { b.Designs[0].Name = "" }, true},
		{"missing layout", func(b *Batch) { b.Designs[0].Layout = nil }, true},
		{"missing typography", func(b *Batch) { b.Designs[0].Typography = nil }, true},
		{"missing content", func(b *Batch) { b.Designs[0].Content = nil }, true},
		{"missing styling is fine", func(b *Batch) { b.Designs[0].Styling = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Batch{Designs: []Design{valid()}}
			tt.mutate(b)
			err := b.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !cferrors.Is(err, cferrors.ErrCodeBatchStructureInvalid) {
				t.Errorf("error code = %v, want BATCH_STRUCTURE_INVALID", cferrors.GetCode(err))
			}
		})
	}
}

func TestSanitizeCanvasCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"data url removed",
			"var img = new Image(); img.src = 'data:image/png;base64,very-long-string-here';",
			"var img = new Image(); img.src = '" + ImageDataPlaceholder + "';",
		},
		{
			"plain code kept",
			"ctx.fillText('Hi', 400, 170);",
			"ctx.fillText('Hi', 400, 170);",
		},
		{
			"two urls",
			`a("data:image/jpeg;base64,AAA") b("data:image/webp;base64,BBB")`,
			`a("` + ImageDataPlaceholder + `") b("` + ImageDataPlaceholder + `")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeCanvasCode(tt.in); got != tt.want {
				t.Errorf("SanitizeCanvasCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeCanvasCodeTruncates(t *testing.T) {
	in := strings.Repeat("é", MaxCanvasCode+10)
	got := SanitizeCanvasCode(in)
	want := strings.Repeat("é", MaxCanvasCode) + CodeTruncatedMarker
	if got != want {
		t.Errorf("SanitizeCanvasCode() rune length = %d, want %d", len([]rune(got)), len([]rune(want)))
	}
}

func TestBatchFind(t *testing.T) {
	b := Fallback()
	d, ok := b.Find(3)
	if !ok || d.Name != "Luxurious Gold" {
		t.Errorf("Find(3) = %v, %v", d, ok)
	}
	if _, ok := b.Find(99); ok {
		t.Error("Find(99) found a design")
	}
}

func TestCanvasScript(t *testing.T) {
	d := Fallback().Designs[3]
	got := CanvasScript(&d)
	for _, want := range []string{
		`ctx.fillText("Creative Achievement Award", 400, 110);`,
		`ctx.font = "bold 40px Helvetica";`,
		"ctx.setLineDash([5, 5]);",
		"ctx.strokeRect(20, 20, canvas.width - 40, canvas.height - 40);",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("CanvasScript() missing %q", want)
		}
	}
}
