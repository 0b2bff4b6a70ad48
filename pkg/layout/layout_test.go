package layout

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/certforge/certforge/pkg/design"
	cferrors "github.com/certforge/certforge/pkg/errors"
)

const eps = 1e-9

// fixedMeasurer gives every rune a width of 0.6 em.
type fixedMeasurer struct{}

func (fixedMeasurer) MeasureText(text string, style design.TextStyle) float64 {
	return float64(len([]rune(text))) * style.Size * 0.6
}

func classic() *design.Design {
	d := design.Fallback().Designs[0]
	return &d
}

func mustCompute(t *testing.T, d *design.Design, o design.Overrides, c Canvas) []Op {
	t.Helper()
	ops, err := Compute(d, o, c, fixedMeasurer{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	return ops
}

func single(t *testing.T, ops []Op, role Role) *TextOp {
	t.Helper()
	got := ByRole(ops, role)
	if len(got) != 1 {
		t.Fatalf("%d %s ops, want 1", len(got), role)
	}
	return got[0]
}

func TestZoneFor(t *testing.T) {
	got := ZoneFor(ReferenceCanvas)
	want := SafeZone{Left: 160, Right: 640, Top: 120, Bottom: 480, CenterX: 400}
	if got != want {
		t.Errorf("ZoneFor(800x600) = %+v, want %+v", got, want)
	}
}

func TestCanvasWithin(t *testing.T) {
	tests := []struct {
		canvas  Canvas
		maxSide int
		wantErr bool
	}{
		{ReferenceCanvas, 0, false},
		{Canvas{Width: MaxCanvasSide, Height: MaxCanvasSide}, 0, false},
		{Canvas{Width: MaxCanvasSide + 1, Height: 600}, 0, true},
		{Canvas{Width: 800, Height: 40000}, 0, true},
		{Canvas{Width: 1000, Height: 600}, 900, true},
		{Canvas{Width: 900, Height: 900}, 900, false},
	}
	for _, tt := range tests {
		err := tt.canvas.Within(tt.maxSide)
		if (err != nil) != tt.wantErr {
			t.Errorf("%+v.Within(%d) error = %v, wantErr %v", tt.canvas, tt.maxSide, err, tt.wantErr)
		}
		if err != nil && !cferrors.Is(err, cferrors.ErrCodeInvalidCanvasGeometry) {
			t.Errorf("%+v.Within(%d) code = %s", tt.canvas, tt.maxSide, cferrors.GetCode(err))
		}
	}
}

func TestTitleAboveZoneIsPushedDown(t *testing.T) {
	d := classic()
	d.Layout.TitlePosition = design.Position{X: 400, Y: 50}

	ops := mustCompute(t, d, design.Overrides{}, ReferenceCanvas)
	if got := single(t, ops, RoleTitle).Y; got != 160 {
		t.Errorf("title y = %v, want 160", got)
	}
}

func TestBodyLinesArePitchedByFontSize(t *testing.T) {
	d := classic()
	d.Content.BodyText = "Line one\nLine two"
	d.Typography.BodySize = 18

	ops := mustCompute(t, d, design.Overrides{}, ReferenceCanvas)
	body := ByRole(ops, RoleBody)
	if len(body) != 2 {
		t.Fatalf("%d body ops, want 2", len(body))
	}
	if body[0].Text != "Line one" || body[1].Text != "Line two" {
		t.Errorf("body lines = %q, %q", body[0].Text, body[1].Text)
	}
	if diff := body[1].Y - body[0].Y; diff != 23 {
		t.Errorf("line pitch = %v, want 23", diff)
	}
	if body[1].Line != 1 {
		t.Errorf("second line index = %d, want 1", body[1].Line)
	}
}

// A body too long for the zone is not shrunk: lines past the bottom stack
// on the bottom edge and the footer row shares it.
func TestLongBodyClampsToZoneBottom(t *testing.T) {
	d := classic()
	d.Layout.BodyTextPosition = design.Position{X: 400, Y: 320}
	d.Typography.BodySize = 18
	d.Content.BodyText = strings.Repeat("line\n", 7) + "line"

	ops := mustCompute(t, d, design.Overrides{}, ReferenceCanvas)
	z := ZoneFor(ReferenceCanvas)

	body := ByRole(ops, RoleBody)
	if len(body) != 8 {
		t.Fatalf("%d body ops, want 8", len(body))
	}
	want := []float64{320, 343, 366, 389, 412, 435, 458, 480}
	if got := ys(body); !reflect.DeepEqual(got, want) {
		t.Errorf("body ys = %v, want %v", got, want)
	}
	for _, role := range []Role{RoleDate, RoleSignature} {
		if got := single(t, ops, role).Y; got != z.Bottom {
			t.Errorf("%s y = %v, want zone bottom %v", role, got, z.Bottom)
		}
	}
}

func TestFallbackDesignAtReference(t *testing.T) {
	ops := mustCompute(t, classic(), design.Overrides{}, ReferenceCanvas)

	tests := []struct {
		role Role
		want float64
	}{
		{RoleTitle, 160},
		{RolePresentation, 210},
		{RoleRecipient, 250},
		{RoleDate, 460},
		{RoleSignature, 460},
	}
	for _, tt := range tests {
		if got := single(t, ops, tt.role).Y; got != tt.want {
			t.Errorf("%s y = %v, want %v", tt.role, got, tt.want)
		}
	}

	body := ByRole(ops, RoleBody)
	if len(body) != 2 || body[0].Y != 320 || body[1].Y != 343 {
		t.Errorf("body ys = %v", ys(body))
	}

	date := single(t, ops, RoleDate)
	if date.X != 200 || date.Align != AlignLeft {
		t.Errorf("date at x=%v align=%s, want 200 left", date.X, date.Align)
	}
	sig := single(t, ops, RoleSignature)
	if sig.X != 600 || sig.Align != AlignRight {
		t.Errorf("signature at x=%v align=%s, want 600 right", sig.X, sig.Align)
	}
}

func TestHintsInsideRangeAreHonored(t *testing.T) {
	d := classic()
	d.Layout.TitlePosition.Y = 170
	d.Layout.PresentationLinePosition.Y = 221
	d.Layout.RecipientNamePosition.Y = 270
	d.Layout.BodyTextPosition.Y = 350

	ops := mustCompute(t, d, design.Overrides{}, ReferenceCanvas)
	for role, want := range map[Role]float64{
		RoleTitle:        170,
		RolePresentation: 220,
		RoleRecipient:    270,
	} {
		if got := single(t, ops, role).Y; got != want {
			t.Errorf("%s y = %v, want %v", role, got, want)
		}
	}
	if got := ByRole(ops, RoleBody)[0].Y; got != 350 {
		t.Errorf("body y = %v, want 350", got)
	}
}

func TestOverlappingHintsArePushedApart(t *testing.T) {
	d := classic()
	for _, p := range []*design.Position{
		&d.Layout.TitlePosition,
		&d.Layout.PresentationLinePosition,
		&d.Layout.RecipientNamePosition,
		&d.Layout.BodyTextPosition,
		&d.Layout.DatePosition,
	} {
		p.Y = 170
	}

	ops := mustCompute(t, d, design.Overrides{}, ReferenceCanvas)
	got := []float64{
		single(t, ops, RoleTitle).Y,
		single(t, ops, RolePresentation).Y,
		single(t, ops, RoleRecipient).Y,
		ByRole(ops, RoleBody)[0].Y,
	}
	want := []float64{170, 220, 260, 320}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("block ys = %v, want %v", got, want)
	}
	if footer := single(t, ops, RoleDate).Y; footer != 343+60 {
		t.Errorf("footer y = %v, want %v", footer, 343+60)
	}
}

func TestOverrides(t *testing.T) {
	o := design.Overrides{RecipientName: "Ada Lovelace", Date: "2024-05-01"}
	ops := mustCompute(t, classic(), o, ReferenceCanvas)

	if got := single(t, ops, RoleRecipient).Text; got != "Ada Lovelace" {
		t.Errorf("recipient = %q", got)
	}
	if got := single(t, ops, RoleDate).Text; got != "2024-05-01" {
		t.Errorf("date = %q", got)
	}
	if got := single(t, ops, RoleSignature).Text; got != design.SignaturePlaceholder {
		t.Errorf("signature = %q, want placeholder", got)
	}
}

func TestStrokeFor(t *testing.T) {
	tests := []struct {
		fill      string
		size      float64
		wantColor string
		wantWidth float64
	}{
		{"#000000", 48, StrokeLight, 1.92},
		{"#ffffff", 18, StrokeDark, 1},
		{"#808080", 25, StrokeLight, 1},
		{"#818181", 50, StrokeDark, 2},
		{"#d69e2e", 100, StrokeDark, 4},
	}
	for _, tt := range tests {
		got := StrokeFor(tt.fill, tt.size)
		if got.Color != tt.wantColor || got.Width != tt.wantWidth {
			t.Errorf("StrokeFor(%s, %v) = %+v, want {%s %v}", tt.fill, tt.size, *got, tt.wantColor, tt.wantWidth)
		}
	}
}

func TestEveryTextOpHasStroke(t *testing.T) {
	d := classic()
	d.Typography.TitleColor = "#808080"
	d.Typography.NameColor = "#fafafa"

	ops := mustCompute(t, d, design.Overrides{}, ReferenceCanvas)
	for _, op := range Texts(ops) {
		if op.Stroke == nil {
			t.Fatalf("%s op has no stroke", op.Role)
		}
	}
	if got := single(t, ops, RoleTitle).Stroke.Color; got != StrokeLight {
		t.Errorf("title stroke = %s, want white", got)
	}
	if got := single(t, ops, RoleRecipient).Stroke.Color; got != StrokeDark {
		t.Errorf("name stroke = %s, want black", got)
	}
}

func TestBorderFollowsShadowReset(t *testing.T) {
	d := design.Fallback().Designs[3] // dashed
	ops := mustCompute(t, &d, design.Overrides{}, ReferenceCanvas)

	n := len(ops)
	if ops[n-2].Kind != KindResetShadow || ops[n-1].Kind != KindBorder {
		t.Fatalf("last ops = %s, %s, want reset-shadow, border", ops[n-2].Kind, ops[n-1].Kind)
	}
	b := ops[n-1].Border
	if b.Rect != (Rect{X: 20, Y: 20, Width: 760, Height: 560}) {
		t.Errorf("border rect = %+v", b.Rect)
	}
	if !reflect.DeepEqual(b.Dash, []float64{5, 5}) {
		t.Errorf("dash = %v, want [5 5]", b.Dash)
	}
	for _, op := range Texts(ops) {
		if op.Shadow == nil || op.Shadow.Blur != 2 {
			t.Errorf("%s op shadow = %+v, want blur 2", op.Role, op.Shadow)
		}
	}
}

func TestNoBorder(t *testing.T) {
	tests := []struct {
		name   string
		modify func(d *design.Design)
	}{
		{"style none", func(d *design.Design) { d.Styling.BorderStyle = design.BorderNone }},
		{"zero width", func(d *design.Design) { d.Styling.BorderWidth = 0 }},
		{"no styling", func(d *design.Design) { d.Styling = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := classic()
			tt.modify(d)
			ops := mustCompute(t, d, design.Overrides{}, ReferenceCanvas)
			for _, op := range ops {
				if op.Kind != KindText {
					t.Errorf("unexpected %s op", op.Kind)
				}
			}
		})
	}
}

func TestWideTextStaysInsideZone(t *testing.T) {
	d := classic()
	d.Content.Title = "Short"
	d.Content.PresentationLine = strings.Repeat("W", 200)

	ops := mustCompute(t, d, design.Overrides{}, ReferenceCanvas)

	title := single(t, ops, RoleTitle)
	if title.X != 400 || title.Align != AlignCenter {
		t.Errorf("title at x=%v align=%s, want centered at 400", title.X, title.Align)
	}
	pres := single(t, ops, RolePresentation)
	if pres.X != 160 || pres.Align != AlignLeft {
		t.Errorf("overflowing line at x=%v align=%s, want left at 160", pres.X, pres.Align)
	}
}

func TestComputeErrors(t *testing.T) {
	tests := []struct {
		name   string
		canvas Canvas
		modify func(d *design.Design)
		want   error
		code   cferrors.Code
	}{
		{"zero width", Canvas{0, 600}, nil, ErrInvalidCanvasGeometry, cferrors.ErrCodeInvalidCanvasGeometry},
		{"negative height", Canvas{800, -1}, nil, ErrInvalidCanvasGeometry, cferrors.ErrCodeInvalidCanvasGeometry},
		{"no typography", ReferenceCanvas, func(d *design.Design) { d.Typography = nil }, ErrInvalidDesign, cferrors.ErrCodeInvalidDesign},
		{"no content", ReferenceCanvas, func(d *design.Design) { d.Content = nil }, ErrInvalidDesign, cferrors.ErrCodeInvalidDesign},
		{"no layout", ReferenceCanvas, func(d *design.Design) { d.Layout = nil }, ErrInvalidDesign, cferrors.ErrCodeInvalidDesign},
		{"zero body size", ReferenceCanvas, func(d *design.Design) { d.Typography.BodySize = 0 }, ErrInvalidDesign, cferrors.ErrCodeInvalidDesign},
		{"bad color", ReferenceCanvas, func(d *design.Design) { d.Typography.NameColor = "blue-ish" }, ErrInvalidDesign, cferrors.ErrCodeInvalidDesign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := classic()
			if tt.modify != nil {
				tt.modify(d)
			}
			ops, err := Compute(d, design.Overrides{}, tt.canvas, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("Compute() error = %v, want %v", err, tt.want)
			}
			if !cferrors.Is(err, tt.code) {
				t.Errorf("Compute() code = %v, want %v", cferrors.GetCode(err), tt.code)
			}
			if ops != nil {
				t.Errorf("Compute() returned %d ops on error", len(ops))
			}
		})
	}
}

func TestNilDesign(t *testing.T) {
	if _, err := Compute(nil, design.Overrides{}, ReferenceCanvas, nil); !errors.Is(err, ErrInvalidDesign) {
		t.Errorf("Compute(nil) error = %v, want ErrInvalidDesign", err)
	}
}

func TestBodyLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"one", []string{"one"}},
		{"a\nb", []string{"a", "b"}},
		{"a\r\nb\rc", []string{"a", "b", "c"}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		if got := BodyLines(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("BodyLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// randomDesign returns a structurally complete design with adversarial
// positions and sizes.
func randomDesign(rng *rand.Rand) *design.Design {
	pos := func() design.Position {
		return design.Position{X: rng.Float64()*1400 - 300, Y: rng.Float64()*1400 - 400}
	}
	size := func() float64 { return 6 + rng.Float64()*70 }
	color := func() string {
		return fmt.Sprintf("#%02x%02x%02x", rng.Intn(256), rng.Intn(256), rng.Intn(256))
	}
	lines := make([]string, 1+rng.Intn(4))
	for i := range lines {
		lines[i] = strings.Repeat("x", rng.Intn(60))
	}

	return &design.Design{
		ID:   1,
		Name: "random",
		Layout: &design.Layout{
			TitlePosition:            pos(),
			PresentationLinePosition: pos(),
			RecipientNamePosition:    pos(),
			BodyTextPosition:         pos(),
			DatePosition:             pos(),
			SignaturePosition:        pos(),
		},
		Typography: &design.Typography{
			TitleFont: "Georgia", TitleSize: size(), TitleColor: color(),
			NameFont: "Arial", NameSize: size(), NameColor: color(),
			BodyFont: "Arial", BodySize: size(), BodyColor: color(),
		},
		Content: &design.Content{
			Title:                strings.Repeat("T", rng.Intn(50)),
			PresentationLine:     "Presented to",
			BodyText:             strings.Join(lines, "\n"),
			RecipientPlaceholder: strings.Repeat("N", rng.Intn(40)),
			DatePlaceholder:      design.DatePlaceholder,
			SignaturePlaceholder: design.SignaturePlaceholder,
		},
	}
}

func TestLayoutInvariantsHoldForArbitraryInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		c := Canvas{Width: 200 + rng.Intn(1800), Height: 150 + rng.Intn(1350)}
		d := randomDesign(rng)
		ops, err := Compute(d, design.Overrides{}, c, fixedMeasurer{})
		if err != nil {
			t.Fatalf("case %d: Compute() error = %v", i, err)
		}

		z := ZoneFor(c)
		sy := c.ScaleY()
		for _, op := range Texts(ops) {
			if !z.Contains(op.X, op.Y) {
				t.Fatalf("case %d: %s op at (%v, %v) outside zone %+v", i, op.Role, op.X, op.Y, z)
			}
		}

		body := ByRole(ops, RoleBody)
		blocks := []struct {
			y   float64
			gap float64
		}{
			{single(t, ops, RoleTitle).Y, TitleTopOffset},
			{single(t, ops, RolePresentation).Y, GapTitleToPresentation},
			{single(t, ops, RoleRecipient).Y, GapPresentationToName},
			{body[0].Y, GapNameToBody},
		}
		prev := z.Top
		for j, b := range blocks {
			if b.y-prev < b.gap*sy-eps {
				t.Fatalf("case %d: block %d at %v is %v below previous, want >= %v", i, j, b.y, b.y-prev, b.gap*sy)
			}
			prev = b.y
		}

		last := body[len(body)-1].Y
		footer := single(t, ops, RoleDate).Y
		if footer != single(t, ops, RoleSignature).Y {
			t.Fatalf("case %d: date and signature rows differ", i)
		}
		if footer < last {
			t.Fatalf("case %d: footer %v above last body line %v", i, footer, last)
		}
		// Bodies that run into the zone bottom are pinned by
		// TestLongBodyClampsToZoneBottom.
		if last+GapBodyToFooter*sy <= z.Bottom && footer-last < GapBodyToFooter*sy-eps {
			t.Fatalf("case %d: footer %v only %v below body, want >= %v", i, footer, footer-last, GapBodyToFooter*sy)
		}
	}
}

func ys(ops []*TextOp) []float64 {
	out := make([]float64, len(ops))
	for i, op := range ops {
		out[i] = op.Y
	}
	return out
}
