package generator

import (
	_ "embed"
	"strings"
	"text/template"

	cferrors "github.com/certforge/certforge/pkg/errors"
	"github.com/certforge/certforge/pkg/layout"
)

//go:embed prompt.tmpl
var promptText string

var promptTemplate = template.Must(template.New("prompt").Parse(promptText))

type promptData struct {
	Category string
	Width    int
	Height   int
	Zone     layout.SafeZone
}

// Prompt returns the designer instructions sent with the background image.
// Positions in the prompt always refer to the 800x600 reference canvas.
func Prompt(category string) (string, error) {
	c := layout.ReferenceCanvas
	var b strings.Builder
	if err := promptTemplate.Execute(&b, promptData{
		Category: category,
		Width:    c.Width,
		Height:   c.Height,
		Zone:     layout.ZoneFor(c),
	}); err != nil {
		return "", cferrors.Wrap(cferrors.ErrCodeInternal, err, "render prompt")
	}
	return b.String(), nil
}
