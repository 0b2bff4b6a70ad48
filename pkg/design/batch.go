package design

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/kaptinlin/jsonrepair"

	cferrors "github.com/certforge/certforge/pkg/errors"
)

const (
	// MaxCanvasCode is the rune limit for canvasCode after sanitizing.
	MaxCanvasCode = 2000

	// ImageDataPlaceholder replaces embedded image data URLs in canvasCode.
	ImageDataPlaceholder = "/* Background image data removed for safety */"

	// CodeTruncatedMarker is appended when canvasCode is cut.
	CodeTruncatedMarker = "\n// Code truncated for safety"
)

// dataURLPattern matches a whole image data URL, media type and payload,
// up to the closing quote, paren or whitespace.
var dataURLPattern = regexp.MustCompile(`data:image/[^'"\s)]*`)

// DecodeBatch parses recovered text into a Batch. When strict parsing
// fails, a general-purpose JSON repair is attempted before giving up.
func DecodeBatch(text string) (*Batch, error) {
	var b Batch
	err := json.Unmarshal([]byte(text), &b)
	if err == nil {
		return &b, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(text)
	if repairErr != nil {
		return nil, cferrors.Wrap(cferrors.ErrCodeRecoveryFailed, err, "decode design batch")
	}
	b = Batch{}
	if err := json.Unmarshal([]byte(repaired), &b); err != nil {
		return nil, cferrors.Wrap(cferrors.ErrCodeRecoveryFailed, err, "decode repaired design batch")
	}
	return &b, nil
}

// Validate checks the batch-level structure: at least one design, and every
// design carries a positive unique id, a name, and the layout, typography
// and content sections.
func (b *Batch) Validate() error {
	if b == nil || len(b.Designs) == 0 {
		return structureError("missing or empty designs array")
	}
	seen := make(map[int]bool, len(b.Designs))
	for i, d := range b.Designs {
		switch {
		case d.ID <= 0:
			return structureError(fmt.Sprintf("design %d: id must be positive", i))
		case seen[d.ID]:
			return structureError(fmt.Sprintf("design %d: duplicate id %d", i, d.ID))
		case d.Name == "":
			return structureError(fmt.Sprintf("design %d: missing name", i))
		case d.Layout == nil:
			return structureError(fmt.Sprintf("design %d: missing layout", i))
		case d.Typography == nil:
			return structureError(fmt.Sprintf("design %d: missing typography", i))
		case d.Content == nil:
			return structureError(fmt.Sprintf("design %d: missing content", i))
		}
		seen[d.ID] = true
	}
	return nil
}

// Sanitize replaces embedded image data and truncates canvasCode on every
// design in place.
func (b *Batch) Sanitize() {
	for i := range b.Designs {
		b.Designs[i].CanvasCode = SanitizeCanvasCode(b.Designs[i].CanvasCode)
	}
}

// Find returns the design with the given id.
func (b *Batch) Find(id int) (*Design, bool) {
	for i := range b.Designs {
		if b.Designs[i].ID == id {
			return &b.Designs[i], true
		}
	}
	return nil, false
}

// SanitizeCanvasCode strips image data URLs from code and truncates it to
// MaxCanvasCode runes.
func SanitizeCanvasCode(code string) string {
	code = dataURLPattern.ReplaceAllString(code, ImageDataPlaceholder)
	runes := []rune(code)
	if len(runes) > MaxCanvasCode {
		code = string(runes[:MaxCanvasCode]) + CodeTruncatedMarker
	}
	return code
}

// ParseBatch decodes, validates and sanitizes recovered text in one step.
func ParseBatch(text string) (*Batch, error) {
	b, err := DecodeBatch(text)
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	b.Sanitize()
	return b, nil
}

func structureError(msg string) error {
	return cferrors.New(cferrors.ErrCodeBatchStructureInvalid, "%s", msg)
}
