// Package pipeline runs the certificate pipeline shared by the CLI and the
// HTTP server.
//
// # Architecture
//
// The pipeline has two halves:
//
//  1. Generate: ask the model for a batch, recover JSON from its answer,
//     decode and validate the batch, and fall back to the built-in batch on
//     any failure that is not the caller's fault.
//  2. Render: lay out every design of a batch on the safe zone and replay
//     the draw ops into PNG, SVG or JSON. Designs render concurrently and a
//     failing design is skipped without affecting the others.
//
// Both halves consult a [cache.Cache].
//
// # Usage
//
//	runner := pipeline.NewRunner(gen, c, nil, logger)
//	res, err := runner.Generate(ctx, pipeline.GenerateOptions{
//	    Category: "Academic Achievement",
//	    Image:    upload,
//	})
//	out, err := runner.RenderBatch(ctx, res.Batch, pipeline.RenderOptions{
//	    Formats:   []string{pipeline.FormatPNG},
//	    Overrides: design.Overrides{RecipientName: "Ada Lovelace"},
//	})
package pipeline

import (
	"fmt"
	"image"
	"strings"

	"github.com/certforge/certforge/pkg/design"
	cferrors "github.com/certforge/certforge/pkg/errors"
	"github.com/certforge/certforge/pkg/layout"
)

// =============================================================================
// Formats
// =============================================================================

// Output formats.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return cferrors.New(cferrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list. Empty means png.
func ParseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{FormatPNG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// FileName returns the download name of the design at position index
// (zero-based) of a batch, e.g. certificate-design-1.png.
func FileName(index int, format string) string {
	return fmt.Sprintf("certificate-design-%d.%s", index+1, format)
}

// ContentType returns the media type of a format.
func ContentType(format string) string {
	switch format {
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// =============================================================================
// Options
// =============================================================================

// GenerateOptions describes one generation request.
type GenerateOptions struct {
	Category string
	Image    []byte
	MIME     string

	// Model only feeds the cache key; the generator decides what it calls.
	Model string

	// Refresh bypasses the batch cache.
	Refresh bool
}

// Validate reports INVALID_INPUT when the category or image is missing.
func (o *GenerateOptions) Validate() error {
	if strings.TrimSpace(o.Category) == "" || len(o.Image) == 0 {
		return cferrors.New(cferrors.ErrCodeInvalidInput, "category and image data are required")
	}
	return cferrors.ValidateCategory(o.Category)
}

// RenderOptions configures layout and rendering of designs.
type RenderOptions struct {
	Canvas    layout.Canvas
	Overrides design.Overrides
	Formats   []string

	// Background is drawn under the PNG output.
	Background image.Image

	// BackgroundURL is referenced by the SVG output. When empty and
	// Background is set, the background is embedded as a JPEG data URL.
	BackgroundURL string

	// BackgroundHash identifies the background in artifact cache keys.
	// Artifacts rendered over an unidentified background are not cached.
	BackgroundHash string

	// Workers caps concurrently rendered designs. Zero means no cap.
	Workers int

	// MaxSide bounds both canvas sides. Zero means layout.MaxCanvasSide.
	MaxSide int

	validated bool
}

// ValidateAndSetDefaults applies defaults and checks formats and geometry.
// It is idempotent.
func (o *RenderOptions) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Canvas == (layout.Canvas{}) {
		o.Canvas = layout.ReferenceCanvas
	}
	if err := o.Canvas.Validate(); err != nil {
		return err
	}
	if err := o.Canvas.Within(o.MaxSide); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Workers < 0 {
		o.Workers = 0
	}
	o.validated = true
	return nil
}

func (o *RenderOptions) wants(format string) bool {
	for _, f := range o.Formats {
		if f == format {
			return true
		}
	}
	return false
}
