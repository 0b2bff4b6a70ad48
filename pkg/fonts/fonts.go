// Package fonts provides embedded font faces for raster rendering and text
// measurement.
//
// Design records name web fonts (Georgia, Arial, Times New Roman, ...) that
// are not available on a server. Every family is mapped onto one of the Go
// fonts shipped in golang.org/x/image, which are embedded in the binary, so
// measurement and rendering agree on every host.
package fonts

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/certforge/certforge/pkg/design"
)

// Variant identifies one embedded font file.
type Variant int

const (
	Regular Variant = iota
	Bold
	Mono
	MonoBold
)

var ttf = map[Variant][]byte{
	Regular:  goregular.TTF,
	Bold:     gobold.TTF,
	Mono:     gomono.TTF,
	MonoBold: gomonobold.TTF,
}

// Parsed fonts (computed once on first access).
var (
	parsed     = map[Variant]*opentype.Font{}
	parsedErr  error
	parsedOnce sync.Once
)

// Font returns the parsed font for v.
func Font(v Variant) (*opentype.Font, error) {
	parsedOnce.Do(func() {
		for k, data := range ttf {
			f, err := opentype.Parse(data)
			if err != nil {
				parsedErr = fmt.Errorf("parse embedded font %d: %w", k, err)
				return
			}
			parsed[k] = f
		}
	})
	if parsedErr != nil {
		return nil, parsedErr
	}
	f, ok := parsed[v]
	if !ok {
		return nil, fmt.Errorf("unknown font variant %d", v)
	}
	return f, nil
}

// Resolve maps a CSS font family and weight onto an embedded variant.
func Resolve(family string, weight design.Weight) Variant {
	bold := weight == design.WeightBold
	if isMonospace(family) {
		if bold {
			return MonoBold
		}
		return Mono
	}
	if bold {
		return Bold
	}
	return Regular
}

// CSSFamily returns a font-family list for SVG output: the requested family
// first, then a generic family that matches its classification.
func CSSFamily(family string) string {
	generic := "sans-serif"
	switch {
	case isMonospace(family):
		generic = "monospace"
	case isSerif(family):
		generic = "serif"
	}
	family = strings.TrimSpace(family)
	if family == "" {
		return generic
	}
	return fmt.Sprintf("'%s', %s", strings.ReplaceAll(family, "'", ""), generic)
}

func isMonospace(family string) bool {
	f := strings.ToLower(family)
	return strings.Contains(f, "mono") || strings.Contains(f, "courier") || strings.Contains(f, "consolas")
}

func isSerif(family string) bool {
	f := strings.ToLower(family)
	if strings.Contains(f, "sans") {
		return false
	}
	for _, s := range []string{"serif", "georgia", "times", "garamond", "palatino", "baskerville", "didot"} {
		if strings.Contains(f, s) {
			return true
		}
	}
	return false
}

type faceKey struct {
	variant Variant
	size    float64
}

// Faces caches font faces by variant and size. A font.Face is not safe for
// concurrent use, so every method holds the lock while it touches a face;
// callers that draw with a face from Face must not share the Faces value
// across goroutines.
type Faces struct {
	mu    sync.Mutex
	faces map[faceKey]font.Face
}

// NewFaces returns an empty face cache.
func NewFaces() *Faces {
	return &Faces{faces: make(map[faceKey]font.Face)}
}

// Face returns the face for style, creating it on first use.
func (c *Faces) Face(style design.TextStyle) (font.Face, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.face(Resolve(style.Font, style.Weight), style.Size)
}

func (c *Faces) face(v Variant, size float64) (font.Face, error) {
	key := faceKey{v, size}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	otf, err := Font(v)
	if err != nil {
		return nil, err
	}
	f, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	c.faces[key] = f
	return f, nil
}

// MeasureText returns the advance width of text in style, in pixels.
// It returns 0 for sizes that cannot produce a face.
func (c *Faces) MeasureText(text string, style design.TextStyle) float64 {
	if style.Size <= 0 || text == "" {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	f, err := c.face(Resolve(style.Font, style.Weight), style.Size)
	if err != nil {
		return 0
	}
	return toFloat(font.MeasureString(f, text))
}

// Close releases every cached face.
func (c *Faces) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, f := range c.faces {
		f.Close()
		delete(c.faces, k)
	}
	return nil
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
