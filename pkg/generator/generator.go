// Package generator asks a generative model for certificate designs.
//
// A [Generator] turns a category and a background image into the model's
// raw answer text. The answer is not trusted: callers pass it through
// recovery and batch validation, and fall back to the built-in batch when
// anything fails.
package generator

import (
	"context"

	cferrors "github.com/certforge/certforge/pkg/errors"
)

// Request is the input of one generation call.
type Request struct {
	// Category is interpolated into the prompt, e.g. "Academic Achievement".
	Category string

	// Image is the raw background image sent as inline data.
	Image []byte

	// MIME is the image media type. Empty means image/jpeg.
	MIME string
}

// Validate checks that the request carries a usable category and image.
func (r Request) Validate() error {
	if err := cferrors.ValidateCategory(r.Category); err != nil {
		return err
	}
	if len(r.Image) == 0 {
		return cferrors.New(cferrors.ErrCodeInvalidInput, "background image is required")
	}
	return nil
}

// Generator produces raw design text for a request.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Static returns Text or Err for every request. It stands in for the model
// in tests and offline runs.
type Static struct {
	Text string
	Err  error
}

func (s Static) Name() string { return "static" }

func (s Static) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}

// Unavailable is the generator used when no API key is configured. Every
// call fails with NO_API_KEY so that callers serve the fallback batch.
type Unavailable struct{}

func (Unavailable) Name() string { return "unavailable" }

func (Unavailable) Generate(context.Context, Request) (string, error) {
	return "", cferrors.New(cferrors.ErrCodeNoAPIKey, "no generator API key configured")
}
