package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/certforge/certforge/pkg/cache"
	"github.com/certforge/certforge/pkg/design"
	cferrors "github.com/certforge/certforge/pkg/errors"
	"github.com/certforge/certforge/pkg/layout"
	"github.com/certforge/certforge/pkg/pipeline"
	"github.com/certforge/certforge/pkg/render/background"
)

// bodyLimit allows a base64 image of maxUpload bytes plus the rest of the
// request.
func (s *Server) bodyLimit() int64 {
	return s.maxUpload*4/3 + 64<<10
}

// upload decodes, validates and fits a data-URL image to the server canvas.
func (s *Server) upload(dataURL string) (*background.Upload, error) {
	_, data, err := background.ParseDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	return background.Prepare(data, s.maxUpload, s.canvas.Width, s.canvas.Height)
}

// =============================================================================
// POST /api/generate-designs
// =============================================================================

type generateRequest struct {
	Category  string `json:"category"`
	ImageData string `json:"imageData"`
}

type generateResponse struct {
	Designs  []design.Design `json:"designs"`
	Fallback bool            `json:"fallback"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, s.bodyLimit(), &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Category) == "" || req.ImageData == "" {
		s.writeError(w, r, cferrors.New(cferrors.ErrCodeInvalidInput, "Category and image data are required"))
		return
	}

	up, err := s.upload(req.ImageData)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Generate(r.Context(), pipeline.GenerateOptions{
		Category: req.Category,
		Image:    up.JPEG,
		MIME:     "image/jpeg",
		Model:    s.model,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Designs: res.Batch.Designs, Fallback: res.Fallback})
}

// =============================================================================
// POST /api/render
// =============================================================================

type renderRequest struct {
	Design        *design.Design `json:"design"`
	RecipientName string         `json:"recipientName"`
	Date          string         `json:"date"`
	Signature     string         `json:"signature"`
	ImageData     string         `json:"imageData"`
	Format        string         `json:"format"`
	Width         int            `json:"width"`
	Height        int            `json:"height"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(w, r, s.bodyLimit(), &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Design == nil {
		s.writeError(w, r, cferrors.New(cferrors.ErrCodeInvalidInput, "design is required"))
		return
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = pipeline.FormatPNG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	canvas := s.canvas
	if req.Width != 0 || req.Height != 0 {
		canvas = layout.Canvas{Width: req.Width, Height: req.Height}
	}
	opts := pipeline.RenderOptions{
		Canvas:  canvas,
		MaxSide: s.maxSide,
		Formats: []string{format},
		Overrides: design.Overrides{
			RecipientName: req.RecipientName,
			Date:          req.Date,
			Signature:     req.Signature,
		},
	}
	if req.ImageData != "" {
		up, err := s.upload(req.ImageData)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Background = up.Image
		opts.BackgroundURL = up.DataURL()
		opts.BackgroundHash = cache.Hash(up.JPEG)
	}

	req.Design.CanvasCode = design.SanitizeCanvasCode(req.Design.CanvasCode)
	out, err := s.runner.RenderDesign(r.Context(), req.Design, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	index := max(req.Design.ID, 1) - 1
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", pipeline.FileName(index, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Artifacts[format])
}
