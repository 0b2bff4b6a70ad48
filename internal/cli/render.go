package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/certforge/certforge/pkg/cache"
	cferrors "github.com/certforge/certforge/pkg/errors"
	"github.com/certforge/certforge/pkg/layout"
	"github.com/certforge/certforge/pkg/pipeline"
	"github.com/certforge/certforge/pkg/render/background"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	outDir     string // directory the files are written to
	formats    string // comma-separated output formats
	background string // background image file
	id         int    // render only this design; 0 renders all
	workers    int    // concurrent designs; 0 uses the config value
	noCache    bool
	canvas     canvasFlags
	overrides  overrideFlags
}

// renderCommand creates the render command, which renders every design of
// a batch concurrently.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [batch.json|-]",
		Short: "Render the designs of a batch to PNG, SVG or JSON",
		Long: `Render the designs of a batch to PNG, SVG or JSON.

Every design is laid out on the safe zone of the canvas and written as
certificate-design-<n>.<format> into the output directory. Designs render
concurrently; a design that fails is reported and skipped.

The background image (JPEG, PNG or WebP, at most the configured upload size)
is fitted to the canvas and drawn under each certificate.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			return c.runRender(cmd.Context(), cmd.InOrStdin(), name, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "output", "o", ".", "output directory")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): png (default), svg, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.background, "background", "b", "", "background image file")
	cmd.Flags().IntVar(&opts.id, "id", 0, "render only the design with this id")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "designs rendered concurrently (default from config, 0 = all)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	opts.canvas.register(cmd)
	opts.overrides.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, stdin io.Reader, name string, opts *renderOpts) error {
	formats := pipeline.ParseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	cv, err := c.canvas(opts.canvas)
	if err != nil {
		return err
	}
	cfg, err := c.config()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	batch, err := loadBatch(ctx, runner, stdin, name)
	if err != nil {
		return err
	}
	if batch, err = selectDesigns(batch, opts.id); err != nil {
		return err
	}

	ropts := pipeline.RenderOptions{
		Canvas:    cv,
		Overrides: opts.overrides.Overrides,
		Formats:   formats,
		Workers:   cfg.Render.Workers,
	}
	if opts.workers > 0 {
		ropts.Workers = opts.workers
	}
	if opts.background != "" {
		if err := loadBackground(opts.background, cfg.Server.MaxUploadBytes, cv, &ropts); err != nil {
			return err
		}
	}

	prog := newProgress(c.Logger)
	out, err := runner.RenderBatch(ctx, batch, ropts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, o := range out.Outputs {
		if o.Err != nil {
			printWarning("Skipped design %d (%s): %s", o.Design.ID, o.Design.Name, cferrors.UserMessage(o.Err))
			continue
		}
		printSuccess("%s", StyleHighlight.Render(o.Design.Name))
		for _, format := range formats {
			path, err := writeArtifact(opts.outDir, o.FileName(format), o.Artifacts[format])
			if err != nil {
				return err
			}
			printFile(path)
		}
		printRenderStats(len(o.Ops), o.LayoutHit, o.RenderHit)
	}
	prog.done(fmt.Sprintf("Rendered %d of %d designs", len(out.Succeeded()), len(out.Outputs)))

	if len(out.Succeeded()) == 0 && len(out.Outputs) > 0 {
		return fmt.Errorf("no design could be rendered")
	}
	return nil
}

// loadBackground reads, validates and fits a background image file.
func loadBackground(path string, maxBytes int64, cv layout.Canvas, opts *pipeline.RenderOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read background: %w", err)
	}
	up, err := background.Prepare(data, maxBytes, cv.Width, cv.Height)
	if err != nil {
		return err
	}
	opts.Background = up.Image
	opts.BackgroundURL = up.DataURL()
	opts.BackgroundHash = cache.Hash(up.JPEG)
	return nil
}

// writeArtifact writes data as dir/name after checking name is a plain
// file name.
func writeArtifact(dir, name string, data []byte) (string, error) {
	if err := cferrors.ValidateOutputFilename(name); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
