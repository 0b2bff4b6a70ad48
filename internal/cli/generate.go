package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	cferrors "github.com/certforge/certforge/pkg/errors"
	"github.com/certforge/certforge/pkg/pipeline"
	"github.com/certforge/certforge/pkg/render/background"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	category   string
	background string
	output     string
	refresh    bool
	noCache    bool
}

// generateCommand creates the generate command, which asks the model for a
// batch of designs and writes it as JSON.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate certificate designs for a category and background",
		Long: `Generate certificate designs for a category and background.

The background is fitted to the canvas, re-encoded as JPEG and sent to the
model together with the design prompt. The answer is repaired, decoded and
validated. Without an API key, or when any of these steps fails, the five
built-in designs are written instead.

Without --background the built-in sample background is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), cmd.OutOrStdout(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "certificate category, e.g. \"Academic Achievement\"")
	cmd.Flags().StringVarP(&opts.background, "background", "b", "", "background image file (default: sample background)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore a cached batch")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, stdout io.Writer, opts *generateOpts) error {
	if err := cferrors.ValidateCategory(opts.category); err != nil {
		return err
	}
	cfg, err := c.config()
	if err != nil {
		return err
	}

	var up *background.Upload
	if opts.background != "" {
		data, err := os.ReadFile(opts.background)
		if err != nil {
			return fmt.Errorf("read background: %w", err)
		}
		up, err = background.Prepare(data, cfg.Server.MaxUploadBytes, cfg.Canvas.Width, cfg.Canvas.Height)
		if err != nil {
			return err
		}
	} else {
		jpg, err := background.EncodeJPEG(background.Sample(cfg.Canvas.Width, cfg.Canvas.Height))
		if err != nil {
			return err
		}
		up = &background.Upload{JPEG: jpg}
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Asking "+runner.Generator.Name()+" for designs...")
	spinner.Start()
	res, err := runner.Generate(ctx, pipeline.GenerateOptions{
		Category: opts.category,
		Image:    up.JPEG,
		MIME:     "image/jpeg",
		Model:    cfg.Generator.Model,
		Refresh:  opts.refresh,
	})
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	if res.Fallback {
		c.Logger.Warn("using the built-in designs", "reason", cferrors.UserMessage(res.Reason))
	}
	c.Logger.Info("designs ready",
		"designs", len(res.Batch.Designs),
		"fallback", res.Fallback,
		"cached", res.CacheHit,
		"stage", res.Stage)

	if opts.output == "" {
		return writeJSON(stdout, res.Batch)
	}
	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.output, err)
	}
	defer f.Close()
	if err := writeJSON(f, res.Batch); err != nil {
		return err
	}

	source := runner.Generator.Name()
	if res.Fallback {
		source = "fallback"
	}
	printSuccess("Wrote %s", opts.output)
	printKeyValue("category", opts.category)
	printKeyValue("designs", strconv.Itoa(len(res.Batch.Designs)))
	printKeyValue("source", source)
	return nil
}
