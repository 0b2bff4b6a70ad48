package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/certforge/certforge/pkg/design"
	"github.com/certforge/certforge/pkg/layout"
	"github.com/certforge/certforge/pkg/pipeline"
)

// canvasFlags are the --width and --height flags shared by layout and
// render. Zero means the configured canvas.
type canvasFlags struct {
	width  int
	height int
}

func (f *canvasFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.width, "width", 0, "canvas width in pixels (default from config)")
	cmd.Flags().IntVar(&f.height, "height", 0, "canvas height in pixels (default from config)")
}

func (c *CLI) canvas(f canvasFlags) (layout.Canvas, error) {
	cfg, err := c.config()
	if err != nil {
		return layout.Canvas{}, err
	}
	cv := layout.Canvas{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height}
	if f.width != 0 {
		cv.Width = f.width
	}
	if f.height != 0 {
		cv.Height = f.height
	}
	if err := cv.Validate(); err != nil {
		return layout.Canvas{}, err
	}
	return cv, cv.Within(cfg.Canvas.MaxSide)
}

// overrideFlags are the recipient, date and signature overrides.
type overrideFlags struct {
	design.Overrides
}

func (f *overrideFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.RecipientName, "name", "", "recipient name (default: the design's placeholder)")
	cmd.Flags().StringVar(&f.Date, "date", "", "date text (default: the design's placeholder)")
	cmd.Flags().StringVar(&f.Signature, "signature", "", "signature text (default: the design's placeholder)")
}

// layoutCommand creates the layout command, which prints the resolved draw
// ops of one design.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		id        int
		output    string
		canvas    canvasFlags
		overrides overrideFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [batch.json|-]",
		Short: "Print the draw ops of one design as JSON",
		Long: `Print the draw ops of one design as JSON.

The batch is read from the file, or from stdin when omitted. It may be clean
batch JSON (as written by 'generate' or 'fallback') or a raw model answer.
Positions are resolved against the safe zone of the canvas, with text widths
measured with the embedded fonts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			cv, err := c.canvas(canvas)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), name, id, output, pipeline.RenderOptions{
				Canvas:    cv,
				Overrides: overrides.Overrides,
				Formats:   []string{pipeline.FormatJSON},
			})
		},
	}

	cmd.Flags().IntVar(&id, "id", 1, "design id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	canvas.register(cmd)
	overrides.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, stdin io.Reader, stdout io.Writer, name string, id int, output string, opts pipeline.RenderOptions) error {
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	batch, err := loadBatch(ctx, runner, stdin, name)
	if err != nil {
		return err
	}
	d, ok := batch.Find(id)
	if !ok {
		return fmt.Errorf("no design with id %d", id)
	}

	out, err := runner.RenderDesign(ctx, d, opts)
	if err != nil {
		return err
	}
	data := out.Artifacts[pipeline.FormatJSON]

	if output == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	c.Logger.Info("wrote layout", "design", d.ID, "ops", len(out.Ops), "path", output)
	return nil
}
