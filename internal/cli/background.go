package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	cferrors "github.com/certforge/certforge/pkg/errors"
	"github.com/certforge/certforge/pkg/render/background"
)

// backgroundCommand writes the sample certificate background as PNG.
func (c *CLI) backgroundCommand() *cobra.Command {
	var (
		output string
		canvas canvasFlags
	)

	cmd := &cobra.Command{
		Use:   "background",
		Short: "Write the sample certificate background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cferrors.ValidateOutputFilename(filepath.Base(output)); err != nil {
				return err
			}
			cv, err := c.canvas(canvas)
			if err != nil {
				return err
			}
			data, err := background.EncodePNG(background.Sample(cv.Width, cv.Height))
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Wrote %dx%d sample background", cv.Width, cv.Height)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", background.SampleFileName, "output file")
	canvas.register(cmd)

	return cmd
}
