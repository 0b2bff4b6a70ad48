package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/certforge/certforge/pkg/recovery"
)

// recoverCommand creates the recover command, which runs the repair chain
// on a saved model answer.
func (c *CLI) recoverCommand() *cobra.Command {
	var (
		stages bool
		batch  bool
	)

	cmd := &cobra.Command{
		Use:   "recover [file|-]",
		Short: "Extract the JSON object from a model answer",
		Long: `Extract the JSON object from a model answer.

The answer is read from the file, or from stdin when the file is omitted or
"-". Markdown fences and surrounding prose are removed, an unescaped
canvasCode value is repaired and, as a last resort, excised.

With --batch the recovered object is also decoded and validated as a design
batch, and the sanitized batch is printed instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			raw, err := readInput(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}

			text, trace, err := recovery.RecoverWithTrace(string(raw))
			if stages {
				for _, o := range trace {
					mark := iconInfo
					if o.Accepted {
						mark = iconSuccess
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "%s %-13s %6d -> %6d bytes\n", mark, o.Stage, o.InBytes, o.OutBytes)
				}
			}
			if err != nil {
				return err
			}

			if !batch {
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}

			runner, err := c.newRunner(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer runner.Close()
			b, _, err := runner.Recover(cmd.Context(), string(raw))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), b)
		},
	}

	cmd.Flags().BoolVar(&stages, "stages", false, "print the stage trace to stderr")
	cmd.Flags().BoolVar(&batch, "batch", false, "decode, validate and sanitize the result as a design batch")

	return cmd
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
