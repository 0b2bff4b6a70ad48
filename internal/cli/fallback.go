package cli

import (
	"github.com/spf13/cobra"

	"github.com/certforge/certforge/pkg/design"
)

// fallbackCommand prints the built-in designs.
func (c *CLI) fallbackCommand() *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "fallback",
		Short: "Print the built-in designs used when generation fails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			batch, err := selectDesigns(design.Fallback(), id)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), batch)
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "print only the design with this id")

	return cmd
}
