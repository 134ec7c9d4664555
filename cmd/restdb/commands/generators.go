package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/restdb/internal/ui"
)

// NewGeneratorsCommand creates the generators command.
func NewGeneratorsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generators",
		Short: "List registered query generators",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.container()
			if err != nil {
				return err
			}
			reg := c.Registry()

			ui.PrintInfo("Scopes: %v", reg.Scopes())
			ui.PrintList(reg.Factories())
			for _, f := range c.TemplateFiles() {
				ui.PrintInfo("Loaded %s", f)
			}
			return nil
		},
	}
}
