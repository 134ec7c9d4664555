package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/restdb/internal/core/query/domain"
	"github.com/satishbabariya/restdb/internal/service"
	"github.com/satishbabariya/restdb/internal/ui"
)

// NewInfoCommand creates the info command.
func NewInfoCommand(opts *rootOptions) *cobra.Command {
	var schema, table, column string
	var types []string

	cmd := &cobra.Command{
		Use:       "info <getTables|getColumns|getPrimaryKeys>",
		Short:     "Print catalog metadata",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"getTables", "getColumns", "getPrimaryKeys"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.container()
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())
			if err := c.Connect(cmd.Context()); err != nil {
				return err
			}

			params := domain.NewParameterSet()
			for name, v := range map[string]string{"schema": schema, "table": table, "column": column} {
				if v != "" {
					params.Add(name, v)
				}
			}
			for _, t := range types {
				params.Add("type", t)
			}

			// The CLI reads metadata regardless of features.info.
			info := service.NewInfoService(c.Executor(), c.KeyCache(), true, c.Config().Database.DefaultSchema)
			records, err := info.Metadata(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				ui.PrintWarning("No rows")
				return nil
			}
			headers, rows := ui.RecordTable(records)
			if err := ui.PrintTable(headers, rows); err != nil {
				return err
			}
			ui.PrintInfo("%s", fmt.Sprintf("%d rows", len(records)))
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "schema name (default: database.default_schema)")
	cmd.Flags().StringVar(&table, "table", "", "table name or LIKE pattern")
	cmd.Flags().StringVar(&column, "column", "", "column name or LIKE pattern (getColumns)")
	cmd.Flags().StringSliceVar(&types, "type", nil, "table types (getTables), e.g. TABLE,VIEW")
	return cmd
}
