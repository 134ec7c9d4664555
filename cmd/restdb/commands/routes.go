package commands

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/restdb/internal/adapters/rest"
	"github.com/satishbabariya/restdb/internal/ui"
)

var routeDocs = map[string]string{
	"/data/table/:object":   "CRUD on `schema.table`; parameters filter, key or set values",
	"/data/query/:object":   "Run `generator.operation`; GET reads rows, POST executes",
	"/data/info/:operation": "Catalog metadata: getTables, getColumns, getPrimaryKeys",
	"/healthz":              "Database ping and pool statistics",
	"/metrics":              "Statement counters (telemetry.type: memory)",
}

// NewRoutesCommand creates the routes command.
func NewRoutesCommand(opts *rootOptions) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the HTTP endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.container()
			if err != nil {
				return err
			}
			gin.SetMode(gin.ReleaseMode)
			base := c.Config().Server.BasePath
			routes := rest.Routes(c.Router())

			if plain {
				grouped := make(map[string][]string)
				for _, r := range routes {
					grouped[r.Path] = append(grouped[r.Path], r.Method)
				}
				ui.PrintRoutes(grouped)
				return nil
			}
			return ui.PrintMarkdown(routesMarkdown(base, routes))
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print without markdown rendering")
	return cmd
}

func routesMarkdown(base string, routes []rest.Route) string {
	var b strings.Builder
	b.WriteString("# restdb endpoints\n\n")
	b.WriteString("| Method | Path | Description |\n|---|---|---|\n")
	for _, r := range routes {
		doc := routeDocs[strings.TrimPrefix(r.Path, base)]
		fmt.Fprintf(&b, "| %s | `%s` | %s |\n", r.Method, r.Path, doc)
	}
	b.WriteString("\nSend `Content-Language: en` for English error messages and ")
	b.WriteString("`Accept: application/xml` or `application/x-msgpack` for other formats.\n")
	return b.String()
}
