package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pyindent/internal/adapter/httpapi"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [name]",
	Short: "Print the JSON schema of an API type",
	Long: fmt.Sprintf(`Print the JSON schema of a request or response type. Without a name,
list the available schemas.

Names: %s

Examples:
  pyindent schema parse-result
  pyindent schema edit`, strings.Join(httpapi.SchemaNames(), ", ")),
	Args: cobra.MaximumNArgs(1),
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		for _, name := range httpapi.SchemaNames() {
			fmt.Println(name)
		}
		return nil
	}

	sch, err := httpapi.Schema(args[0])
	if err != nil {
		return err
	}
	return printJSON(sch)
}
