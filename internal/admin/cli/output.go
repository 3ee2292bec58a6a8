package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// printResult writes v as indented JSON or text as a line, per --format.
func printResult(cmd *cobra.Command, opts *RootOptions, v any, text string) error {
	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
