package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	results "github.com/matzehuels/flowlens/pkg/io"
)

// viewCommand creates the view command for browsing a results file.
func (c *CLI) viewCommand() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "view <results.json>",
		Short: "Browse a results file",
		Long: `Browse the diagrams of a results file written by render.

Opens an interactive browser. With --plain the diagrams are printed instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := results.ImportResults(args[0])
			if err != nil {
				return err
			}
			c.Logger.Debug("loaded results", "path", args[0], "flows", len(records))
			if plain {
				return writeRecords(cmd.OutOrStdout(), records)
			}
			if len(records) == 0 {
				printInfo("No flows in %s", args[0])
				return nil
			}
			return browse(records)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print the diagrams instead of opening the browser")

	return cmd
}

// writeRecords prints every diagram under a header naming its flow and side.
func writeRecords(w io.Writer, records []results.Record) error {
	for _, r := range records {
		if r.Difference.Old != nil {
			if _, err := fmt.Fprintf(w, "# %s (old)\n%s\n", r.Path, *r.Difference.Old); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s (new)\n%s\n", r.Path, r.Difference.New); err != nil {
			return err
		}
	}
	return nil
}
