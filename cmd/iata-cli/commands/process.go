package commands

import (
	"os"

	"iata-code-fetcher/lib/codes"
	"iata-code-fetcher/lib/serviceutil"
	"iata-code-fetcher/services/processor"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process <carrier|airport> <path/to/data.jsonl>",
	Short: "Deduplicates a crawl output file in place and writes the typed processed dataset.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		kind, ok := codes.ParseKind(args[0])
		if !ok {
			cmd.PrintErrf("invalid code class %q, expected carrier or airport\n", args[0])
			os.Exit(1)
		}
		path := args[1]
		if _, err := os.Stat(path); err != nil {
			serviceutil.Fatal("cannot read input file", err)
		}

		summary, err := processor.Process(cmd.Context(), kind, path)
		if err != nil {
			serviceutil.Fatal("processing failed", err)
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"", "count"})
		t.AppendRows([]table.Row{
			{"lines before dedupe", summary.LinesBefore},
			{"lines after dedupe", summary.LinesAfter},
			{"processed records", summary.Records},
		})
		t.AppendFooter(table.Row{"output", summary.OutputPath})
		t.Render()
	},
}
