package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geofuzz/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect fuzz run history",
	Long:  "Commands for listing past fuzz runs recorded in the run store.",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List fuzz runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.Store.Path == "" {
			return eris.New("runs: no store configured (set store.path or GEOFUZZ_STORE_PATH)")
		}

		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: store.Status(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (complete, failed)")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsCmd.AddCommand(runsListCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []store.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tINPUT\tSTATUS\tRADIUS\tFUZZED\tWARN\tERR\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-----\t------\t------\t------\t----\t---\t-------")

	for _, r := range runs {
		input := r.InputFile
		if len(input) > 40 {
			input = "..." + input[len(input)-37:]
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%d\t%d\t%d\t%s\n",
			truncateID(r.ID),
			input,
			r.Status,
			r.Radius,
			r.LinesFuzzed,
			r.Warnings,
			r.Errors,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
