package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-go-golems/turncheck/pkg/history"
)

const defaultHistoryPath = ".turncheck/history.sqlite"

type historyOptions struct {
	DBPath string
	Limit  int
	Format string
}

func newHistoryCommand() *cobra.Command {
	opts := &historyOptions{
		Limit:  20,
		Format: "table",
	}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded validation runs",
		Long: `Reads the runs recorded with 'validate --history' and prints the most recent
ones together with the error kinds they produced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.DBPath = viper.GetString("history.db")
			return runHistory(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().String("db", defaultHistoryPath, "Path to the history SQLite database.")
	cmd.Flags().IntVar(&opts.Limit, "limit", opts.Limit, "Max recent runs to include.")
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format, "Output format: table or json.")
	cobra.CheckErr(viper.BindPFlag("history.db", cmd.Flags().Lookup("db")))

	return cmd
}

func runHistory(ctx context.Context, w io.Writer, opts *historyOptions) error {
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "table"
	}
	if format != "table" && format != "json" {
		return errors.Errorf("invalid --format %q, expected table or json", opts.Format)
	}
	if opts.DBPath == "" {
		opts.DBPath = defaultHistoryPath
	}
	if _, err := os.Stat(opts.DBPath); err != nil {
		return errors.Wrapf(err, "no history at %s", opts.DBPath)
	}

	store, err := history.Open(opts.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	runs, err := store.Recent(ctx, opts.Limit)
	if err != nil {
		return err
	}
	kinds, err := store.KindSummaries(ctx, opts.Limit)
	if err != nil {
		return err
	}

	if format == "json" {
		out := map[string]any{
			"db":    opts.DBPath,
			"limit": opts.Limit,
			"runs":  runs,
			"kinds": kinds,
		}
		blob, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		_, _ = w.Write(blob)
		_, _ = w.Write([]byte("\n"))
		return nil
	}

	printRunsTable(w, runs)
	_, _ = fmt.Fprintln(w)
	printKindsTable(w, kinds)
	return nil
}

func printRunsTable(out io.Writer, runs []history.Run) {
	_, _ = fmt.Fprintln(out, "Recent validation runs")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RUN ID\tSTARTED\tFILE\tFORMAT\tVALID\tTURNS\tERRORS\tWARNINGS\tKINDS")
	for _, run := range runs {
		_, _ = fmt.Fprintf(
			w,
			"%s\t%s\t%s\t%s\t%t\t%d\t%d\t%d\t%s\n",
			run.RunID,
			run.StartedAt.Format(time.RFC3339),
			run.File,
			orDash(run.Format),
			run.Valid,
			run.TotalTurns,
			run.ErrorCount,
			run.WarningCount,
			formatKindCounts(run.KindCounts),
		)
	}
	_ = w.Flush()
}

func printKindsTable(out io.Writer, kinds []history.KindSummary) {
	_, _ = fmt.Fprintln(out, "Error kinds (recent runs)")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KIND\tRUNS\tERRORS")
	for _, row := range kinds {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", row.Kind, row.RunCount, row.ErrorCount)
	}
	_ = w.Flush()
}

func formatKindCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, ",")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
