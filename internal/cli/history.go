package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/watchtower/internal/model"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database   string
	After      int64
	Limit      int
	Collection string
}

// HistoryRow is one listed history entry. Data is omitted; its
// fingerprint identifies it.
type HistoryRow struct {
	Seq         int64            `json:"seq"`
	Collection  model.Collection `json:"collection"`
	Fingerprint string           `json:"fingerprint"`
	Bytes       int              `json:"bytes"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List snapshot history",
		Long: `List recorded collection replaces, oldest first.

Examples:
  watchtower history --db ./watchtower.db
  watchtower history --db ./watchtower.db --after 120 --collection users`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.Database, "SQLite path or postgres:// DSN")
	cmd.Flags().Int64Var(&opts.After, "after", 0, "only entries with seq greater than this")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum entries to scan (0: all)")
	cmd.Flags().StringVar(&opts.Collection, "collection", "", "only this collection")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	var only model.Collection
	if opts.Collection != "" {
		c, err := model.ParseCollection(opts.Collection)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid collection", err)
		}
		only = c
	}

	backend, err := openBackend(ctx, opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer backend.Close()

	entries, err := backend.History(ctx, opts.After, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}

	rows := make([]HistoryRow, 0, len(entries))
	for _, e := range entries {
		if only != "" && e.Collection != only {
			continue
		}
		rows = append(rows, HistoryRow{
			Seq:         e.Seq,
			Collection:  e.Collection,
			Fingerprint: e.Fingerprint,
			Bytes:       len(e.Data),
		})
	}

	if opts.Format == "json" {
		return formatter.Success(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(formatter.Writer, "No history.")
		return nil
	}
	for _, r := range rows {
		fmt.Fprintf(formatter.Writer, "%6d  %-16s %s  %d bytes\n", r.Seq, r.Collection, shortFingerprint(r.Fingerprint), r.Bytes)
	}
	return nil
}

// shortFingerprint trims a fingerprint for display.
func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
