package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/teemow/meetsync/internal/config"
	"github.com/teemow/meetsync/internal/launcher"
	"github.com/teemow/meetsync/internal/logging"
	"github.com/teemow/meetsync/internal/meetings"
	"github.com/teemow/meetsync/internal/server"
)

func newNotesCmd() *cobra.Command {
	var syncMode string

	cmd := &cobra.Command{
		Use:   "notes [query]",
		Short: "Create meeting notes for upcoming meetings",
		Long: `Create a meeting note from the template for every meeting in the meetings
database that does not have one yet, and mark the notes of cancelled meetings.

Without --sync the command prints a launcher item for the mode named in the
query ("today" or "week"). With --sync it runs the reconciliation and prints
a summary.`,
		Example: `  meetsync notes today
  meetsync notes --sync week`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := launcherConfig(cmd.OutOrStdout(), cmd.Flags().Changed("sync"))
			if !ok {
				return nil
			}
			out := cmd.OutOrStdout()

			if !cmd.Flags().Changed("sync") {
				if item, ok := launcher.ConfigNeeded(cfg.RequireMeetings()); ok {
					writeItems(out, item)
					return nil
				}
				writeItems(out, launcher.NotesSyncItem(queryText(args)))
				return nil
			}

			runNotesSync(cmd.Context(), out, cfg, newLogger(), syncMode)
			return nil
		},
	}

	cmd.Flags().StringVar(&syncMode, "sync", "", "Run the reconciliation for 'today' or 'week'")

	return cmd
}

// runNotesSync runs one reconciliation and prints its outcome. Failures are
// printed, never returned, so the launcher always gets a message.
func runNotesSync(ctx context.Context, w io.Writer, cfg *config.Config, logger logging.Logger, mode string, opts ...server.Option) {
	r, err := meetings.RangeForMode(mode, localNow(cfg))
	if err != nil {
		launcher.Fail(w, err)
		return
	}
	fmt.Fprintf(w, "🔄 Starting meeting sync (%s)...\n", r.Mode)

	sc, err := server.NewServerContext(ctx, cfg, append([]server.Option{server.WithLogger(logger)}, opts...)...)
	if err != nil {
		launcher.Fail(w, err)
		return
	}
	defer func() {
		_ = sc.Shutdown()
	}()

	if err := cfg.RequireMeetings(); err != nil {
		launcher.Fail(w, err)
		return
	}
	rc, err := sc.Reconciler()
	if err != nil {
		launcher.Fail(w, err)
		return
	}
	stats, err := rc.Run(sc.Context(), r)
	if err != nil {
		launcher.Fail(w, err)
		return
	}
	launcher.WriteStats(w, stats)
}
