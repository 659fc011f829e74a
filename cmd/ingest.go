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

func newIngestCmd() *cobra.Command {
	var run bool

	cmd := &cobra.Command{
		Use:   "ingest [today|week]",
		Short: "Copy calendar events into the meetings database",
		Long: `Read the calendar events of today or of the coming week and create or
update one row per event in the meetings database.

Events come from the iCalendar feed in CALENDAR_ICS_URL when it is set and
from Google Calendar otherwise (run 'meetsync google-auth' once first).

Without --run the command prints a launcher item.`,
		Example: `  meetsync ingest today
  meetsync ingest --run week`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ok := launcherConfig(cmd.OutOrStdout(), run)
			if !ok {
				return nil
			}
			out := cmd.OutOrStdout()
			query := queryText(args)

			if !run {
				if item, ok := launcher.ConfigNeeded(cfg.RequireIngest()); ok {
					writeItems(out, item)
					return nil
				}
				writeItems(out, launcher.IngestItem(query))
				return nil
			}

			runIngest(cmd.Context(), out, cfg, newLogger(), launcher.ModeFromQuery(query))
			return nil
		},
	}

	cmd.Flags().BoolVar(&run, "run", false, "Run the calendar sync instead of printing a launcher item")

	return cmd
}

// runIngest runs one calendar ingestion and prints its outcome.
func runIngest(ctx context.Context, w io.Writer, cfg *config.Config, logger logging.Logger, mode string, opts ...server.Option) {
	r, err := meetings.RangeForMode(mode, localNow(cfg))
	if err != nil {
		launcher.Fail(w, err)
		return
	}
	fmt.Fprintf(w, "🔄 Starting calendar sync (%s)...\n", r.Mode)

	sc, err := server.NewServerContext(ctx, cfg, append([]server.Option{server.WithLogger(logger)}, opts...)...)
	if err != nil {
		launcher.Fail(w, err)
		return
	}
	defer func() {
		_ = sc.Shutdown()
	}()

	if err := cfg.RequireIngest(); err != nil {
		launcher.Fail(w, err)
		return
	}
	ingestor, err := sc.Ingestor()
	if err != nil {
		launcher.Fail(w, err)
		return
	}
	stats, err := ingestor.SyncRange(sc.Context(), r)
	if err != nil {
		launcher.Fail(w, err)
		return
	}
	launcher.WriteIngestStats(w, stats)
}
