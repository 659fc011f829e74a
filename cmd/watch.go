package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/meetsync/internal/instrumentation"
	"github.com/teemow/meetsync/internal/logging"
	"github.com/teemow/meetsync/internal/meetings"
	"github.com/teemow/meetsync/internal/schedule"
	"github.com/teemow/meetsync/internal/server"
)

// syncJobName names the scheduled ingest + reconcile job
const syncJobName = "meeting-sync"

// WatchConfig holds the flags of the watch command
type WatchConfig struct {
	// Schedule is a five-field cron expression
	Schedule string

	// Mode is the range each run covers: "today" or "week"
	Mode string

	// MetricsAddr is where /metrics and the health endpoints are served.
	// Empty disables the server.
	MetricsAddr string

	// RunNow runs the job once before waiting for the first tick
	RunNow bool
}

func newWatchCmd() *cobra.Command {
	var watchConfig WatchConfig

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run calendar ingestion and note reconciliation on a schedule",
		Long: `Run 'ingest' followed by 'notes' on a cron schedule until interrupted.

Metrics are exported as configured by METRICS_EXPORTER (prometheus, otlp,
stdout). With the prometheus exporter, /metrics and the health endpoints
/healthz, /readyz and /healthz/detailed are served on --metrics-addr.`,
		Example: `  meetsync watch
  meetsync watch --schedule "0 * * * *" --mode today --run-now`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), watchConfig)
		},
	}

	cmd.Flags().StringVar(&watchConfig.Schedule, "schedule", schedule.DefaultSpec, "Cron schedule (minute hour day-of-month month day-of-week)")
	cmd.Flags().StringVar(&watchConfig.Mode, "mode", meetings.ModeWeek, "Range each run covers: 'today' or 'week'")
	cmd.Flags().StringVar(&watchConfig.MetricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Address of the metrics and health server (empty to disable)")
	cmd.Flags().BoolVar(&watchConfig.RunNow, "run-now", false, "Run once immediately on start")

	return cmd
}

func runWatch(ctx context.Context, watchConfig WatchConfig) error {
	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireMeetings(); err != nil {
		return err
	}
	if _, err := meetings.RangeForMode(watchConfig.Mode, localNow(cfg)); err != nil {
		return err
	}

	scheduler := schedule.NewCronScheduler(cfg.Location, logger)
	if err := scheduler.Validate(watchConfig.Schedule); err != nil {
		return err
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during instrumentation shutdown", logging.Err(err))
		}
	}()

	sc, err := server.NewServerContext(ctx, cfg,
		server.WithLogger(logger),
		server.WithMetrics(provider.Metrics()),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = sc.Shutdown()
	}()

	health := server.NewHealthChecker(sc)
	health.SetReady(false)

	var metricsServer *server.MetricsServer
	if watchConfig.MetricsAddr != "" {
		if provider.HasPrometheusExporter() {
			metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
				Addr:                    watchConfig.MetricsAddr,
				InstrumentationProvider: provider,
				Health:                  health,
				Logger:                  logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create metrics server: %w", err)
			}
			go func() {
				if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Metrics server stopped", logging.Err(err))
				}
			}()
		} else {
			logger.Warn("Metrics server disabled", "reason", "metrics exporter is not prometheus", "exporter", instrConfig.MetricsExporter)
		}
	}

	job := newSyncJob(sc, health, watchConfig.Mode)
	if err := scheduler.AddJob(job, watchConfig.Schedule); err != nil {
		return err
	}

	if watchConfig.RunNow {
		if err := job.Run(ctx); err != nil {
			logger.Error("Initial sync failed", logging.Err(err))
		}
	}

	scheduler.Start(ctx)
	health.SetReady(true)
	logger.Info("Watching calendar",
		"schedule", watchConfig.Schedule,
		"mode", watchConfig.Mode,
		"next", scheduler.Next(syncJobName))

	<-ctx.Done()

	health.SetReady(false)
	scheduler.Stop()

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during metrics server shutdown", logging.Err(err))
		}
	}
	return nil
}

// newSyncJob ingests the calendar and then reconciles notes over the same
// range. A failed ingestion does not stop the reconciliation, which works
// from whatever the database already holds.
func newSyncJob(sc *server.ServerContext, health *server.HealthChecker, mode string) schedule.Job {
	return schedule.JobFunc{
		JobName: syncJobName,
		Fn: func(ctx context.Context) error {
			r, err := meetings.RangeForMode(mode, localNow(sc.Config()))
			if err != nil {
				return err
			}

			ingestErr := runIngestFlow(ctx, sc, health, r)
			reconcileErr := runReconcileFlow(ctx, sc, health, r)
			return errors.Join(ingestErr, reconcileErr)
		},
	}
}

func runIngestFlow(ctx context.Context, sc *server.ServerContext, health *server.HealthChecker, r meetings.Range) error {
	ingestor, err := sc.Ingestor()
	if err != nil {
		health.RecordRun(instrumentation.FlowIngest, 0, err)
		return fmt.Errorf("ingest: %w", err)
	}
	stats, err := ingestor.SyncRange(ctx, r)
	if err != nil {
		health.RecordRun(instrumentation.FlowIngest, 0, err)
		return fmt.Errorf("ingest: %w", err)
	}
	health.RecordRun(instrumentation.FlowIngest, len(stats.Errors), nil)
	sc.Logger().Info("Calendar sync finished",
		logging.RunID(stats.RunID),
		"found", stats.Found,
		"created", stats.Created,
		"updated", stats.Updated,
		"errors", len(stats.Errors))
	return nil
}

func runReconcileFlow(ctx context.Context, sc *server.ServerContext, health *server.HealthChecker, r meetings.Range) error {
	rc, err := sc.Reconciler()
	if err != nil {
		health.RecordRun(instrumentation.FlowReconcile, 0, err)
		return fmt.Errorf("reconcile: %w", err)
	}
	stats, err := rc.Run(ctx, r)
	if err != nil {
		health.RecordRun(instrumentation.FlowReconcile, 0, err)
		return fmt.Errorf("reconcile: %w", err)
	}
	health.RecordRun(instrumentation.FlowReconcile, len(stats.Errors), nil)
	sc.Logger().Info("Meeting sync finished",
		logging.RunID(stats.RunID),
		"found", stats.MeetingsFound,
		"notes_created", stats.NotesCreated,
		"cancelled_updated", stats.CancelledUpdated,
		"errors", len(stats.Errors))
	return nil
}
